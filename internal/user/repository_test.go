package user

import (
	"testing"
	"time"

	"manhwahub/pkg/database"
	"manhwahub/pkg/models"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func testUser() *models.User {
	return &models.User{
		ID:           "user-1",
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: "hashed",
		CreatedAt:    time.Now(),
	}
}

func TestCreateAndGetByUsername(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Create(testUser()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	user, err := repo.GetByUsername("admin")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if user.ID != "user-1" || user.Email != "admin@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestGetByUsernameNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetByUsername("nobody")
	if err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateDuplicates(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Create(testUser()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dupUsername := testUser()
	dupUsername.ID = "user-2"
	dupUsername.Email = "other@example.com"
	if err := repo.Create(dupUsername); err != ErrUsernameExists {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}

	dupEmail := testUser()
	dupEmail.ID = "user-3"
	dupEmail.Username = "other"
	if err := repo.Create(dupEmail); err != ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}
