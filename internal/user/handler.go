package user

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"manhwahub/internal/auth"
	"manhwahub/pkg/models"
)

// Service implements account registration and login for the administrative
// flow that manages record availability.
type Service struct {
	repo          *Repository
	jwtSecret     string
	tokenDuration time.Duration
}

func NewService(repo *Repository, jwtSecret string, tokenDuration time.Duration) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
	}
}

// Register creates a new administrator account
func (s *Service) Register(req *models.RegisterRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates an account and returns a JWT token
func (s *Service) Login(req *models.LoginRequest) (string, *models.User, error) {
	user, err := s.repo.GetByUsername(req.Username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message":    message,
			"statusCode": status,
		},
	})
}

// Register handles account registration
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user, err := h.service.Register(&req)
	if err != nil {
		status := http.StatusInternalServerError
		message := "failed to create account"
		if err == ErrUsernameExists || err == ErrEmailExists {
			status = http.StatusConflict
			message = err.Error()
		}
		respondError(c, status, message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login handles account login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	token, user, err := h.service.Login(&req)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
	})
}
