package manga

import (
	"testing"

	"manhwahub/pkg/apperr"
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

func testRecord() *models.MangaRecord {
	return &models.MangaRecord{
		Title:        "Solo Leveling",
		Summary:      "A weak hunter grows strong.",
		CoverURL:     "https://example.com/covers/solo.jpg",
		Rating:       "4.7",
		Rank:         "1st",
		Alternative:  "Na Honjaman Level-Up",
		Genres:       []string{"Action", "Fantasy"},
		Type:         "Manhwa",
		Status:       "Completed",
		ChapterCount: 2,
		Availability: true,
		Chapters: []models.ChapterEntry{
			{ChapterNo: "Chapter 2", Label: "NEW", Images: []string{"https://cdn.example.com/c2-1.jpg"}},
			{ChapterNo: "Chapter 1", Images: []string{"https://cdn.example.com/c1-1.jpg", "https://cdn.example.com/c1-2.jpg"}},
		},
	}
}

func TestFindByTitleMiss(t *testing.T) {
	repo := setupTestRepo(t)

	record, err := repo.FindByTitle("unknown")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record on miss, got %+v", record)
	}
}

func TestUpsertAndFindAcrossSpellings(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	for _, spelling := range []string{"Solo Leveling", "solo-leveling", "SOLO  LEVELING"} {
		record, err := repo.FindByTitle(spelling)
		if err != nil {
			t.Fatalf("FindByTitle(%q) failed: %v", spelling, err)
		}
		if record == nil {
			t.Fatalf("FindByTitle(%q) = nil, want record", spelling)
		}
		if record.Title != "Solo Leveling" {
			t.Errorf("Title = %q", record.Title)
		}
		if len(record.Genres) != 2 {
			t.Errorf("Genres = %v", record.Genres)
		}
		if len(record.Chapters) != 2 {
			t.Fatalf("got %d chapters, want 2", len(record.Chapters))
		}
		if record.Chapters[0].ChapterNo != "Chapter 2" || record.Chapters[1].ChapterNo != "Chapter 1" {
			t.Errorf("chapter order not preserved: %+v", record.Chapters)
		}
		if len(record.Chapters[1].Images) != 2 {
			t.Errorf("chapter images = %v", record.Chapters[1].Images)
		}
	}
}

func TestUpsertOverwritesExisting(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	updated := testRecord()
	updated.Title = "solo-leveling"
	updated.Status = "Ongoing"
	updated.Chapters = append(updated.Chapters, models.ChapterEntry{ChapterNo: "Chapter 3"})
	updated.ChapterCount = 3
	if err := repo.Upsert(updated); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	record, err := repo.FindByTitle("Solo Leveling")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if record == nil {
		t.Fatal("record missing after overwrite")
	}
	if record.Status != "Ongoing" {
		t.Errorf("Status = %q, want Ongoing", record.Status)
	}
	if record.ChapterCount != 3 || len(record.Chapters) != 3 {
		t.Errorf("chapter count = %d, chapters = %d", record.ChapterCount, len(record.Chapters))
	}
}

func TestReplaceChapters(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	replacement := []models.ChapterEntry{
		{ChapterNo: "Chapter 3", Images: []string{"https://cdn.example.com/c3-1.jpg"}},
		{ChapterNo: "Chapter 2"},
		{ChapterNo: "Chapter 1"},
	}
	if err := repo.ReplaceChapters("solo-leveling", replacement); err != nil {
		t.Fatalf("ReplaceChapters failed: %v", err)
	}

	record, err := repo.FindByTitle("Solo Leveling")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if record.ChapterCount != 3 || len(record.Chapters) != 3 {
		t.Fatalf("chapter count = %d, chapters = %d", record.ChapterCount, len(record.Chapters))
	}
	if record.Chapters[0].ChapterNo != "Chapter 3" {
		t.Errorf("chapter order = %+v", record.Chapters)
	}
	if record.Summary != "A weak hunter grows strong." {
		t.Errorf("Summary changed: %q", record.Summary)
	}
}

func TestReplaceChaptersUnknownTitle(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.ReplaceChapters("unknown", nil)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPatchChapterVisibility(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := repo.PatchChapterVisibility("solo-leveling", "chapter 1", true, true); err != nil {
		t.Fatalf("PatchChapterVisibility failed: %v", err)
	}

	record, err := repo.FindByTitle("Solo Leveling")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	for _, chapter := range record.Chapters {
		want := chapter.ChapterNo == "Chapter 1"
		if chapter.Status != want {
			t.Errorf("chapter %q visible = %t, want %t", chapter.ChapterNo, chapter.Status, want)
		}
	}
	if !record.Availability {
		t.Error("availability should stay true")
	}
}

func TestPatchChapterVisibilityUpdatesAvailability(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := repo.PatchChapterVisibility("solo-leveling", "Chapter 1", false, false); err != nil {
		t.Fatalf("PatchChapterVisibility failed: %v", err)
	}

	record, err := repo.FindByTitle("Solo Leveling")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if record.Availability {
		t.Error("availability should be false")
	}
}

func TestPatchChapterVisibilityUnknownChapter(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	err := repo.PatchChapterVisibility("solo-leveling", "Chapter 99", true, true)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListVisible(t *testing.T) {
	repo := setupTestRepo(t)

	first := testRecord()
	first.Chapters[1].Status = true
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := testRecord()
	second.Title = "Hidden Series"
	second.Availability = false
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	third := testRecord()
	third.Title = "All Chapters Hidden"
	for i := range third.Chapters {
		third.Chapters[i].Status = false
	}
	if err := repo.Upsert(third); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	listings, err := repo.ListVisible()
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	byTitle := make(map[string]models.MangaListing)
	for _, listing := range listings {
		byTitle[listing.Title] = listing
	}

	if _, ok := byTitle["Hidden Series"]; ok {
		t.Error("unavailable record leaked into the listing")
	}

	solo, ok := byTitle["Solo Leveling"]
	if !ok {
		t.Fatal("available record missing from listing")
	}
	if len(solo.Chapters) != 1 || solo.Chapters[0].ChapterNo != "Chapter 1" {
		t.Errorf("visible chapters = %+v", solo.Chapters)
	}
	for _, chapter := range solo.Chapters {
		if !chapter.Status {
			t.Errorf("hidden chapter leaked: %+v", chapter)
		}
	}

	empty, ok := byTitle["All Chapters Hidden"]
	if !ok {
		t.Fatal("record with zero visible chapters should still be listed")
	}
	if len(empty.Chapters) != 0 {
		t.Errorf("chapters = %+v, want empty", empty.Chapters)
	}
}

func TestChapterImages(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Upsert(testRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	images, err := repo.ChapterImages("solo-leveling", "Chapter 1")
	if err != nil {
		t.Fatalf("ChapterImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Errorf("got %d images, want 2", len(images))
	}

	if _, err := repo.ChapterImages("solo-leveling", "Chapter 99"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown chapter: expected not-found error, got %v", err)
	}
}

func TestChapterImagesEmptyCache(t *testing.T) {
	repo := setupTestRepo(t)

	record := testRecord()
	record.Chapters = []models.ChapterEntry{{ChapterNo: "Chapter 1"}}
	record.ChapterCount = 1
	if err := repo.Upsert(record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	_, err := repo.ChapterImages("solo-leveling", "Chapter 1")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("empty cache: expected not-found error, got %v", err)
	}
}
