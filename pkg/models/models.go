package models

import "time"

// User represents an administrator account
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// MangaRecord represents one scraped title. Title is the sole identity key;
// the store enforces uniqueness on its normalized form.
type MangaRecord struct {
	Title        string         `json:"mangaTitle"`
	Summary      string         `json:"summary"`
	CoverURL     string         `json:"imageUrl"`
	Rating       string         `json:"rating"`
	Rank         string         `json:"rank"`
	Alternative  string         `json:"alternative"`
	Genres       []string       `json:"genres"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	ChapterCount int            `json:"chapter"`
	Availability bool           `json:"availability"`
	Chapters     []ChapterEntry `json:"chapters"`
}

// ChapterEntry represents one chapter belonging to a MangaRecord. ChapterNo
// is the identity within the record. Status gates listing visibility and
// defaults to false until an administrator enables it. Images is populated
// only after an image scrape has run for the chapter.
type ChapterEntry struct {
	ChapterNo string   `json:"chapterNo"`
	Label     string   `json:"label,omitempty"`
	Status    bool     `json:"status"`
	Images    []string `json:"images,omitempty"`
}

// MangaListing is the public projection returned by the listing endpoint.
// Chapters holds only visible entries, without images.
type MangaListing struct {
	Title    string         `json:"mangaTitle"`
	CoverURL string         `json:"imageUrl"`
	Type     string         `json:"type"`
	Chapters []ChapterEntry `json:"chapters"`
}

// SearchResult is one hit from the source site's search page, decorated
// with the API callback URL derived from the title slug.
type SearchResult struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	APIURL string `json:"apiUrl"`
}

// ChapterStatusUpdate targets one chapter's visibility flag.
type ChapterStatusUpdate struct {
	ChapterNo string `json:"chapterNo" binding:"required"`
	Status    bool   `json:"status"`
}

// ChapterStatusRequest is the bulk visibility patch body.
type ChapterStatusRequest struct {
	ChaptersToUpdate []ChapterStatusUpdate `json:"chaptersToUpdate" binding:"required,min=1,dive"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
