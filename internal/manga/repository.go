package manga

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"manhwahub/internal/titles"
	"manhwahub/pkg/apperr"
	"manhwahub/pkg/models"
)

// Repository wraps all store access for manga records. Every lookup goes
// through titles.Key so hyphenated and spaced spellings address the same row.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const mangaColumns = "id, title, summary, cover_url, rating, rank, alternative, genres, type, status, chapter_count, availability"

// FindByTitle returns the record for a title, or nil when no record exists.
func (r *Repository) FindByTitle(title string) (*models.MangaRecord, error) {
	row := r.db.QueryRow("SELECT "+mangaColumns+" FROM manga WHERE title_key = ?", titles.Key(title))

	var id int64
	record := &models.MangaRecord{}
	var genresJSON string
	err := row.Scan(
		&id,
		&record.Title,
		&record.Summary,
		&record.CoverURL,
		&record.Rating,
		&record.Rank,
		&record.Alternative,
		&genresJSON,
		&record.Type,
		&record.Status,
		&record.ChapterCount,
		&record.Availability,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("failed to load manga", err)
	}

	if err := json.Unmarshal([]byte(genresJSON), &record.Genres); err != nil {
		return nil, apperr.Persistence("failed to decode genres", err)
	}

	chapters, err := r.loadChapters(id)
	if err != nil {
		return nil, err
	}
	record.Chapters = chapters

	return record, nil
}

func (r *Repository) loadChapters(mangaID int64) ([]models.ChapterEntry, error) {
	rows, err := r.db.Query(
		"SELECT chapter_no, label, visible, images FROM chapters WHERE manga_id = ? ORDER BY position",
		mangaID,
	)
	if err != nil {
		return nil, apperr.Persistence("failed to load chapters", err)
	}
	defer rows.Close()

	var chapters []models.ChapterEntry
	for rows.Next() {
		var entry models.ChapterEntry
		var imagesJSON string
		if err := rows.Scan(&entry.ChapterNo, &entry.Label, &entry.Status, &imagesJSON); err != nil {
			return nil, apperr.Persistence("failed to scan chapter", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &entry.Images); err != nil {
			return nil, apperr.Persistence("failed to decode chapter images", err)
		}
		chapters = append(chapters, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to iterate chapters", err)
	}

	return chapters, nil
}

// Upsert inserts the record, or overwrites every stored field of an existing
// record while preserving its identity. The chapter set is written exactly as
// provided; callers merge flags they want carried over before calling.
func (r *Repository) Upsert(record *models.MangaRecord) error {
	genresJSON, err := json.Marshal(record.Genres)
	if err != nil {
		return apperr.Persistence("failed to encode genres", err)
	}
	if record.Genres == nil {
		genresJSON = []byte("[]")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return apperr.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	key := titles.Key(record.Title)
	_, err = tx.Exec(`
		INSERT INTO manga (title, title_key, summary, cover_url, rating, rank, alternative, genres, type, status, chapter_count, availability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title_key) DO UPDATE SET
			summary = excluded.summary,
			cover_url = excluded.cover_url,
			rating = excluded.rating,
			rank = excluded.rank,
			alternative = excluded.alternative,
			genres = excluded.genres,
			type = excluded.type,
			status = excluded.status,
			chapter_count = excluded.chapter_count,
			availability = excluded.availability
	`,
		titles.Normalize(record.Title),
		key,
		record.Summary,
		record.CoverURL,
		record.Rating,
		record.Rank,
		record.Alternative,
		string(genresJSON),
		record.Type,
		record.Status,
		record.ChapterCount,
		record.Availability,
	)
	if err != nil {
		return apperr.Persistence("failed to upsert manga", err)
	}

	var mangaID int64
	if err := tx.QueryRow("SELECT id FROM manga WHERE title_key = ?", key).Scan(&mangaID); err != nil {
		return apperr.Persistence("failed to resolve manga id", err)
	}

	if err := writeChapters(tx, mangaID, record.Chapters); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("failed to commit upsert", err)
	}
	return nil
}

// ReplaceChapters overwrites only the chapter set and count of an existing
// record, leaving every other field untouched.
func (r *Repository) ReplaceChapters(title string, chapters []models.ChapterEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return apperr.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var mangaID int64
	err = tx.QueryRow("SELECT id FROM manga WHERE title_key = ?", titles.Key(title)).Scan(&mangaID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("no manga found with the given title")
	}
	if err != nil {
		return apperr.Persistence("failed to resolve manga", err)
	}

	if err := writeChapters(tx, mangaID, chapters); err != nil {
		return err
	}

	if _, err := tx.Exec("UPDATE manga SET chapter_count = ? WHERE id = ?", len(chapters), mangaID); err != nil {
		return apperr.Persistence("failed to update chapter count", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("failed to commit chapter replace", err)
	}
	return nil
}

func writeChapters(tx *sql.Tx, mangaID int64, chapters []models.ChapterEntry) error {
	if _, err := tx.Exec("DELETE FROM chapters WHERE manga_id = ?", mangaID); err != nil {
		return apperr.Persistence("failed to clear chapters", err)
	}

	stmt, err := tx.Prepare("INSERT INTO chapters (manga_id, chapter_no, label, visible, images, position) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return apperr.Persistence("failed to prepare chapter insert", err)
	}
	defer stmt.Close()

	for position, entry := range chapters {
		imagesJSON, err := json.Marshal(entry.Images)
		if err != nil {
			return apperr.Persistence("failed to encode chapter images", err)
		}
		if entry.Images == nil {
			imagesJSON = []byte("[]")
		}
		if _, err := stmt.Exec(mangaID, entry.ChapterNo, entry.Label, entry.Status, string(imagesJSON), position); err != nil {
			return apperr.Persistence(fmt.Sprintf("failed to insert chapter %q", entry.ChapterNo), err)
		}
	}
	return nil
}

// PatchChapterVisibility flips exactly one chapter's visibility flag and the
// record's availability flag in a single transaction. Nothing else changes.
func (r *Repository) PatchChapterVisibility(title, chapterNo string, visible, availability bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return apperr.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var mangaID int64
	err = tx.QueryRow("SELECT id FROM manga WHERE title_key = ?", titles.Key(title)).Scan(&mangaID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("no manga found with the given title")
	}
	if err != nil {
		return apperr.Persistence("failed to resolve manga", err)
	}

	res, err := tx.Exec(
		"UPDATE chapters SET visible = ? WHERE manga_id = ? AND chapter_no = ? COLLATE NOCASE",
		visible, mangaID, chapterNo,
	)
	if err != nil {
		return apperr.Persistence("failed to update chapter visibility", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence("failed to read update result", err)
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("no chapter %q found for the given title", chapterNo))
	}

	if _, err := tx.Exec("UPDATE manga SET availability = ? WHERE id = ?", availability, mangaID); err != nil {
		return apperr.Persistence("failed to update availability", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("failed to commit visibility patch", err)
	}
	return nil
}

// ListVisible returns the public projection: available records only, each
// carrying only its visible chapters. Filtering happens in the store, not in
// Go, so large datasets are never pulled fully into memory.
func (r *Repository) ListVisible() ([]models.MangaListing, error) {
	rows, err := r.db.Query(`
		SELECT m.title, m.cover_url, m.type, c.chapter_no, c.label
		FROM manga m
		LEFT JOIN chapters c ON c.manga_id = m.id AND c.visible = 1
		WHERE m.availability = 1
		ORDER BY m.title, c.position
	`)
	if err != nil {
		return nil, apperr.Persistence("failed to list visible manga", err)
	}
	defer rows.Close()

	var listings []models.MangaListing
	index := make(map[string]int)
	for rows.Next() {
		var title, coverURL, mangaType string
		var chapterNo, label sql.NullString
		if err := rows.Scan(&title, &coverURL, &mangaType, &chapterNo, &label); err != nil {
			return nil, apperr.Persistence("failed to scan listing row", err)
		}

		pos, ok := index[title]
		if !ok {
			listings = append(listings, models.MangaListing{
				Title:    title,
				CoverURL: coverURL,
				Type:     mangaType,
				Chapters: []models.ChapterEntry{},
			})
			pos = len(listings) - 1
			index[title] = pos
		}

		if chapterNo.Valid {
			listings[pos].Chapters = append(listings[pos].Chapters, models.ChapterEntry{
				ChapterNo: chapterNo.String,
				Label:     label.String,
				Status:    true,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to iterate listings", err)
	}

	return listings, nil
}

// ChapterImages returns the cached image URLs for one chapter. A missing
// chapter row and an empty cached set both report not found: there is
// nothing cached to serve.
func (r *Repository) ChapterImages(title, chapterNo string) ([]string, error) {
	var imagesJSON string
	err := r.db.QueryRow(`
		SELECT c.images FROM chapters c
		JOIN manga m ON m.id = c.manga_id
		WHERE m.title_key = ? AND c.chapter_no = ? COLLATE NOCASE
	`, titles.Key(title), chapterNo).Scan(&imagesJSON)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("no cached images for the chapter")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to load chapter images", err)
	}

	var images []string
	if err := json.Unmarshal([]byte(imagesJSON), &images); err != nil {
		return nil, apperr.Persistence("failed to decode chapter images", err)
	}
	if len(images) == 0 {
		return nil, apperr.NotFound("no cached images for the chapter")
	}
	return images, nil
}
