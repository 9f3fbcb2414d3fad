package manga

import (
	"context"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"manhwahub/internal/scraper"
	"manhwahub/internal/titles"
	"manhwahub/pkg/apperr"
	"manhwahub/pkg/models"
)

// Fetcher is the outbound side of the scrape path. *scraper.Client satisfies
// it; tests substitute a stub.
type Fetcher interface {
	Page(ctx context.Context, url string) (string, error)
	Binary(ctx context.Context, url string) ([]byte, error)
	MangaURL(title string) string
	ChapterURL(title, chapter string) string
	SearchURL(query string) string
}

// Service is the reconciler between the source site and the store: it
// decides cache-hit versus scrape-and-store, merges fresh scrapes into
// existing records and fans out per-chapter image scraping.
type Service struct {
	repo            *Repository
	fetcher         Fetcher
	apiBase         string
	scrapeWorkers   int
	bulkImagePolicy scraper.ImagePolicy
}

func NewService(repo *Repository, fetcher Fetcher, apiBase string, scrapeWorkers int, bulkImagePolicy scraper.ImagePolicy) *Service {
	if scrapeWorkers <= 0 {
		scrapeWorkers = 1
	}
	return &Service{
		repo:            repo,
		fetcher:         fetcher,
		apiBase:         strings.TrimRight(apiBase, "/"),
		scrapeWorkers:   scrapeWorkers,
		bulkImagePolicy: bulkImagePolicy,
	}
}

// GetOrScrapeDetails is the cache-aside read path. A stored record is
// returned as-is regardless of age; only a miss triggers a scrape, and the
// scraped record is persisted with availability enabled before returning.
func (s *Service) GetOrScrapeDetails(ctx context.Context, title string) (*models.MangaRecord, error) {
	existing, err := s.repo.FindByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	body, err := s.fetcher.Page(ctx, s.fetcher.MangaURL(title))
	if err != nil {
		return nil, err
	}
	detail, err := scraper.ParseDetails(body)
	if err != nil {
		return nil, err
	}

	chapters, err := s.scrapeChapterImages(ctx, title, body)
	if err != nil {
		return nil, err
	}

	record := &models.MangaRecord{
		Title:        detail.Title,
		Summary:      detail.Summary,
		CoverURL:     detail.CoverURL,
		Rating:       detail.Rating,
		Rank:         detail.Rank,
		Alternative:  detail.Alternative,
		Genres:       detail.Genres,
		Type:         detail.Type,
		Status:       detail.Status,
		ChapterCount: len(chapters),
		Availability: true,
		Chapters:     chapters,
	}

	if err := s.repo.Upsert(record); err != nil {
		return nil, err
	}

	log.Printf("scraped and stored %q (%d chapters)", record.Title, len(chapters))
	return record, nil
}

// GetOrUpdateChapters refreshes the chapter set of a stored record when
// refresh is requested, overwriting only the chapters field. A missing
// record falls back to the full cache-aside path.
func (s *Service) GetOrUpdateChapters(ctx context.Context, title string, refresh bool) (*models.MangaRecord, error) {
	existing, err := s.repo.FindByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.GetOrScrapeDetails(ctx, title)
	}
	if !refresh {
		return existing, nil
	}

	body, err := s.fetcher.Page(ctx, s.fetcher.MangaURL(title))
	if err != nil {
		return nil, err
	}

	chapters, err := s.scrapeChapterImages(ctx, title, body)
	if err != nil {
		return nil, err
	}
	chapters = mergeChapterState(existing.Chapters, chapters)

	if err := s.repo.ReplaceChapters(existing.Title, chapters); err != nil {
		return nil, err
	}

	existing.Chapters = chapters
	existing.ChapterCount = len(chapters)
	return existing, nil
}

// ScrapeChapterList performs a live chapter-list scrape without images.
func (s *Service) ScrapeChapterList(ctx context.Context, title string) ([]models.ChapterEntry, error) {
	body, err := s.fetcher.Page(ctx, s.fetcher.MangaURL(title))
	if err != nil {
		return nil, err
	}
	items, err := scraper.ParseChapterList(body)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ChapterEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, models.ChapterEntry{ChapterNo: item.ChapterNo, Label: item.Label})
	}
	return entries, nil
}

// ChapterImages performs a live image scrape for one chapter page. An empty
// page is reported as not found, matching the public endpoint contract.
func (s *Service) ChapterImages(ctx context.Context, title, chapter string) ([]string, error) {
	body, err := s.fetcher.Page(ctx, s.fetcher.ChapterURL(title, chapter))
	if err != nil {
		return nil, err
	}
	return scraper.ParseImages(body, scraper.ErrorOnEmpty)
}

// FetchImage proxy-fetches one raw image from the source's image host.
func (s *Service) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		return nil, apperr.Validation("url parameter must be an absolute http(s) url")
	}
	return s.fetcher.Binary(ctx, imageURL)
}

// UpdateVisibility applies one visibility patch per chapter, sequentially and
// in order, carrying the same availability value each time. The first failing
// patch aborts the remainder; later entries win when a chapter repeats.
func (s *Service) UpdateVisibility(ctx context.Context, title string, availability bool, updates []models.ChapterStatusUpdate) error {
	for _, update := range updates {
		if err := ctx.Err(); err != nil {
			return err
		}
		chapterNo := titles.ChapterLabel(update.ChapterNo)
		if err := s.repo.PatchChapterVisibility(title, chapterNo, update.Status, availability); err != nil {
			return err
		}
	}
	return nil
}

// ListVisible returns the public listing projection from the store.
func (s *Service) ListVisible() ([]models.MangaListing, error) {
	return s.repo.ListVisible()
}

// CachedChapterImages reads a chapter's previously scraped images from the
// store without touching the source site.
func (s *Service) CachedChapterImages(title, chapter string) ([]string, error) {
	return s.repo.ChapterImages(title, titles.ChapterLabel(chapter))
}

// Search is a stateless pass-through to the source site's search page, with
// each hit decorated by the API callback URL derived from its title slug.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	body, err := s.fetcher.Page(ctx, s.fetcher.SearchURL(query))
	if err != nil {
		return nil, err
	}
	items, err := scraper.ParseSearchResults(body)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, models.SearchResult{
			Title:  item.Title,
			URL:    item.URL,
			APIURL: s.apiBase + "/" + titles.Slugify(item.Title) + "/details",
		})
	}
	return results, nil
}

// scrapeChapterImages extracts the chapter listing from an already fetched
// main page, then fetches every chapter page through a bounded worker group
// and attaches each chapter's images. Any single failure cancels the group
// and fails the whole aggregate.
func (s *Service) scrapeChapterImages(ctx context.Context, title, mainPageHTML string) ([]models.ChapterEntry, error) {
	items, err := scraper.ParseChapterList(mainPageHTML)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ChapterEntry, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.scrapeWorkers)

	for i, item := range items {
		group.Go(func() error {
			pageURL := item.URL
			if pageURL == "" {
				pageURL = s.fetcher.ChapterURL(title, chapterToken(item.ChapterNo))
			}

			body, err := s.fetcher.Page(groupCtx, pageURL)
			if err != nil {
				return err
			}
			images, err := scraper.ParseImages(body, s.bulkImagePolicy)
			if err != nil {
				return err
			}

			entries[i] = models.ChapterEntry{
				ChapterNo: item.ChapterNo,
				Label:     item.Label,
				Images:    images,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// mergeChapterState carries administrator-owned and previously scraped state
// from the stored chapter set onto a fresh scrape: visibility flags always,
// images only where the fresh scrape came back empty.
func mergeChapterState(existing, fresh []models.ChapterEntry) []models.ChapterEntry {
	byNo := make(map[string]models.ChapterEntry, len(existing))
	for _, entry := range existing {
		byNo[strings.ToLower(entry.ChapterNo)] = entry
	}

	merged := make([]models.ChapterEntry, len(fresh))
	for i, entry := range fresh {
		if prev, ok := byNo[strings.ToLower(entry.ChapterNo)]; ok {
			entry.Status = prev.Status
			if len(entry.Images) == 0 {
				entry.Images = prev.Images
			}
		}
		merged[i] = entry
	}
	return merged
}

// chapterToken turns a chapter label into the URL token the source site
// uses: "Chapter 12" becomes "12".
func chapterToken(chapterNo string) string {
	token := strings.TrimSpace(chapterNo)
	lowered := strings.ToLower(token)
	if strings.HasPrefix(lowered, "chapter") {
		token = strings.TrimSpace(token[len("chapter"):])
	}
	return strings.ReplaceAll(strings.ToLower(token), " ", "-")
}
