package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"manhwahub/internal/config"
	"manhwahub/internal/manga"
	"manhwahub/internal/scraper"
	"manhwahub/pkg/database"
)

// Pre-warms the store by scraping a list of titles, one per line. Titles
// already in the store are skipped by the cache-aside path.
func main() {
	titlesPath := flag.String("titles", "data/titles.txt", "file with one title slug per line")
	cfgPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	file, err := os.Open(*titlesPath)
	if err != nil {
		log.Fatalf("Failed to open titles file: %v", err)
	}
	defer file.Close()

	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := manga.NewRepository(db)
	fetcher := scraper.NewClient(cfg.Source.BaseURL, cfg.RequestTimeout(), cfg.Source.RequestsPerSec)
	service := manga.NewService(repo, fetcher, cfg.APIBase(), cfg.Source.MaxScrapeWorkers, scraper.AllowEmpty)

	ctx := context.Background()
	var done, failed int

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if title == "" || strings.HasPrefix(title, "#") {
			continue
		}

		record, err := service.GetOrScrapeDetails(ctx, title)
		if err != nil {
			log.Printf("failed %q: %v", title, err)
			failed++
			continue
		}
		log.Printf("stored %q (%d chapters)", record.Title, record.ChapterCount)
		done++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read titles file: %v", err)
	}

	log.Printf("seed finished: %d stored, %d failed", done, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
