package manga

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"manhwahub/pkg/apperr"
	"manhwahub/pkg/models"
)

// Handler adapts HTTP requests to reconciler and repository operations.
// Every route decodes its parameters, delegates, then serializes the result
// or forwards the error to the shared responder.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetDetails handles the cache-aside detail fetch
func (h *Handler) GetDetails(c *gin.Context) {
	record, err := h.service.GetOrScrapeDetails(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListMangas handles the public visible-records listing
func (h *Handler) ListMangas(c *gin.Context) {
	listings, err := h.service.ListVisible()
	if err != nil {
		respondError(c, err)
		return
	}
	if listings == nil {
		listings = []models.MangaListing{}
	}
	c.JSON(http.StatusOK, listings)
}

// UpdateChapters handles the chapter refresh endpoint; status=1 forces a
// re-scrape of the chapter set.
func (h *Handler) UpdateChapters(c *gin.Context) {
	refresh := c.Query("status") == "1"
	record, err := h.service.GetOrUpdateChapters(c.Request.Context(), c.Param("name"), refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ChapterStatus handles the bulk visibility patch
func (h *Handler) ChapterStatus(c *gin.Context) {
	availability, err := strconv.ParseBool(c.Query("isActive"))
	if err != nil {
		respondError(c, apperr.Validation("isActive query parameter must be a boolean"))
		return
	}

	var req models.ChapterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return
	}

	if err := h.service.UpdateVisibility(c.Request.Context(), c.Param("name"), availability, req.ChaptersToUpdate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chapter status updated successfully"})
}

// LiveChapters handles a live chapter-list scrape, without images
func (h *Handler) LiveChapters(c *gin.Context) {
	entries, err := h.service.ScrapeChapterList(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.ChapterEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// LiveImages handles a live image scrape for one chapter
func (h *Handler) LiveImages(c *gin.Context) {
	images, err := h.service.ChapterImages(c.Request.Context(), c.Param("name"), c.Param("chapter"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// CachedImages handles the stored-images read for one chapter
func (h *Handler) CachedImages(c *gin.Context) {
	images, err := h.service.CachedChapterImages(c.Param("name"), c.Param("chapter"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Search handles the source-site search pass-through
func (h *Handler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ProxyImage handles raw image proxy-fetching
func (h *Handler) ProxyImage(c *gin.Context) {
	imageURL := c.Query("url")
	if imageURL == "" {
		respondError(c, apperr.Validation("url query parameter is required"))
		return
	}

	data, err := h.service.FetchImage(c.Request.Context(), imageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

// respondError renders every failure in the shared envelope, with the HTTP
// status mirrored from the error's status code.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"message":    apperr.MessageOf(err),
			"statusCode": status,
		},
	})
}
