package gin

import (
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/gin-gonic/gin"
)

type scrapePayload struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// handleScrape extracts and structures one page. An empty URL yields the
// empty document.
func (a *API) handleScrape(c *gin.Context) {
	var payload scrapePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := a.Extractor.Extract(c.Request.Context(), stackdoc.ExtractRequest{
		URL:      strings.TrimSpace(payload.URL),
		Name:     payload.Name,
		Category: stackdoc.ParseCategory(payload.Category),
	})
	if err != nil {
		a.failed(c, err, "Failed to process content")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"content":  result.Content,
		"metadata": result.Metadata,
	})
}

// handleExtract scrapes one page to markdown without structuring it.
func (a *API) handleExtract(c *gin.Context) {
	var payload struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	url := strings.TrimSpace(payload.URL)
	if url == "" {
		respondMessage(c, http.StatusBadRequest, "URL is required")
		return
	}

	page, err := a.Scraper.Scrape(c.Request.Context(), url)
	if err != nil {
		a.failed(c, err, "Failed to crawl content")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": gin.H{
			"markdown":    page.Markdown,
			"title":       page.Title,
			"description": page.Description,
			"url":         page.URL,
		},
		"metadata": stackdoc.IngestMetadata{
			Total:       1,
			Completed:   1,
			CreditsUsed: 1,
			ExpiresAt:   time.Now().UTC(),
		},
	})
}

// handleParse extracts a name, category and URL from free text.
func (a *API) handleParse(c *gin.Context) {
	var payload struct {
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.Input) == "" {
		respondMessage(c, http.StatusBadRequest, "Input is required")
		return
	}

	if a.Parser == nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to parse input")
		return
	}
	metadata, err := a.Parser.Parse(c.Request.Context(), payload.Input)
	if err != nil {
		a.logger().Warn("parse failed", "error", err)
		respondMessage(c, http.StatusInternalServerError, "Failed to parse input")
		return
	}

	c.JSON(http.StatusOK, metadata)
}

// failed reports timeouts, scrape failures and invalid input as they are
// and replaces anything else with a generic message.
func (a *API) failed(c *gin.Context, err error, generic string) {
	switch stackdoc.ErrorCode(err) {
	case stackdoc.ETIMEOUT, stackdoc.EUPSTREAM, stackdoc.EINVALID:
		a.Error(c, err)
	default:
		a.logger().Error("request failed", "path", c.Request.URL.Path, "error", err)
		respondMessage(c, http.StatusInternalServerError, generic)
	}
}
