package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mediatext-backend/internal/extraction"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

type ExtractHandler struct {
	log     *logger.Logger
	service *extraction.Service
}

func NewExtractHandler(log *logger.Logger, service *extraction.Service) *ExtractHandler {
	return &ExtractHandler{
		log:     log.With("handler", "Extract"),
		service: service,
	}
}

type extractRequest struct {
	URL    string `json:"url" binding:"required"`
	Format string `json:"format"`
}

type extractResponse struct {
	URL      string   `json:"url"`
	Format   string   `json:"format"`
	Text     string   `json:"text"`
	Warnings []string `json:"warnings,omitempty"`
	TookMs   int64    `json:"took_ms"`
}

func (h *ExtractHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	start := time.Now()
	res := h.service.Extract(c.Request.Context(), req.URL, extraction.ParseFormat(req.Format))
	c.JSON(http.StatusOK, extractResponse{
		URL:      res.URL,
		Format:   string(res.Format),
		Text:     res.Text,
		Warnings: res.Warnings,
		TookMs:   time.Since(start).Milliseconds(),
	})
}

type extractBatchRequest struct {
	Assets []extractRequest `json:"assets" binding:"required"`
	Limit  int              `json:"limit"`
}

func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	var req extractBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assets is required"})
		return
	}
	reqs := make([]extraction.Request, 0, len(req.Assets))
	for _, a := range req.Assets {
		reqs = append(reqs, extraction.Request{
			URL:      a.URL,
			Declared: extraction.ParseFormat(a.Format),
		})
	}
	start := time.Now()
	results := h.service.ExtractBatch(c.Request.Context(), reqs, req.Limit)

	out := make([]extractResponse, 0, len(results))
	for _, res := range results {
		out = append(out, extractResponse{
			URL:      res.URL,
			Format:   string(res.Format),
			Text:     res.Text,
			Warnings: res.Warnings,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"results": out,
		"took_ms": time.Since(start).Milliseconds(),
	})
}
