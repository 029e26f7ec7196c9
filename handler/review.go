package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
	"github.com/ruslamp94/reglament-svetofor-v78/config"
	"github.com/ruslamp94/reglament-svetofor-v78/docpipe"
	"github.com/ruslamp94/reglament-svetofor-v78/middleware"
	"github.com/ruslamp94/reglament-svetofor-v78/model"
	"github.com/ruslamp94/reglament-svetofor-v78/pkg/logger"
	"github.com/ruslamp94/reglament-svetofor-v78/service"
)

const (
	// maxUploadBytes caps uploaded document size.
	maxUploadBytes = 20 << 20
	// maxTextRunes caps the decoded text kept on a review.
	maxTextRunes = 300_000
	// minTextRunes rejects submissions too short to analyze.
	minTextRunes = 50
)

type ReviewHandler struct {
	store     *service.ReviewStore
	templates *service.TemplateStore
	settings  *service.Settings
	advisor   *service.AdvisorService
	archive   *service.ArchiveService // nil when archiving is disabled
	extractor *analyzer.Extractor
	orgName   string
}

func NewReviewHandler(cfg *config.Config, store *service.ReviewStore, templates *service.TemplateStore,
	settings *service.Settings, advisor *service.AdvisorService, archive *service.ArchiveService) *ReviewHandler {
	return &ReviewHandler{
		store:     store,
		templates: templates,
		settings:  settings,
		advisor:   advisor,
		archive:   archive,
		extractor: analyzer.NewExtractor(cfg.Org.Exclusions),
		orgName:   cfg.Org.ShortName,
	}
}

type CreateReviewRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create registers a review from raw text and runs metadata extraction.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	text := truncateRunes(req.Text, maxTextRunes)
	if len([]rune(text)) < minTextRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Text too short, need at least %d characters", minTextRunes)})
		return
	}

	review := h.newReview(c, text, "")
	h.store.Save(review)

	c.JSON(http.StatusOK, review)
}

// Upload registers a review from an uploaded document file. The file is
// decoded according to its declared format and optionally archived.
func (h *ReviewHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	format, err := docpipe.Detect(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only TXT, DOCX and PDF files are allowed"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	text, err := docpipe.Decode(data, format)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to decode document: " + err.Error()})
		return
	}

	text = truncateRunes(text, maxTextRunes)
	if len([]rune(text)) < minTextRunes {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Document contains too little text to analyze"})
		return
	}

	review := h.newReview(c, text, header.Filename)

	if h.archive != nil {
		objectName := fmt.Sprintf("%s/%s/%s", review.Username, review.ID, header.Filename)
		ctx := c.Request.Context()
		if err := h.archive.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentTypeFor(format)); err != nil {
			// Archival is best-effort: the analysis must not depend on it.
			logger.Warn(ctx, "failed to archive document", "review_id", review.ID, "error", err)
		} else if url, err := h.archive.PresignedURL(ctx, objectName); err == nil {
			review.SourceURL = url
		}
	}

	h.store.Save(review)

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) newReview(c *gin.Context, text, filename string) *model.Review {
	return &model.Review{
		ID:         uuid.New().String(),
		Username:   middleware.GetUsername(c),
		Filename:   filename,
		Text:       text,
		Extraction: extractionOf(h.extractor, text),
		CreatedAt:  time.Now(),
	}
}

func extractionOf(e *analyzer.Extractor, text string) *analyzer.ExtractionResult {
	res := e.ExtractAll(text)
	return &res
}

// List returns the current user's review history without the text bodies.
func (h *ReviewHandler) List(c *gin.Context) {
	reviews := h.store.GetByUser(middleware.GetUsername(c))

	result := make([]gin.H, len(reviews))
	for i, r := range reviews {
		item := gin.H{
			"id":         r.ID,
			"filename":   r.Filename,
			"created_at": r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if r.Extraction != nil {
			item["classification"] = r.Extraction.Classification
			item["counterparty"] = r.Extraction.Counterparty
			item["amount"] = r.Extraction.Amount
		}
		if r.Zone != nil {
			item["zone"] = r.Zone.Zone
		}
		if r.Compliance != nil {
			item["verdict"] = r.Compliance.Verdict
		}
		result[i] = item
	}

	c.JSON(http.StatusOK, gin.H{"reviews": result})
}

// Get returns a single review with all analysis results.
func (h *ReviewHandler) Get(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}
	c.JSON(http.StatusOK, review)
}

// Delete removes a review from the history.
func (h *ReviewHandler) Delete(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}

	h.store.Delete(review.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ownedReview loads the review from the path parameter and enforces
// ownership; writes the error response itself when it returns nil.
func (h *ReviewHandler) ownedReview(c *gin.Context) *model.Review {
	review := h.store.Get(c.Param("id"))
	if review == nil || review.Username != middleware.GetUsername(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil
	}
	return review
}

type ZoneRequest struct {
	Amount   float64 `json:"amount"`
	Form     string  `json:"form"`
	DealType string  `json:"deal_type"`
}

// Zone classifies the review into a risk zone from the supplied deal
// parameters and the current thresholds. A re-run replaces the previous
// decision wholesale.
func (h *ReviewHandler) Zone(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}

	var req ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	decision := analyzer.ClassifyZone(req.Amount, analyzer.DocumentForm(req.Form), req.DealType, h.settings.Thresholds())

	h.store.Update(review.ID, func(r *model.Review) {
		r.Zone = &decision
	})

	c.JSON(http.StatusOK, decision)
}

type ComplianceRequest struct {
	TemplateID string `json:"template_id"`
}

// Compliance matches the review text against a template. With an empty
// template_id the classification hint is used. An unknown template yields
// a success=false result, not an error status.
func (h *ReviewHandler) Compliance(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}

	var req ComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	templateID := req.TemplateID
	if templateID == "" && review.Extraction != nil {
		templateID = review.Extraction.Classification.TemplateHint
	}
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select a template: the document type gives no hint"})
		return
	}

	result := analyzer.MatchTemplate(review.Text, templateID, h.templates.Registry())

	h.store.Update(review.ID, func(r *model.Review) {
		r.Compliance = &result
	})

	c.JSON(http.StatusOK, result)
}

// StartOpinion launches the narrative AI review asynchronously. Progress
// is tracked on the review record and polled via GetOpinion.
func (h *ReviewHandler) StartOpinion(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}

	if !h.advisor.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "AI provider not configured"})
		return
	}

	if review.OpinionStatus == model.OpinionPending || review.OpinionStatus == model.OpinionProcessing {
		c.JSON(http.StatusConflict, gin.H{"error": "Opinion already in progress"})
		return
	}

	h.store.Update(review.ID, func(r *model.Review) {
		r.Opinion = ""
		r.ErrorMsg = ""
		r.OpinionStatus = model.OpinionPending
	})

	go h.runOpinion(review.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"id":             review.ID,
		"opinion_status": model.OpinionPending,
	})
}

// runOpinion performs the provider call off the request goroutine.
func (h *ReviewHandler) runOpinion(reviewID string) {
	review := h.store.Get(reviewID)
	if review == nil {
		return
	}

	h.store.Update(reviewID, func(r *model.Review) {
		r.OpinionStatus = model.OpinionProcessing
	})

	prompt := service.BuildPrompt(h.orgName, review.Text, review.Extraction, review.Compliance)

	opinion, err := h.advisor.Review(context.Background(), prompt)
	if err != nil {
		logger.Error(context.Background(), "opinion request failed", "review_id", reviewID, "error", err)
		h.store.Update(reviewID, func(r *model.Review) {
			r.OpinionStatus = model.OpinionFailed
			r.ErrorMsg = err.Error()
		})
		return
	}

	h.store.Update(reviewID, func(r *model.Review) {
		r.OpinionStatus = model.OpinionCompleted
		r.Opinion = opinion
	})
}

// GetOpinion reports the narrative review status and result.
func (h *ReviewHandler) GetOpinion(c *gin.Context) {
	review := h.ownedReview(c)
	if review == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             review.ID,
		"opinion_status": review.OpinionStatus,
		"opinion":        review.Opinion,
		"error_msg":      review.ErrorMsg,
	})
}

// Demo returns the bundled demo contract text.
func (h *ReviewHandler) Demo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"text": model.DemoContract})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func contentTypeFor(format docpipe.Format) string {
	switch format {
	case docpipe.FormatPDF:
		return "application/pdf"
	case docpipe.FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/plain; charset=utf-8"
}
