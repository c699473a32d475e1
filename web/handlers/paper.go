package handlers

import (
	"context"
	"fmt"
	"net/http"

	apperrors "paper-agent/errors"
	"paper-agent/render"
	"paper-agent/web/format"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Synthesizer is the paper-synthesis dependency of the paper routes.
type Synthesizer interface {
	SynthesizeResearchPaper(ctx context.Context, chatID, ownerEmail, authorName string) (string, error)
}

// PaperStore is the subset of the persistence gateway the paper routes read.
type PaperStore interface {
	FetchGeneratedPaper(ctx context.Context, chatID string) (string, error)
}

type PaperHandler struct {
	synth  Synthesizer
	store  PaperStore
	logger *zap.Logger
}

type DraftPaperRequest struct {
	ChatID     string `json:"chatId"`
	UserName   string `json:"userName"`
	OwnerEmail string `json:"ownerEmail"`
}

type GeneratePDFRequest struct {
	Latex  string `json:"latex"`
	ChatID string `json:"chatId"`
}

func NewPaperHandler(synth Synthesizer, store PaperStore, logger *zap.Logger) *PaperHandler {
	return &PaperHandler{synth: synth, store: store, logger: logger}
}

// DraftPaper synthesizes a structured research paper from the
// conversation's full history and returns it. The result is also
// persisted, so re-requesting the draft replaces the stored paper.
func (h *PaperHandler) DraftPaper(c *gin.Context) {
	var req DraftPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChatID == "" || req.UserName == "" {
		respondWithClientError(c, http.StatusBadRequest, "chatId and userName are required")
		return
	}

	paper, err := h.synth.SynthesizeResearchPaper(c.Request.Context(), req.ChatID, req.OwnerEmail, req.UserName)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithClientError(c, http.StatusNotFound, "Conversation not found")
			return
		}
		respondWithError(c, http.StatusInternalServerError, err,
			"Paper generation failed", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"researchPaper": format.PreprocessAssistantText(paper)})
}

// GeneratePDF renders submitted paper text into a downloadable PDF named
// after the conversation.
func (h *PaperHandler) GeneratePDF(c *gin.Context) {
	var req GeneratePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Latex == "" || req.ChatID == "" {
		respondWithClientError(c, http.StatusBadRequest, "latex and chatId are required")
		return
	}

	pdfBytes, err := render.Document(req.Latex)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err,
			"PDF rendering failed", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, render.Filename(req.ChatID)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// Preview returns an HTML rendering of the stored paper for in-browser
// review before download.
func (h *PaperHandler) Preview(c *gin.Context) {
	chatID := c.Param("chatID")
	if chatID == "" {
		respondWithClientError(c, http.StatusBadRequest, "chat id is required")
		return
	}

	paper, err := h.store.FetchGeneratedPaper(c.Request.Context(), chatID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithClientError(c, http.StatusNotFound, "No generated paper for this conversation")
			return
		}
		respondWithError(c, http.StatusInternalServerError, err,
			"Could not load paper", h.logger, zap.String("chat_id", chatID))
		return
	}
	if paper == "" {
		respondWithClientError(c, http.StatusNotFound, "No generated paper for this conversation")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(format.PaperHTML(paper)))
}
