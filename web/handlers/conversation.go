package handlers

import (
	"context"
	"net/http"

	"paper-agent/pdfextract"
	"paper-agent/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConversationStore is the subset of the persistence gateway the
// conversation maintenance routes use.
type ConversationStore interface {
	AppendVoiceTurns(ctx context.Context, chatID string, pairs []types.VoicePair) (int, error)
	AddDocumentRefs(ctx context.Context, chatID string, urls []string) error
}

// BatchExtractor runs multi-document extraction for attached PDFs.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, urls []string) (*pdfextract.BatchResult, error)
}

type ConversationHandler struct {
	store     ConversationStore
	extractor BatchExtractor
	logger    *zap.Logger
}

type VoiceTranscriptRequest struct {
	ChatID string            `json:"chatId"`
	Pairs  []types.VoicePair `json:"pairs"`
}

type AttachDocumentsRequest struct {
	ChatID string   `json:"chatId"`
	URLs   []string `json:"urls"`
}

func NewConversationHandler(store ConversationStore, extractor BatchExtractor, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{store: store, extractor: extractor, logger: logger}
}

// AppendVoiceTranscript merges a voice-channel transcript delta into the
// conversation. The voice widget re-sends overlapping windows, so the
// store drops pairs it has already seen.
func (h *ConversationHandler) AppendVoiceTranscript(c *gin.Context) {
	var req VoiceTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChatID == "" || len(req.Pairs) == 0 {
		respondWithClientError(c, http.StatusBadRequest, "chatId and pairs are required")
		return
	}

	added, err := h.store.AppendVoiceTurns(c.Request.Context(), req.ChatID, req.Pairs)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err,
			"Could not save voice transcript", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"appended": added, "received": len(req.Pairs)})
}

// AttachDocuments associates PDF URLs with the conversation and runs an
// extraction pass so the caller learns up front which documents are
// usable. Extraction results are cached, so synthesis will not refetch.
func (h *ConversationHandler) AttachDocuments(c *gin.Context) {
	var req AttachDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChatID == "" || len(req.URLs) == 0 {
		respondWithClientError(c, http.StatusBadRequest, "chatId and urls are required")
		return
	}

	if err := h.store.AddDocumentRefs(c.Request.Context(), req.ChatID, req.URLs); err != nil {
		respondWithError(c, http.StatusInternalServerError, err,
			"Could not save document references", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	batch, err := h.extractor.ExtractBatch(c.Request.Context(), req.URLs)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err,
			"Document extraction failed", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"succeeded":  batch.Succeeded,
		"failed":     batch.Failed,
		"totalChars": batch.TotalChars,
	})
}
