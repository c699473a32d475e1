package handlers

import (
	"context"
	"net/http"

	apperrors "paper-agent/errors"
	"paper-agent/genclient"
	"paper-agent/search"
	"paper-agent/synthesis"
	"paper-agent/web/format"
	"paper-agent/web/middleware"
	"paper-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator is the text-generation dependency of the chat route.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts genclient.Options) (string, error)
}

// Searcher augments a turn with web results.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// ChatStore is the subset of the persistence gateway the chat route uses.
type ChatStore interface {
	FetchConversation(ctx context.Context, chatID, ownerEmail string) (*types.Conversation, error)
	AppendTextExchange(ctx context.Context, chatID, ownerEmail, userUtterance, assistantUtterance string) error
}

type ChatHandler struct {
	assembler *synthesis.Assembler
	generator Generator
	searcher  Searcher
	store     ChatStore
	limiter   *middleware.ChatRateLimiter
	logger    *zap.Logger
}

type ChatRequest struct {
	Message    string `json:"message"`
	ChatID     string `json:"chatId"`
	OwnerEmail string `json:"ownerEmail"`
}

func NewChatHandler(assembler *synthesis.Assembler, generator Generator, searcher Searcher,
	store ChatStore, limiter *middleware.ChatRateLimiter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		assembler: assembler,
		generator: generator,
		searcher:  searcher,
		store:     store,
		limiter:   limiter,
		logger:    logger,
	}
}

// SendMessage handles one augmented chat turn: recent context plus web
// search results feed a single generation call. The exchange is written to
// the text-turn log only after generation succeeds, both sides in one
// atomic append, so a failed turn never leaves an unpaired user utterance
// behind.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" || req.ChatID == "" {
		respondWithClientError(c, http.StatusBadRequest, "message and chatId are required")
		return
	}

	if h.limiter != nil && !h.limiter.AllowMessage(req.ChatID) {
		respondWithClientError(c, http.StatusTooManyRequests, "Too many messages, slow down")
		return
	}

	ctx := c.Request.Context()
	messageID := uuid.New().String()

	// A not-yet-persisted conversation just means empty context.
	recentContext := ""
	turnCount := 0
	if bc, err := h.assembler.Assemble(ctx, req.ChatID, req.OwnerEmail, synthesis.RecentWindow); err == nil {
		recentContext = bc.Text
		turnCount = bc.TurnCount
	} else if !apperrors.IsNotFound(err) {
		respondWithError(c, http.StatusInternalServerError, err,
			"Could not load conversation", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	results, err := h.searcher.Search(ctx, req.Message)
	if err != nil {
		respondWithError(c, upstreamStatus(err), err,
			"Web search failed", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	prompt := synthesis.BuildChatPrompt(req.Message, recentContext, search.FormatResults(results))
	response, err := h.generator.Generate(ctx, prompt, genclient.Options{})
	if err != nil {
		respondWithError(c, upstreamStatus(err), err,
			"Response generation failed", h.logger, zap.String("chat_id", req.ChatID))
		return
	}
	response = format.PreprocessAssistantText(response)

	if err := h.store.AppendTextExchange(ctx, req.ChatID, req.OwnerEmail, req.Message, response); err != nil {
		respondWithError(c, http.StatusInternalServerError, err,
			"Could not save exchange", h.logger, zap.String("chat_id", req.ChatID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":      response,
		"searchResults": results,
		"metadata": gin.H{
			"messageId":         messageID,
			"contextTurns":      turnCount,
			"searchResultCount": len(results),
		},
	})
}
