package web

import (
	"context"
	"net/http"

	"paper-agent/config"
	"paper-agent/database"
	"paper-agent/genclient"
	"paper-agent/pdfextract"
	"paper-agent/search"
	"paper-agent/synthesis"
	"paper-agent/web/handlers"
	"paper-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(cfg *config.Config, logger *zap.Logger, store *database.PostgresStore,
	synth *synthesis.Synthesizer, assembler *synthesis.Assembler,
	generator *genclient.Client, searcher *search.Client, extractor *pdfextract.Extractor) *Server {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	limiter := middleware.NewChatRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitPerMinute,
		BurstSize:         cfg.RateLimitBurstSize,
	}, logger)

	paperHandler := handlers.NewPaperHandler(synth, store, logger)
	chatHandler := handlers.NewChatHandler(assembler, generator, searcher, store, limiter, logger)
	convHandler := handlers.NewConversationHandler(store, extractor, logger)

	api := router.Group("/api")
	api.POST("/draft-paper", paperHandler.DraftPaper)
	api.POST("/generate-pdf", paperHandler.GeneratePDF)
	api.POST("/chat-augmented", chatHandler.SendMessage)
	api.POST("/voice-transcript", convHandler.AppendVoiceTranscript)
	api.POST("/attach-documents", convHandler.AttachDocuments)
	api.GET("/paper/:chatID/preview", paperHandler.Preview)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
