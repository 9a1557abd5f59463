package routes

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/kmhub/ai-service/pkg/extract"
	"github.com/kmhub/ai-service/services"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by path and status",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency by path",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// Generator produces text completions.
type Generator interface {
	Chat(ctx context.Context, messages []services.ChatMessage, opts services.ChatOptions) (*services.ChatResult, error)
	ChatStream(ctx context.Context, messages []services.ChatMessage, opts services.ChatOptions, emit func(delta string) error) error
	Generate(ctx context.Context, prompt string, opts services.ChatOptions) (string, error)
	Summarize(ctx context.Context, text, style string) (string, error)
	Keywords(ctx context.Context, text string, max int) ([]string, error)
	Model() string
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, r io.Reader, filename, language string) (*services.Transcription, error)
	SupportedLanguages() []string
}

// DocumentStore indexes and searches document chunks.
type DocumentStore interface {
	IndexDocument(ctx context.Context, collection, docID, title, content string) (int, error)
	Search(ctx context.Context, collection, query string, limit uint64, threshold float32) ([]services.SearchHit, error)
	Collections(ctx context.Context) ([]string, error)
	Healthy(ctx context.Context) bool
}

// VideoSource resolves YouTube metadata and captions.
type VideoSource interface {
	Metadata(ctx context.Context, videoID string) (*services.VideoMetadata, error)
	Transcript(ctx context.Context, videoID string) (*services.Transcript, error)
}

// PageFetcher downloads web pages as markdown.
type PageFetcher interface {
	Markdown(ctx context.Context, url string) (string, error)
}

// Server holds the wired capabilities behind the HTTP API.
type Server struct {
	extractor *extract.Extractor
	llama     Generator
	whisper   Transcriber
	store     DocumentStore
	youtube   VideoSource
	fetcher   PageFetcher
	logger    *logrus.Logger
}

// NewServer wires the capabilities into a Server.
func NewServer(
	extractor *extract.Extractor,
	llama Generator,
	whisper Transcriber,
	store DocumentStore,
	youtube VideoSource,
	fetcher PageFetcher,
	logger *logrus.Logger,
) *Server {
	return &Server{
		extractor: extractor,
		llama:     llama,
		whisper:   whisper,
		store:     store,
		youtube:   youtube,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Echo builds the router with all endpoints registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(s.requestLogger)

	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	entities := api.Group("/entities")
	entities.POST("/extract", s.extractEntities)
	entities.POST("/calendar-events", s.calendarEvents)
	entities.POST("/action-items", s.actionItems)
	entities.GET("/entity-types", s.entityTypes)

	chat := api.Group("/chat")
	chat.POST("/chat", s.chat)
	chat.POST("/generate", s.generate)
	chat.POST("/summarize", s.summarize)
	chat.POST("/extract-keywords", s.extractKeywords)

	voice := api.Group("/voice")
	voice.POST("/transcribe", s.transcribe)
	voice.GET("/supported-languages", s.supportedLanguages)

	search := api.Group("/search")
	search.POST("/semantic", s.semanticSearch)
	search.GET("/collections", s.listCollections)

	ingest := api.Group("/ingest")
	ingest.POST("/text", s.ingestText)
	ingest.POST("/url", s.ingestURL)
	ingest.POST("/youtube", s.ingestYouTube)
	ingest.POST("/voice-note", s.ingestVoiceNote)

	return e
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		status := c.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
		}

		elapsed := time.Since(start)
		httpRequestsTotal.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())

		s.logger.WithFields(logrus.Fields{
			"method":  c.Request().Method,
			"path":    c.Request().URL.Path,
			"status":  status,
			"elapsed": elapsed.String(),
		}).Info("request handled")

		return err
	}
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": "ai-service",
		"version": "1.0.0",
		"endpoints": []string{
			"/api/entities", "/api/chat", "/api/voice", "/api/search", "/api/ingest",
		},
	})
}

func (s *Server) health(c echo.Context) error {
	ctx := c.Request().Context()

	checks := map[string]string{
		"entity_extraction": "up",
		"vector_store":      "down",
	}
	if s.store != nil && s.store.Healthy(ctx) {
		checks["vector_store"] = "up"
	}

	status := "healthy"
	for _, state := range checks {
		if state != "up" {
			status = "degraded"
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   status,
		"services": checks,
	})
}
