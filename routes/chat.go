package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmhub/ai-service/services"
)

type chatRequest struct {
	Message      string                 `json:"message"`
	History      []services.ChatMessage `json:"history"`
	SystemPrompt string                 `json:"system_prompt"`
	Temperature  float32                `json:"temperature"`
	MaxTokens    int                    `json:"max_tokens"`
	Stream       bool                   `json:"stream"`
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type summarizeRequest struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

type keywordsRequest struct {
	Text        string `json:"text"`
	MaxKeywords int    `json:"max_keywords"`
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message must not be empty")
	}

	messages := append(req.History, services.ChatMessage{Role: "user", Content: req.Message})
	opts := services.ChatOptions{
		SystemPrompt: req.SystemPrompt,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	}

	ctx := c.Request().Context()

	if req.Stream {
		response := c.Response()
		response.Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
		response.WriteHeader(http.StatusOK)

		err := s.llama.ChatStream(ctx, messages, opts, func(delta string) error {
			if _, err := response.Write([]byte(delta)); err != nil {
				return err
			}
			response.Flush()
			return nil
		})
		if err != nil {
			// Headers are already out; log and terminate the stream.
			s.logger.WithError(err).Error("chat stream aborted")
		}
		return nil
	}

	result, err := s.llama.Chat(ctx, messages, opts)
	if err != nil {
		s.logger.WithError(err).Error("chat completion failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "language model unavailable")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt must not be empty")
	}

	content, err := s.llama.Generate(c.Request().Context(), req.Prompt, services.ChatOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		s.logger.WithError(err).Error("generation failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "language model unavailable")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"content": content,
		"model":   s.llama.Model(),
	})
}

func (s *Server) summarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}

	summary, err := s.llama.Summarize(c.Request().Context(), req.Text, req.Style)
	if err != nil {
		s.logger.WithError(err).Error("summarization failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "language model unavailable")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary": summary,
		"style":   req.Style,
		"model":   s.llama.Model(),
	})
}

func (s *Server) extractKeywords(c echo.Context) error {
	var req keywordsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}
	max := req.MaxKeywords
	if max <= 0 {
		max = 10
	}

	keywords, err := s.llama.Keywords(c.Request().Context(), req.Text, max)
	source := "llm"
	if err != nil {
		// Keyword extraction degrades to noun-frequency ranking when the
		// model is unreachable.
		s.logger.WithError(err).Warn("llm keywords failed, using frequency fallback")
		keywords = services.FallbackKeywords(req.Text, max)
		source = "frequency"
	}
	if keywords == nil {
		keywords = []string{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"keywords": keywords,
		"source":   source,
	})
}
