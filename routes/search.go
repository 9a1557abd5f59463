package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmhub/ai-service/services"
)

type searchRequest struct {
	Query      string  `json:"query"`
	Collection string  `json:"collection"`
	Limit      uint64  `json:"limit"`
	Threshold  float32 `json:"threshold"`
}

func (s *Server) semanticSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}
	if req.Collection == "" {
		req.Collection = services.DefaultCollection
	}
	if req.Limit == 0 {
		req.Limit = 5
	}
	if req.Threshold == 0 {
		req.Threshold = 0.3
	}

	hits, err := s.store.Search(c.Request().Context(), req.Collection, req.Query, req.Limit, req.Threshold)
	if err != nil {
		s.logger.WithError(err).Error("semantic search failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector store unavailable")
	}
	if hits == nil {
		hits = []services.SearchHit{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results":    hits,
		"count":      len(hits),
		"collection": req.Collection,
	})
}

func (s *Server) listCollections(c echo.Context) error {
	collections, err := s.store.Collections(c.Request().Context())
	if err != nil {
		s.logger.WithError(err).Error("listing collections failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector store unavailable")
	}
	if collections == nil {
		collections = []string{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"collections": collections,
	})
}
