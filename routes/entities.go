package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmhub/ai-service/pkg/extract"
)

type extractRequest struct {
	Text            string   `json:"text"`
	IncludeCalendar bool     `json:"include_calendar"`
	EntityTypes     []string `json:"entity_types"`
}

type textRequest struct {
	Text string `json:"text"`
}

type actionItemsRequest struct {
	Text              string  `json:"text"`
	PriorityThreshold float64 `json:"priority_threshold"`
}

func (s *Server) extractEntities(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}

	result, err := s.extractor.Extract(c.Request().Context(), req.Text, req.IncludeCalendar)
	if err != nil {
		s.logger.WithError(err).Error("entity extraction failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "entity extraction unavailable")
	}

	if len(req.EntityTypes) > 0 {
		result = filterResult(result, req.EntityTypes)
	}

	return c.JSON(http.StatusOK, result)
}

// filterResult keeps only the requested entity types and recomputes the
// per-type counts over the surviving entities.
func filterResult(result *extract.Result, entityTypes []string) *extract.Result {
	wanted := make(map[string]bool, len(entityTypes))
	for _, typ := range entityTypes {
		wanted[strings.ToUpper(typ)] = true
	}

	filtered := make([]extract.Entity, 0, len(result.Entities))
	counts := make(map[string]int)
	for _, entity := range result.Entities {
		if !wanted[entity.Type] {
			continue
		}
		filtered = append(filtered, entity)
		counts[entity.Type]++
	}

	out := *result
	out.Entities = filtered
	out.EntityCounts = counts
	return &out
}

func (s *Server) calendarEvents(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}

	result, err := s.extractor.Extract(c.Request().Context(), req.Text, true)
	if err != nil {
		s.logger.WithError(err).Error("calendar extraction failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "entity extraction unavailable")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"calendar_events": result.CalendarEvents,
		"count":           len(result.CalendarEvents),
	})
}

func (s *Server) actionItems(c echo.Context) error {
	var req actionItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}

	items := s.extractor.ActionItems(req.Text)
	if req.PriorityThreshold > 0 {
		kept := items[:0]
		for _, item := range items {
			if item.Confidence >= req.PriorityThreshold {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	if items == nil {
		items = []extract.ActionItem{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"action_items": items,
		"count":        len(items),
	})
}

func (s *Server) entityTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ner_types": map[string]string{
			extract.TypePerson: "People, including fictional",
			extract.TypeGPE:    "Countries, cities, states",
		},
		"pattern_types": map[string]string{
			extract.TypeEmail: "Email addresses",
			extract.TypePhone: "Phone numbers",
			extract.TypeURL:   "Web addresses",
			extract.TypeDate:  "Absolute or relative dates",
			extract.TypeTime:  "Times of day",
		},
	})
}
