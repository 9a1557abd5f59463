package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) transcribe(c echo.Context) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read audio file")
	}
	defer file.Close()

	language := c.FormValue("language")

	transcription, err := s.whisper.Transcribe(c.Request().Context(), file, fileHeader.Filename, language)
	if err != nil {
		s.logger.WithError(err).Error("transcription failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "transcription unavailable")
	}

	return c.JSON(http.StatusOK, transcription)
}

func (s *Server) supportedLanguages(c echo.Context) error {
	languages := s.whisper.SupportedLanguages()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"languages": languages,
		"count":     len(languages),
	})
}
