package routes

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/kmhub/ai-service/services"
)

type ingestTextRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type ingestURLRequest struct {
	URL string `json:"url"`
}

// index stores content and returns the chunk count; entity extraction over
// the content is best effort and its counts ride along in the response.
func (s *Server) index(c echo.Context, docID, title, content string) (map[string]interface{}, error) {
	ctx := c.Request().Context()

	chunks, err := s.store.IndexDocument(ctx, services.DefaultCollection, docID, title, content)
	if err != nil {
		s.logger.WithError(err).Error("document indexing failed")
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "vector store unavailable")
	}

	response := map[string]interface{}{
		"document_id": docID,
		"title":       title,
		"chunks":      chunks,
		"collection":  services.DefaultCollection,
	}

	if result, err := s.extractor.Extract(ctx, content, false); err == nil {
		response["entity_counts"] = result.EntityCounts
	} else {
		s.logger.WithError(err).Warn("entity extraction during ingestion skipped")
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": docID,
		"chunks":      chunks,
	}).Info("document ingested")

	return response, nil
}

func (s *Server) ingestText(c echo.Context) error {
	var req ingestTextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content must not be empty")
	}
	if req.Title == "" {
		req.Title = "untitled"
	}

	response, err := s.index(c, uuid.New().String(), req.Title, req.Content)
	if err != nil {
		return err
	}
	if len(req.Tags) > 0 {
		response["tags"] = req.Tags
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) ingestURL(c echo.Context) error {
	var req ingestURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url must not be empty")
	}

	markdown, err := s.fetcher.Markdown(c.Request().Context(), req.URL)
	if err != nil {
		s.logger.WithError(err).Error("url fetch failed")
		return echo.NewHTTPError(http.StatusBadGateway, "could not fetch url")
	}

	response, err := s.index(c, uuid.New().String(), req.URL, markdown)
	if err != nil {
		return err
	}
	response["url"] = req.URL
	return c.JSON(http.StatusOK, response)
}

func (s *Server) ingestYouTube(c echo.Context) error {
	var req ingestURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	videoID := services.ExtractVideoID(strings.TrimSpace(req.URL))
	if videoID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "not a recognizable youtube url")
	}

	ctx := c.Request().Context()

	transcript, err := s.youtube.Transcript(ctx, videoID)
	if err != nil {
		s.logger.WithError(err).Error("transcript fetch failed")
		return echo.NewHTTPError(http.StatusBadGateway, "could not fetch video transcript")
	}

	title := videoID
	var metadata *services.VideoMetadata
	if metadata, err = s.youtube.Metadata(ctx, videoID); err != nil {
		s.logger.WithError(err).Warn("video metadata unavailable")
		metadata = nil
	} else if metadata.Title != "" {
		title = metadata.Title
	}

	response, err := s.index(c, "youtube-"+videoID, title, transcript.FullText)
	if err != nil {
		return err
	}
	response["video_id"] = videoID
	response["language"] = transcript.Language
	response["word_count"] = transcript.WordCount
	if metadata != nil {
		response["metadata"] = metadata
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) ingestVoiceNote(c echo.Context) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read audio file")
	}
	defer file.Close()

	transcription, err := s.whisper.Transcribe(c.Request().Context(), file, fileHeader.Filename, c.FormValue("language"))
	if err != nil {
		s.logger.WithError(err).Error("voice note transcription failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "transcription unavailable")
	}
	if strings.TrimSpace(transcription.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no speech detected in audio")
	}

	title := c.FormValue("title")
	if title == "" {
		title = "voice note " + fileHeader.Filename
	}

	response, err := s.index(c, uuid.New().String(), title, transcription.Text)
	if err != nil {
		return err
	}
	response["transcription"] = transcription
	return c.JSON(http.StatusOK, response)
}
