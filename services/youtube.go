package services

import (
	"context"
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtube\.com/watch\?.+&v=)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([0-9A-Za-z_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

var playerResponseRe = regexp.MustCompile(`(?s)ytInitialPlayerResponse\s*=\s*(\{.*?\})\s*;\s*(?:var\s|</script>)`)

// VideoMetadata describes a YouTube video. Fields past ID are empty when no
// Data API key is configured.
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Description  string `json:"description"`
	PublishedAt  string `json:"published_at"`
	Duration     string `json:"duration"`
	ViewCount    uint64 `json:"view_count"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// CaptionSegment is one timed caption line.
type CaptionSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript is a full caption track joined into plain text.
type Transcript struct {
	VideoID   string           `json:"video_id"`
	Language  string           `json:"language"`
	FullText  string           `json:"full_text"`
	WordCount int              `json:"word_count"`
	Segments  []CaptionSegment `json:"segments"`
}

// YouTube resolves video metadata via the Data API and caption tracks via
// the public watch page. The Data API client is optional; without a key
// metadata calls return only the video ID.
type YouTube struct {
	api    *youtube.Service
	client *http.Client
	logger *logrus.Logger
}

// NewYouTube builds the service. An empty apiKey disables the Data API.
func NewYouTube(ctx context.Context, apiKey string, logger *logrus.Logger) (*YouTube, error) {
	service := &YouTube{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}

	if apiKey != "" {
		api, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, errors.Wrap(err, "creating youtube data api client")
		}
		service.api = api
	}

	return service, nil
}

// ExtractVideoID pulls the 11-character video ID out of any of the common
// YouTube URL shapes. A bare ID passes through unchanged. Returns "" when
// nothing matches.
func ExtractVideoID(url string) string {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1]
		}
	}
	if bareVideoID.MatchString(url) {
		return url
	}
	return ""
}

// Metadata fetches video details through the Data API.
func (y *YouTube) Metadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	if y.api == nil {
		return &VideoMetadata{VideoID: videoID}, nil
	}

	response, err := y.api.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "fetching metadata for %s", videoID)
	}
	if len(response.Items) == 0 {
		return nil, errors.Errorf("video %s not found", videoID)
	}

	item := response.Items[0]
	metadata := &VideoMetadata{
		VideoID:     videoID,
		Title:       item.Snippet.Title,
		Channel:     item.Snippet.ChannelTitle,
		Description: item.Snippet.Description,
		PublishedAt: item.Snippet.PublishedAt,
		Duration:    item.ContentDetails.Duration,
		ViewCount:   item.Statistics.ViewCount,
	}
	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
		metadata.ThumbnailURL = item.Snippet.Thumbnails.High.Url
	}
	return metadata, nil
}

// Transcript downloads the caption track for a video. English tracks are
// preferred; otherwise the first available track is used.
func (y *YouTube) Transcript(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := y.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, err
	}

	match := playerResponseRe.FindSubmatch(page)
	if match == nil {
		return nil, errors.Errorf("no player response found for video %s", videoID)
	}

	tracks := gjson.GetBytes(match[1], "captions.playerCaptionsTracklistRenderer.captionTracks")
	if !tracks.Exists() || len(tracks.Array()) == 0 {
		return nil, errors.Errorf("video %s has no caption tracks", videoID)
	}

	track := tracks.Array()[0]
	for _, candidate := range tracks.Array() {
		if strings.HasPrefix(candidate.Get("languageCode").String(), "en") {
			track = candidate
			break
		}
	}

	captionURL := track.Get("baseUrl").String()
	if captionURL == "" {
		return nil, errors.Errorf("caption track for %s has no url", videoID)
	}

	body, err := y.get(ctx, captionURL)
	if err != nil {
		return nil, err
	}

	segments, err := parseCaptionXML(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing captions for %s", videoID)
	}

	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, segment.Text)
	}
	fullText := strings.Join(parts, " ")

	transcript := &Transcript{
		VideoID:   videoID,
		Language:  track.Get("languageCode").String(),
		FullText:  fullText,
		WordCount: len(strings.Fields(fullText)),
		Segments:  segments,
	}

	y.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"language": transcript.Language,
		"segments": len(segments),
	}).Info("caption track fetched")

	return transcript, nil
}

func (y *YouTube) get(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	request.Header.Set("Accept-Language", "en-US,en")

	response, err := y.client.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: status %d", url, response.StatusCode)
	}
	return io.ReadAll(io.LimitReader(response.Body, maxFetchBytes))
}

func parseCaptionXML(body []byte) ([]CaptionSegment, error) {
	var doc struct {
		Texts []struct {
			Start float64 `xml:"start,attr"`
			Dur   float64 `xml:"dur,attr"`
			Text  string  `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	segments := make([]CaptionSegment, 0, len(doc.Texts))
	for _, text := range doc.Texts {
		cleaned := strings.TrimSpace(html.UnescapeString(text.Text))
		if cleaned == "" {
			continue
		}
		segments = append(segments, CaptionSegment{
			Start:    text.Start,
			Duration: text.Dur,
			Text:     cleaned,
		})
	}
	return segments, nil
}
