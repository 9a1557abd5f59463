package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kmhub/ai-service/pkg/extract"
	"github.com/kmhub/ai-service/services"
)

type stubNER struct {
	entities []extract.NamedEntity
	err      error
}

func (s stubNER) Recognize(ctx context.Context, text string) ([]extract.NamedEntity, error) {
	return s.entities, s.err
}

type stubGenerator struct {
	chatErr     error
	keywords    []string
	keywordsErr error
}

func (s stubGenerator) Chat(ctx context.Context, messages []services.ChatMessage, opts services.ChatOptions) (*services.ChatResult, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &services.ChatResult{Content: "hello", Model: "test-model"}, nil
}

func (s stubGenerator) ChatStream(ctx context.Context, messages []services.ChatMessage, opts services.ChatOptions, emit func(string) error) error {
	for _, delta := range []string{"he", "llo"} {
		if err := emit(delta); err != nil {
			return err
		}
	}
	return nil
}

func (s stubGenerator) Generate(ctx context.Context, prompt string, opts services.ChatOptions) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return "generated", nil
}

func (s stubGenerator) Summarize(ctx context.Context, text, style string) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return "summary", nil
}

func (s stubGenerator) Keywords(ctx context.Context, text string, max int) ([]string, error) {
	return s.keywords, s.keywordsErr
}

func (s stubGenerator) Model() string { return "test-model" }

type stubStore struct {
	hits        []services.SearchHit
	searchErr   error
	collections []string
	indexed     int
	indexErr    error
	healthy     bool
}

func (s *stubStore) IndexDocument(ctx context.Context, collection, docID, title, content string) (int, error) {
	if s.indexErr != nil {
		return 0, s.indexErr
	}
	s.indexed++
	return 3, nil
}

func (s *stubStore) Search(ctx context.Context, collection, query string, limit uint64, threshold float32) ([]services.SearchHit, error) {
	return s.hits, s.searchErr
}

func (s *stubStore) Collections(ctx context.Context) ([]string, error) {
	return s.collections, nil
}

func (s *stubStore) Healthy(ctx context.Context) bool { return s.healthy }

type stubTranscriber struct {
	transcription *services.Transcription
	err           error
}

func (s stubTranscriber) Transcribe(ctx context.Context, r io.Reader, filename, language string) (*services.Transcription, error) {
	return s.transcription, s.err
}

func (s stubTranscriber) SupportedLanguages() []string { return []string{"en", "de"} }

type stubVideos struct{}

func (stubVideos) Metadata(ctx context.Context, videoID string) (*services.VideoMetadata, error) {
	return &services.VideoMetadata{VideoID: videoID, Title: "a talk"}, nil
}

func (stubVideos) Transcript(ctx context.Context, videoID string) (*services.Transcript, error) {
	return &services.Transcript{VideoID: videoID, Language: "en", FullText: "some words here", WordCount: 3}, nil
}

type stubFetcher struct {
	markdown string
	err      error
}

func (s stubFetcher) Markdown(ctx context.Context, url string) (string, error) {
	return s.markdown, s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testServer(ner extract.NamedEntityRecognizer, store *stubStore, generator Generator) *Server {
	if store == nil {
		store = &stubStore{healthy: true}
	}
	if generator == nil {
		generator = stubGenerator{}
	}
	return NewServer(
		extract.New(ner),
		generator,
		stubTranscriber{transcription: &services.Transcription{Text: "spoken words"}},
		store,
		stubVideos{},
		stubFetcher{markdown: "# page"},
		quietLogger(),
	)
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Echo().ServeHTTP(recorder, request)
	return recorder
}

func TestExtractEndpointEmptyText(t *testing.T) {
	server := testServer(stubNER{}, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/entities/extract", `{"text":"   "}`)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestExtractEndpointNERDown(t *testing.T) {
	server := testServer(stubNER{err: errors.New("model offline")}, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/entities/extract", `{"text":"call me"}`)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", recorder.Code)
	}
}

func TestExtractEndpointTypeFilter(t *testing.T) {
	ner := stubNER{entities: []extract.NamedEntity{
		{Label: extract.TypePerson, Text: "Alice", Start: 0, End: 5, Confidence: 0.9},
	}}
	server := testServer(ner, nil, nil)

	body := `{"text":"Alice mailed a@b.com","entity_types":["EMAIL"]}`
	recorder := doJSON(t, server, http.MethodPost, "/api/entities/extract", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var result extract.Result
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(result.Entities) != 1 || result.Entities[0].Type != extract.TypeEmail {
		t.Errorf("filtered entities = %v, want only EMAIL", result.Entities)
	}
	if result.EntityCounts[extract.TypePerson] != 0 {
		t.Errorf("counts must be recomputed after filtering, got %v", result.EntityCounts)
	}
}

func TestActionItemsEndpointThreshold(t *testing.T) {
	server := testServer(stubNER{}, nil, nil)

	body := `{"text":"I need to water the plants","priority_threshold":0.9}`
	recorder := doJSON(t, server, http.MethodPost, "/api/entities/action-items", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	var response struct {
		ActionItems []extract.ActionItem `json:"action_items"`
		Count       int                  `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if response.Count != 0 {
		t.Errorf("items above 0.9 threshold = %d, want 0 (detector confidence is 0.8)", response.Count)
	}
}

func TestKeywordsFallbackWhenModelDown(t *testing.T) {
	generator := stubGenerator{keywordsErr: errors.New("connection refused")}
	server := testServer(stubNER{}, nil, generator)

	body := `{"text":"The quarterly report covers revenue and revenue forecasts."}`
	recorder := doJSON(t, server, http.MethodPost, "/api/chat/extract-keywords", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 via fallback", recorder.Code)
	}

	var response struct {
		Keywords []string `json:"keywords"`
		Source   string   `json:"source"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if response.Source != "frequency" {
		t.Errorf("source = %q, want frequency", response.Source)
	}
}

func TestChatEndpointModelDown(t *testing.T) {
	server := testServer(stubNER{}, nil, stubGenerator{chatErr: errors.New("refused")})

	recorder := doJSON(t, server, http.MethodPost, "/api/chat/chat", `{"message":"hi"}`)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", recorder.Code)
	}
}

func TestSemanticSearchDefaults(t *testing.T) {
	store := &stubStore{
		hits:    []services.SearchHit{{Score: 0.8, Content: "chunk", DocumentID: "d1"}},
		healthy: true,
	}
	server := testServer(stubNER{}, store, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/search/semantic", `{"query":"plants"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	var response struct {
		Results    []services.SearchHit `json:"results"`
		Collection string               `json:"collection"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if response.Collection != services.DefaultCollection {
		t.Errorf("collection = %q, want default", response.Collection)
	}
	if len(response.Results) != 1 {
		t.Errorf("results = %v", response.Results)
	}
}

func TestIngestTextIndexesDocument(t *testing.T) {
	store := &stubStore{healthy: true}
	server := testServer(stubNER{}, store, nil)

	body := `{"title":"note","content":"water the plants tomorrow"}`
	recorder := doJSON(t, server, http.MethodPost, "/api/ingest/text", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	if store.indexed != 1 {
		t.Errorf("indexed = %d, want 1", store.indexed)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if response["document_id"] == "" {
		t.Error("expected a document_id")
	}
}

func TestIngestYouTubeRejectsBadURL(t *testing.T) {
	server := testServer(stubNER{}, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/ingest/youtube", `{"url":"https://example.com/x"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestTranscribeRequiresFile(t *testing.T) {
	server := testServer(stubNER{}, nil, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", nil)
	recorder := httptest.NewRecorder()
	server.Echo().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestHealthDegradedWhenStoreDown(t *testing.T) {
	store := &stubStore{healthy: false}
	server := testServer(stubNER{}, store, nil)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	server.Echo().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var response struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if response.Status != "degraded" {
		t.Errorf("status = %q, want degraded", response.Status)
	}
	if response.Services["vector_store"] != "down" {
		t.Errorf("vector_store = %q, want down", response.Services["vector_store"])
	}
}
