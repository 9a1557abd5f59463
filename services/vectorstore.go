package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// DefaultCollection holds ingested knowledge documents.
const DefaultCollection = "documents"

const (
	maxTokensPerChunk = 512
	overlapTokens     = 50
	chunkEncoding     = "cl100k_base"
)

var embeddingModelDimensions = map[openai.EmbeddingModel]uint64{
	openai.AdaEmbeddingV2:  1536,
	openai.SmallEmbedding3: 512,
	openai.LargeEmbedding3: 2048,
	"baai/bge-base-en":     768,
	"baai/bge-large-en":    1024,
	"nomic-embed-text":     768,
}

// VectorStoreConfig wires a store to its backends.
type VectorStoreConfig struct {
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantUseTLS bool

	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
}

// SearchHit is one semantic search match.
type SearchHit struct {
	Score      float32 `json:"score"`
	Content    string  `json:"content"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ChunkIndex int64   `json:"chunk_index"`
}

// VectorStore persists document chunks as embeddings in Qdrant and runs
// semantic search over them.
type VectorStore struct {
	qdrant     *qdrant.Client
	embeddings *openai.Client
	model      openai.EmbeddingModel
	dimensions uint64
	logger     *logrus.Logger
}

// NewVectorStore connects to Qdrant and validates the embedding model.
func NewVectorStore(cfg VectorStoreConfig, logger *logrus.Logger) (*VectorStore, error) {
	model := openai.EmbeddingModel(cfg.EmbeddingModel)
	dimensions, ok := embeddingModelDimensions[model]
	if !ok {
		return nil, errors.Errorf("unsupported embedding model %q", cfg.EmbeddingModel)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to qdrant")
	}

	embeddingConfig := openai.DefaultConfig(cfg.EmbeddingAPIKey)
	if cfg.EmbeddingBaseURL != "" {
		embeddingConfig.BaseURL = cfg.EmbeddingBaseURL
	}

	return &VectorStore{
		qdrant:     client,
		embeddings: openai.NewClientWithConfig(embeddingConfig),
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// Healthy reports whether the Qdrant backend answers its health check.
func (s *VectorStore) Healthy(ctx context.Context) bool {
	_, err := s.qdrant.HealthCheck(ctx)
	return err == nil
}

// EnsureCollection creates the collection when it does not exist yet.
func (s *VectorStore) EnsureCollection(ctx context.Context, collection string) error {
	if info, err := s.qdrant.GetCollectionInfo(ctx, collection); err == nil && info != nil {
		return nil
	}

	err := s.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     s.dimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "creating collection %s", collection)
	}

	s.logger.WithField("collection", collection).Info("created vector collection")
	return nil
}

// Collections lists the collection names known to the backend.
func (s *VectorStore) Collections(ctx context.Context) ([]string, error) {
	collections, err := s.qdrant.ListCollections(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing collections")
	}
	return collections, nil
}

func (s *VectorStore) embed(ctx context.Context, text string) ([]float32, error) {
	response, err := s.embeddings.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: s.model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generating embedding")
	}
	if len(response.Data) == 0 {
		return nil, errors.New("embedding backend returned no data")
	}
	return response.Data[0].Embedding, nil
}

// IndexDocument chunks content, embeds every chunk and upserts the points.
// Re-indexing the same docID overwrites the previous chunks because point
// IDs derive deterministically from docID and chunk index. It returns the
// number of chunks stored.
func (s *VectorStore) IndexDocument(ctx context.Context, collection, docID, title, content string) (int, error) {
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return 0, err
	}

	chunks, err := splitIntoChunks(content)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embed(ctx, chunk)
		if err != nil {
			return 0, errors.Wrapf(err, "embedding chunk %d", i)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID+strconv.Itoa(i))).String()),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": docID,
				"title":       title,
				"content":     chunk,
				"chunk_index": i,
			}),
		})
	}

	waitUpsert := true
	_, err = s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &waitUpsert,
		Points:         points,
	})
	if err != nil {
		return 0, errors.Wrap(err, "upserting points")
	}

	s.logger.WithFields(logrus.Fields{
		"collection":  collection,
		"document_id": docID,
		"chunks":      len(chunks),
	}).Info("document indexed")

	return len(chunks), nil
}

// Search embeds the query and returns the closest chunks above threshold.
func (s *VectorStore) Search(ctx context.Context, collection, query string, limit uint64, threshold float32) ([]SearchHit, error) {
	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	points, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying qdrant")
	}

	hits := make([]SearchHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, SearchHit{
			Score:      point.Score,
			Content:    point.Payload["content"].GetStringValue(),
			DocumentID: point.Payload["document_id"].GetStringValue(),
			Title:      point.Payload["title"].GetStringValue(),
			ChunkIndex: point.Payload["chunk_index"].GetIntegerValue(),
		})
	}
	return hits, nil
}

// DeleteDocument removes every chunk of a document from the collection.
func (s *VectorStore) DeleteDocument(ctx context.Context, collection, docID string) error {
	selector := &qdrant.PointsSelector{
		PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{
					{
						ConditionOneOf: &qdrant.Condition_Field{
							Field: &qdrant.FieldCondition{
								Key: "document_id",
								Match: &qdrant.Match{
									MatchValue: &qdrant.Match_Text{Text: docID},
								},
							},
						},
					},
				},
			},
		},
	}

	_, err := s.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         selector,
	})
	return errors.Wrapf(err, "deleting document %s", docID)
}

// splitIntoChunks cuts content into token windows with a small overlap so
// that sentences straddling a boundary stay searchable.
func splitIntoChunks(content string) ([]string, error) {
	encoding, err := tiktoken.GetEncoding(chunkEncoding)
	if err != nil {
		return nil, errors.Wrap(err, "loading token encoding")
	}

	tokens := encoding.Encode(content, nil, nil)

	var chunks []string
	var current []int
	for i := 0; i < len(tokens); i++ {
		current = append(current, tokens[i])

		if len(current) >= maxTokensPerChunk {
			chunks = append(chunks, encoding.Decode(current))
			if len(current) > overlapTokens {
				current = current[len(current)-overlapTokens:]
			} else {
				current = nil
			}
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, encoding.Decode(current))
	}

	return chunks, nil
}
