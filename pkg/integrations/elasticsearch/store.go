package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

const (
	DefaultNumberOfResults = 4

	contentField = "content"
	vectorField  = "vector"
)

// NewClient builds the Elasticsearch client with basic auth and certificate
// verification disabled, matching the platform default for this store.
func NewClient(url, username, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return client, nil
}

type StoreConfig struct {
	Client    *elasticsearch.Client
	IndexName string
	Embedder  domain.Embedder
}

// Store persists documents in an Elasticsearch index with a dense_vector
// field and answers top-k kNN similarity queries.
type Store struct {
	client    *elasticsearch.Client
	indexName string
	embedder  domain.Embedder
}

var _ domain.VectorStore = (*Store)(nil)

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client is required")
	}

	if cfg.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedding function is required")
	}

	return &Store{
		client:    cfg.Client,
		indexName: cfg.IndexName,
		embedder:  cfg.Embedder,
	}, nil
}

func (s *Store) ensureIndex(ctx context.Context, dimension int) error {
	res, err := s.client.Indices.Exists(
		[]string{s.indexName},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", s.indexName, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				contentField: map[string]any{
					"type": "text",
				},
				"metadata": map[string]any{
					"type": "object",
				},
				vectorField: map[string]any{
					"type":       "dense_vector",
					"dims":       dimension,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	createRes, err := s.client.Indices.Create(
		s.indexName,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", s.indexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index %s: %s", s.indexName, responseError(createRes.Body))
	}

	return nil
}

func (s *Store) AddDocuments(ctx context.Context, documents []domain.Document) ([]string, error) {
	if len(documents) == 0 {
		return []string{}, nil
	}

	texts := make([]string, 0, len(documents))
	for _, document := range documents {
		texts = append(texts, document.PageContent)
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	if len(embeddings) != len(documents) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(documents), len(embeddings))
	}

	if err := s.ensureIndex(ctx, len(embeddings[0])); err != nil {
		return nil, err
	}

	documentIDs := make([]string, 0, len(documents))

	for idx, document := range documents {
		source := map[string]any{
			contentField: document.PageContent,
			"metadata":   document.Metadata,
			vectorField:  embeddings[idx],
		}

		body, err := json.Marshal(source)
		if err != nil {
			return nil, err
		}

		documentID := uuid.NewString()

		res, err := s.client.Index(
			s.indexName,
			bytes.NewReader(body),
			s.client.Index.WithDocumentID(documentID),
			s.client.Index.WithContext(ctx),
			s.client.Index.WithRefresh("true"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to index document: %w", err)
		}

		if res.IsError() {
			message := responseError(res.Body)
			res.Body.Close()
			return nil, fmt.Errorf("failed to index document: %s", message)
		}

		res.Body.Close()

		documentIDs = append(documentIDs, documentID)
	}

	return documentIDs, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		k = DefaultNumberOfResults
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	numCandidates := k * 10
	if numCandidates < 50 {
		numCandidates = 50
	}

	searchBody := map[string]any{
		"size": k,
		"knn": map[string]any{
			"field":          vectorField,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
	}

	body, err := json.Marshal(searchBody)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("similarity search failed: %s", responseError(res.Body))
	}

	response := searchResponse{}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	documents := []domain.Document{}

	for _, hit := range response.Hits.Hits {
		content, _ := hit.Source[contentField].(string)

		metadata := map[string]any{}
		if rawMetadata, ok := hit.Source["metadata"].(map[string]any); ok {
			for key, value := range rawMetadata {
				metadata[key] = value
			}
		}

		metadata["_id"] = hit.ID
		metadata["_score"] = hit.Score

		documents = append(documents, domain.Document{
			PageContent: content,
			Metadata:    metadata,
		})
	}

	return documents, nil
}

func responseError(body io.Reader) string {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err.Error()
	}

	return string(raw)
}
