package cassandra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SetupModeSync  = "Sync"
	SetupModeAsync = "Async"
	SetupModeOff   = "Off"

	DefaultBatchSize       = 16
	DefaultNumberOfResults = 4
)

// ErrMissingContentColumn indicates the table exists but was not created by
// this platform: the content column is absent.
var ErrMissingContentColumn = errors.New("table does not contain a body_blob content column")

type StoreConfig struct {
	Session    *gocql.Session
	Keyspace   string
	TableName  string
	Embedder   domain.Embedder
	TTLSeconds int
	BatchSize  int
	SetupMode  string
}

// Store persists documents in a Cassandra table with a vector column and
// answers top-k ANN similarity queries.
type Store struct {
	session    *gocql.Session
	keyspace   string
	tableName  string
	embedder   domain.Embedder
	ttlSeconds int
	batchSize  int
}

var _ domain.VectorStore = (*Store)(nil)

func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}

	if cfg.Keyspace == "" || cfg.TableName == "" {
		return nil, fmt.Errorf("keyspace and table name are required")
	}

	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedding function is required")
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	store := &Store{
		session:    cfg.Session,
		keyspace:   cfg.Keyspace,
		tableName:  cfg.TableName,
		embedder:   cfg.Embedder,
		ttlSeconds: cfg.TTLSeconds,
		batchSize:  cfg.BatchSize,
	}

	switch cfg.SetupMode {
	case SetupModeSync, "":
		if err := store.ensureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to set up table %s.%s: %w", cfg.Keyspace, cfg.TableName, err)
		}
	case SetupModeAsync:
		go func() {
			if err := store.ensureSchema(context.WithoutCancel(ctx)); err != nil {
				log.Error().
					Err(err).
					Str("keyspace", cfg.Keyspace).
					Str("table", cfg.TableName).
					Msg("Async table setup failed")
			}
		}()
	case SetupModeOff:
	default:
		return nil, fmt.Errorf("unsupported setup mode: %s", cfg.SetupMode)
	}

	return store, nil
}

// Close releases the session the store was built with.
func (s *Store) Close() error {
	s.session.Close()
	return nil
}

// ensureSchema creates the table and its ANN index. The vector dimension is
// inferred by probing the embedding function once.
func (s *Store) ensureSchema(ctx context.Context) error {
	probe, err := s.embedder.EmbedQuery(ctx, "This is a sample sentence.")
	if err != nil {
		return fmt.Errorf("failed to infer vector dimension: %w", err)
	}

	createTable := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s.%s (row_id text PRIMARY KEY, body_blob text, metadata_s map<text, text>, vector vector<float, %d>)`,
		s.keyspace, s.tableName, len(probe),
	)

	if err := s.session.Query(createTable).WithContext(ctx).Exec(); err != nil {
		return err
	}

	createIndex := fmt.Sprintf(
		`CREATE CUSTOM INDEX IF NOT EXISTS %s_vector_idx ON %s.%s (vector) USING 'StorageAttachedIndex'`,
		s.tableName, s.keyspace, s.tableName,
	)

	return s.session.Query(createIndex).WithContext(ctx).Exec()
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

	insert := fmt.Sprintf(
		`INSERT INTO %s.%s (row_id, body_blob, metadata_s, vector) VALUES (?, ?, ?, ?)`,
		s.keyspace, s.tableName,
	)

	if s.ttlSeconds > 0 {
		insert = fmt.Sprintf("%s USING TTL %d", insert, s.ttlSeconds)
	}

	rowIDs := make([]string, 0, len(documents))

	for start := 0; start < len(documents); start += s.batchSize {
		end := start + s.batchSize
		if end > len(documents) {
			end = len(documents)
		}

		batch := s.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)

		for idx := start; idx < end; idx++ {
			rowID := uuid.NewString()

			batch.Query(insert, rowID, documents[idx].PageContent, encodeMetadata(documents[idx].Metadata), embeddings[idx])

			rowIDs = append(rowIDs, rowID)
		}

		if err := s.session.ExecuteBatch(batch); err != nil {
			return nil, fmt.Errorf("failed to insert documents: %w", err)
		}
	}

	return rowIDs, nil
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		k = DefaultNumberOfResults
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	selectStmt := fmt.Sprintf(
		`SELECT row_id, body_blob, metadata_s FROM %s.%s ORDER BY vector ANN OF ? LIMIT ?`,
		s.keyspace, s.tableName,
	)

	iter := s.session.Query(selectStmt, vector, k).WithContext(ctx).Iter()

	documents := []domain.Document{}

	var rowID, body string
	var metadata map[string]string

	for iter.Scan(&rowID, &body, &metadata) {
		documents = append(documents, domain.Document{
			PageContent: body,
			Metadata:    decodeMetadata(rowID, metadata),
		})

		metadata = nil
	}

	if err := iter.Close(); err != nil {
		if strings.Contains(err.Error(), "body_blob") {
			return nil, fmt.Errorf("%w: %v", ErrMissingContentColumn, err)
		}

		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	return documents, nil
}

func encodeMetadata(metadata map[string]any) map[string]string {
	encoded := make(map[string]string, len(metadata))

	for key, value := range metadata {
		if text, ok := value.(string); ok {
			encoded[key] = text
			continue
		}

		raw, err := json.Marshal(value)
		if err != nil {
			encoded[key] = fmt.Sprintf("%v", value)
			continue
		}

		encoded[key] = string(raw)
	}

	return encoded
}

func decodeMetadata(rowID string, metadata map[string]string) map[string]any {
	decoded := make(map[string]any, len(metadata)+1)

	for key, value := range metadata {
		decoded[key] = value
	}

	decoded["row_id"] = rowID

	return decoded
}
