package cassandra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flowvine/flowvine/internal/managers"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

const (
	IntegrationActionType_SearchDocuments domain.IntegrationActionType = "search_documents"

	CassandraIntegrationPeekable_Keyspaces domain.IntegrationPeekableType = "keyspaces"
	CassandraIntegrationPeekable_Tables    domain.IntegrationPeekableType = "tables"
)

type CassandraCredential struct {
	Hosts    string `json:"hosts"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type CassandraIntegrationCreator struct {
	credentialGetter domain.CredentialGetter[CassandraCredential]
	binder           domain.IntegrationParameterBinder
}

func NewCassandraIntegrationCreator(deps domain.IntegrationDeps) domain.IntegrationCreator {
	return &CassandraIntegrationCreator{
		credentialGetter: managers.NewExecutorCredentialGetter[CassandraCredential](deps.ExecutorCredentialManager),
		binder:           deps.ParameterBinder,
	}
}

func (c *CassandraIntegrationCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	return NewCassandraIntegration(ctx, CassandraIntegrationDependencies{
		CredentialGetter: c.credentialGetter,
		ParameterBinder:  c.binder,
		CredentialID:     p.CredentialID,
		Embedder:         p.Embedder,
	})
}

// StoreFactory builds the vector store handle for one output invocation.
// The default factory opens a session and constructs a Store; tests inject
// fakes through it.
type StoreFactory func(ctx context.Context, cfg StoreConfig) (domain.VectorStore, error)

type CassandraIntegration struct {
	binder     domain.IntegrationParameterBinder
	embedder   domain.Embedder
	credential CassandraCredential

	newStore StoreFactory

	actionManager *domain.IntegrationActionManager
	peekFuncs     map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error)
}

var _ domain.VectorStoreProvider = (*CassandraIntegration)(nil)

type CassandraIntegrationDependencies struct {
	CredentialID     string
	CredentialGetter domain.CredentialGetter[CassandraCredential]
	ParameterBinder  domain.IntegrationParameterBinder
	Embedder         domain.Embedder

	// StoreFactory overrides store construction, nil means the gocql-backed
	// default.
	StoreFactory StoreFactory
}

func NewCassandraIntegration(ctx context.Context, deps CassandraIntegrationDependencies) (*CassandraIntegration, error) {
	integration := &CassandraIntegration{
		binder:   deps.ParameterBinder,
		embedder: deps.Embedder,
		newStore: deps.StoreFactory,
	}

	if integration.newStore == nil {
		integration.newStore = func(ctx context.Context, cfg StoreConfig) (domain.VectorStore, error) {
			session, err := integration.createSession()
			if err != nil {
				return nil, err
			}

			cfg.Session = session

			store, err := NewStore(ctx, cfg)
			if err != nil {
				session.Close()
				return nil, err
			}

			return store, nil
		}
	}

	if deps.CredentialID != "" {
		credential, err := deps.CredentialGetter.GetDecryptedCredential(ctx, deps.CredentialID)
		if err != nil {
			return nil, fmt.Errorf("failed to get Cassandra credential: %w", err)
		}

		integration.credential = credential
	}

	integration.actionManager = domain.NewIntegrationActionManager().
		AddPerItemMulti(IntegrationActionType_SearchDocuments, integration.SearchDocuments)

	integration.peekFuncs = map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error){
		CassandraIntegrationPeekable_Keyspaces: integration.PeekKeyspaces,
		CassandraIntegrationPeekable_Tables:    integration.PeekTables,
	}

	return integration, nil
}

func (i *CassandraIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	log.Info().Msgf("Executing Cassandra integration")

	return i.actionManager.Run(ctx, params.ActionType, params)
}

func (i *CassandraIntegration) Peek(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	peekFunc, ok := i.peekFuncs[params.PeekableType]
	if !ok {
		return domain.PeekResult{}, fmt.Errorf("peek function not found: %s", params.PeekableType)
	}

	return peekFunc(ctx, params)
}

func (i *CassandraIntegration) createSession() (*gocql.Session, error) {
	hosts := strings.Split(i.credential.Hosts, ",")
	for idx := range hosts {
		hosts[idx] = strings.TrimSpace(hosts[idx])
	}

	cluster := gocql.NewCluster(hosts...)

	if i.credential.Port != "" {
		port, err := strconv.Atoi(i.credential.Port)
		if err != nil {
			return nil, fmt.Errorf("port is not a number")
		}

		cluster.Port = port
	}

	if i.credential.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: i.credential.Username,
			Password: i.credential.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	return session, nil
}

type CassandraStoreParams struct {
	Keyspace         string `json:"keyspace"`
	TableName        string `json:"table_name"`
	TTLSeconds       int    `json:"ttl_seconds"`
	BatchSize        int    `json:"batch_size"`
	SetupMode        string `json:"setup_mode"`
	AddToVectorStore bool   `json:"add_to_vector_store"`
	SearchInput      string `json:"search_input"`
	NumberOfResults  int    `json:"number_of_results"`
}

// buildVectorStore runs the full construction, including the ingest branch,
// every time it is called. Each declared output rebuilds from scratch, as
// the platform contract requires.
func (i *CassandraIntegration) buildVectorStore(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.VectorStore, CassandraStoreParams, error) {
	p := CassandraStoreParams{}

	err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings)
	if err != nil {
		return nil, p, err
	}

	if p.SetupMode == "" {
		p.SetupMode = SetupModeSync
	}

	if p.NumberOfResults <= 0 {
		p.NumberOfResults = DefaultNumberOfResults
	}

	cfg := StoreConfig{
		Keyspace:   p.Keyspace,
		TableName:  p.TableName,
		Embedder:   i.embedder,
		TTLSeconds: p.TTLSeconds,
		BatchSize:  p.BatchSize,
		SetupMode:  p.SetupMode,
	}

	var documents []domain.Document

	if p.AddToVectorStore {
		items, err := params.GetAllItems()
		if err != nil {
			return nil, p, err
		}

		documents = domain.ItemsToDocuments(items)

		if len(documents) > 0 {
			// Bulk loading sets the schema up before writing.
			cfg.SetupMode = SetupModeSync
		}
	}

	store, err := i.newStore(ctx, cfg)
	if err != nil {
		return nil, p, err
	}

	if len(documents) > 0 {
		if _, err := store.AddDocuments(ctx, documents); err != nil {
			return nil, p, fmt.Errorf("failed to add documents to vector store: %w", err)
		}
	}

	return store, p, nil
}

func (i *CassandraIntegration) BuildVectorStore(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.VectorStore, error) {
	store, _, err := i.buildVectorStore(ctx, params, item)
	return store, err
}

func (i *CassandraIntegration) BuildRetriever(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Retriever, error) {
	store, p, err := i.buildVectorStore(ctx, params, item)
	if err != nil {
		return nil, err
	}

	return domain.NewVectorStoreRetriever(store, p.NumberOfResults), nil
}

func (i *CassandraIntegration) SearchDocuments(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
	store, p, err := i.buildVectorStore(ctx, params, item)
	if err != nil {
		return nil, err
	}

	// The handle never escapes this call, so the session it owns is released
	// here. Handles returned from BuildVectorStore and BuildRetriever stay
	// open for the host.
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	if strings.TrimSpace(p.SearchInput) == "" {
		return []domain.Item{}, nil
	}

	documents, err := store.SimilaritySearch(ctx, p.SearchInput, p.NumberOfResults)
	if err != nil {
		if errors.Is(err, ErrMissingContentColumn) {
			return nil, fmt.Errorf("you should ingest data through the flow builder to query it here, the table does not contain a content column: %w", err)
		}

		return nil, err
	}

	return domain.NewItemsFromDocuments(documents), nil
}

func (i *CassandraIntegration) PeekKeyspaces(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	session, err := i.createSession()
	if err != nil {
		return domain.PeekResult{}, err
	}
	defer session.Close()

	iter := session.Query(`SELECT keyspace_name FROM system_schema.keyspaces`).WithContext(ctx).Iter()

	peekResultItems := []domain.PeekResultItem{}

	var keyspace string
	for iter.Scan(&keyspace) {
		peekResultItems = append(peekResultItems, domain.PeekResultItem{
			Key:     keyspace,
			Value:   keyspace,
			Content: keyspace,
		})
	}

	if err := iter.Close(); err != nil {
		return domain.PeekResult{}, fmt.Errorf("failed to list keyspaces: %w", err)
	}

	return domain.PeekResult{
		Result: peekResultItems,
	}, nil
}

type peekTablesPayload struct {
	Keyspace string `json:"keyspace"`
}

func (i *CassandraIntegration) PeekTables(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload := peekTablesPayload{}

	if len(params.PayloadJSON) > 0 {
		if err := json.Unmarshal(params.PayloadJSON, &payload); err != nil {
			return domain.PeekResult{}, err
		}
	}

	if payload.Keyspace == "" {
		return domain.PeekResult{}, fmt.Errorf("keyspace is required")
	}

	session, err := i.createSession()
	if err != nil {
		return domain.PeekResult{}, err
	}
	defer session.Close()

	iter := session.Query(`SELECT table_name FROM system_schema.tables WHERE keyspace_name = ?`, payload.Keyspace).WithContext(ctx).Iter()

	peekResultItems := []domain.PeekResultItem{}

	var tableName string
	for iter.Scan(&tableName) {
		peekResultItems = append(peekResultItems, domain.PeekResultItem{
			Key:     tableName,
			Value:   tableName,
			Content: tableName,
		})
	}

	if err := iter.Close(); err != nil {
		return domain.PeekResult{}, fmt.Errorf("failed to list tables: %w", err)
	}

	return domain.PeekResult{
		Result: peekResultItems,
	}, nil
}
