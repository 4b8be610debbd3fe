package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/flowvine/flowvine/internal/managers"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/rs/zerolog/log"
)

const (
	IntegrationActionType_SearchDocuments domain.IntegrationActionType = "search_documents"

	ElasticsearchIntegrationPeekable_Indices domain.IntegrationPeekableType = "indices"
)

type ElasticsearchCredential struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ElasticsearchIntegrationCreator struct {
	credentialGetter domain.CredentialGetter[ElasticsearchCredential]
	binder           domain.IntegrationParameterBinder
}

func NewElasticsearchIntegrationCreator(deps domain.IntegrationDeps) domain.IntegrationCreator {
	return &ElasticsearchIntegrationCreator{
		credentialGetter: managers.NewExecutorCredentialGetter[ElasticsearchCredential](deps.ExecutorCredentialManager),
		binder:           deps.ParameterBinder,
	}
}

func (c *ElasticsearchIntegrationCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	return NewElasticsearchIntegration(ctx, ElasticsearchIntegrationDependencies{
		CredentialGetter: c.credentialGetter,
		ParameterBinder:  c.binder,
		CredentialID:     p.CredentialID,
		Embedder:         p.Embedder,
	})
}

// StoreFactory builds the vector store handle for one output invocation.
type StoreFactory func(ctx context.Context, cfg StoreConfig) (domain.VectorStore, error)

type ElasticsearchIntegration struct {
	binder     domain.IntegrationParameterBinder
	embedder   domain.Embedder
	credential ElasticsearchCredential

	newStore StoreFactory

	actionManager *domain.IntegrationActionManager
	peekFuncs     map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error)
}

var _ domain.VectorStoreProvider = (*ElasticsearchIntegration)(nil)

type ElasticsearchIntegrationDependencies struct {
	CredentialID     string
	CredentialGetter domain.CredentialGetter[ElasticsearchCredential]
	ParameterBinder  domain.IntegrationParameterBinder
	Embedder         domain.Embedder

	// StoreFactory overrides store construction, nil means the client-backed
	// default.
	StoreFactory StoreFactory
}

func NewElasticsearchIntegration(ctx context.Context, deps ElasticsearchIntegrationDependencies) (*ElasticsearchIntegration, error) {
	integration := &ElasticsearchIntegration{
		binder:   deps.ParameterBinder,
		embedder: deps.Embedder,
		newStore: deps.StoreFactory,
	}

	if integration.newStore == nil {
		integration.newStore = func(ctx context.Context, cfg StoreConfig) (domain.VectorStore, error) {
			client, err := NewClient(integration.credential.URL, integration.credential.Username, integration.credential.Password)
			if err != nil {
				return nil, err
			}

			cfg.Client = client

			return NewStore(cfg)
		}
	}

	if deps.CredentialID != "" {
		credential, err := deps.CredentialGetter.GetDecryptedCredential(ctx, deps.CredentialID)
		if err != nil {
			return nil, fmt.Errorf("failed to get Elasticsearch credential: %w", err)
		}

		integration.credential = credential
	}

	integration.actionManager = domain.NewIntegrationActionManager().
		AddPerItemMulti(IntegrationActionType_SearchDocuments, integration.SearchDocuments)

	integration.peekFuncs = map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error){
		ElasticsearchIntegrationPeekable_Indices: integration.PeekIndices,
	}

	return integration, nil
}

func (i *ElasticsearchIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	log.Info().Msgf("Executing Elasticsearch integration")

	return i.actionManager.Run(ctx, params.ActionType, params)
}

func (i *ElasticsearchIntegration) Peek(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	peekFunc, ok := i.peekFuncs[params.PeekableType]
	if !ok {
		return domain.PeekResult{}, fmt.Errorf("peek function not found: %s", params.PeekableType)
	}

	return peekFunc(ctx, params)
}

type ElasticsearchStoreParams struct {
	IndexName       string `json:"index_name"`
	SearchQuery     string `json:"search_query"`
	NumberOfResults int    `json:"number_of_results"`
}

// buildVectorStore runs the full construction, including the ingest of any
// input documents, every time it is called. Each declared output rebuilds
// from scratch, as the platform contract requires.
func (i *ElasticsearchIntegration) buildVectorStore(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.VectorStore, ElasticsearchStoreParams, error) {
	p := ElasticsearchStoreParams{}

	err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings)
	if err != nil {
		return nil, p, err
	}

	if p.NumberOfResults <= 0 {
		p.NumberOfResults = DefaultNumberOfResults
	}

	store, err := i.newStore(ctx, StoreConfig{
		IndexName: p.IndexName,
		Embedder:  i.embedder,
	})
	if err != nil {
		return nil, p, err
	}

	items, err := params.GetAllItems()
	if err != nil {
		return nil, p, err
	}

	if documents := domain.ItemsToDocuments(items); len(documents) > 0 {
		if _, err := store.AddDocuments(ctx, documents); err != nil {
			return nil, p, fmt.Errorf("failed to add documents to vector store: %w", err)
		}
	}

	return store, p, nil
}

func (i *ElasticsearchIntegration) BuildVectorStore(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.VectorStore, error) {
	store, _, err := i.buildVectorStore(ctx, params, item)
	return store, err
}

func (i *ElasticsearchIntegration) BuildRetriever(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Retriever, error) {
	store, p, err := i.buildVectorStore(ctx, params, item)
	if err != nil {
		return nil, err
	}

	return domain.NewVectorStoreRetriever(store, p.NumberOfResults), nil
}

func (i *ElasticsearchIntegration) SearchDocuments(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
	store, p, err := i.buildVectorStore(ctx, params, item)
	if err != nil {
		return nil, err
	}

	// The handle never escapes this call, release any resources it holds.
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	if strings.TrimSpace(p.SearchQuery) == "" {
		return []domain.Item{}, nil
	}

	documents, err := store.SimilaritySearch(ctx, p.SearchQuery, p.NumberOfResults)
	if err != nil {
		return nil, err
	}

	return domain.NewItemsFromDocuments(documents), nil
}

type catIndexEntry struct {
	Index string `json:"index"`
}

func (i *ElasticsearchIntegration) PeekIndices(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	client, err := NewClient(i.credential.URL, i.credential.Username, i.credential.Password)
	if err != nil {
		return domain.PeekResult{}, err
	}

	res, err := client.Cat.Indices(
		client.Cat.Indices.WithContext(ctx),
		client.Cat.Indices.WithFormat("json"),
	)
	if err != nil {
		return domain.PeekResult{}, fmt.Errorf("failed to list indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.PeekResult{}, fmt.Errorf("failed to list indices: %s", responseError(res.Body))
	}

	entries := []catIndexEntry{}

	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return domain.PeekResult{}, fmt.Errorf("failed to decode indices response: %w", err)
	}

	peekResultItems := make([]domain.PeekResultItem, 0, len(entries))

	for _, entry := range entries {
		peekResultItems = append(peekResultItems, domain.PeekResultItem{
			Key:     entry.Index,
			Value:   entry.Index,
			Content: entry.Index,
		})
	}

	return domain.PeekResult{
		Result: peekResultItems,
	}, nil
}
