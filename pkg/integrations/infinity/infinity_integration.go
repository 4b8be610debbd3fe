package infinity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/flowvine/flowvine/internal/managers"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const (
	IntegrationActionType_GenerateEmbeddings domain.IntegrationActionType = "generate_embeddings"

	InfinityIntegrationPeekable_Models domain.IntegrationPeekableType = "models"
)

const (
	DefaultModel   = "lier007/xiaobu-embedding-v2"
	DefaultBaseURL = "http://infinity.192.168.107.2.nip.io/"
)

// ErrConnection is the single error kind every construction failure is
// collapsed into. The original error stays reachable through the chain.
var ErrConnection = errors.New("could not connect to Infinity API")

type InfinityCredential struct {
	APIKey string `json:"api_key"`
}

type InfinityIntegrationCreator struct {
	credentialGetter domain.CredentialGetter[InfinityCredential]
	binder           domain.IntegrationParameterBinder
}

func NewInfinityIntegrationCreator(deps domain.IntegrationDeps) domain.IntegrationCreator {
	return &InfinityIntegrationCreator{
		credentialGetter: managers.NewExecutorCredentialGetter[InfinityCredential](deps.ExecutorCredentialManager),
		binder:           deps.ParameterBinder,
	}
}

func (c *InfinityIntegrationCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	return NewInfinityIntegration(ctx, InfinityIntegrationDependencies{
		CredentialGetter: c.credentialGetter,
		ParameterBinder:  c.binder,
		CredentialID:     p.CredentialID,
	})
}

type InfinityIntegration struct {
	binder domain.IntegrationParameterBinder
	apiKey string

	actionManager *domain.IntegrationActionManager
	peekFuncs     map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error)
}

var _ domain.EmbedderProvider = (*InfinityIntegration)(nil)

type InfinityIntegrationDependencies struct {
	CredentialID     string
	CredentialGetter domain.CredentialGetter[InfinityCredential]
	ParameterBinder  domain.IntegrationParameterBinder
}

func NewInfinityIntegration(ctx context.Context, deps InfinityIntegrationDependencies) (*InfinityIntegration, error) {
	integration := &InfinityIntegration{
		binder: deps.ParameterBinder,
	}

	// Most Infinity deployments are unauthenticated, so the credential is
	// optional.
	if deps.CredentialID != "" {
		credential, err := deps.CredentialGetter.GetDecryptedCredential(ctx, deps.CredentialID)
		if err != nil {
			return nil, fmt.Errorf("failed to get Infinity credential: %w", err)
		}

		integration.apiKey = credential.APIKey
	}

	integration.actionManager = domain.NewIntegrationActionManager().
		AddPerItem(IntegrationActionType_GenerateEmbeddings, integration.GenerateEmbeddings)

	integration.peekFuncs = map[domain.IntegrationPeekableType]func(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error){
		InfinityIntegrationPeekable_Models: integration.PeekModels,
	}

	return integration, nil
}

func (i *InfinityIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	log.Info().Msgf("Executing Infinity integration")

	return i.actionManager.Run(ctx, params.ActionType, params)
}

func (i *InfinityIntegration) Peek(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	peekFunc, ok := i.peekFuncs[params.PeekableType]
	if !ok {
		return domain.PeekResult{}, fmt.Errorf("peek function not found: %s", params.PeekableType)
	}

	return peekFunc(ctx, params)
}

func (i *InfinityIntegration) buildClient(baseURL string) (*openai.Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q has no scheme or host", baseURL)
	}

	config := openai.DefaultConfig(i.apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"

	return openai.NewClientWithConfig(config), nil
}

type BuildEmbedderParams struct {
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// BuildEmbedder constructs the embeddings client for the declared endpoint.
// Any construction failure is collapsed into ErrConnection with the original
// error chained.
func (i *InfinityIntegration) BuildEmbedder(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Embedder, error) {
	p := BuildEmbedderParams{}

	err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings)
	if err != nil {
		return nil, err
	}

	if p.Model == "" {
		p.Model = DefaultModel
	}

	client, err := i.buildClient(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return &infinityEmbedder{
		client: client,
		model:  p.Model,
	}, nil
}

type GenerateEmbeddingsParams struct {
	Model   string   `json:"model"`
	BaseURL string   `json:"base_url"`
	Input   []string `json:"input"`
}

func (i *InfinityIntegration) GenerateEmbeddings(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	p := GenerateEmbeddingsParams{}

	err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings)
	if err != nil {
		return nil, err
	}

	if p.Model == "" {
		p.Model = DefaultModel
	}

	if len(p.Input) == 0 {
		return nil, fmt.Errorf("no input provided for embedding generation")
	}

	client, err := i.buildClient(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: p.Input,
		Model: openai.EmbeddingModel(p.Model),
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("model", p.Model).
			Int("input_count", len(p.Input)).
			Msg("Failed to generate embeddings")
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for idx, data := range resp.Data {
		embeddings[idx] = data.Embedding
	}

	result := map[string]any{
		"model":      p.Model,
		"embeddings": embeddings,
		"usage": map[string]any{
			"prompt_tokens": resp.Usage.PromptTokens,
			"total_tokens":  resp.Usage.TotalTokens,
		},
	}

	return result, nil
}

type peekModelsPayload struct {
	BaseURL string `json:"base_url"`
}

func (i *InfinityIntegration) PeekModels(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload := peekModelsPayload{}

	if len(params.PayloadJSON) > 0 {
		if err := json.Unmarshal(params.PayloadJSON, &payload); err != nil {
			return domain.PeekResult{}, err
		}
	}

	client, err := i.buildClient(payload.BaseURL)
	if err != nil {
		return domain.PeekResult{}, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		return domain.PeekResult{}, fmt.Errorf("failed to list Infinity models: %w", err)
	}

	peekResultItems := make([]domain.PeekResultItem, 0, len(models.Models))

	for _, model := range models.Models {
		peekResultItems = append(peekResultItems, domain.PeekResultItem{
			Key:     model.ID,
			Value:   model.ID,
			Content: model.ID,
		})
	}

	return domain.PeekResult{
		Result: peekResultItems,
	}, nil
}

// infinityEmbedder adapts the OpenAI-compatible embeddings endpoint served
// by Infinity to the platform embedding contract.
type infinityEmbedder struct {
	client *openai.Client
	model  string
}

var _ domain.Embedder = (*infinityEmbedder)(nil)

func (e *infinityEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (e *infinityEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for idx, data := range resp.Data {
		embeddings[idx] = data.Embedding
	}

	return embeddings, nil
}
