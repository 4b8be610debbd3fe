package infinity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type InfinityConnectionTester struct{}

func NewInfinityConnectionTester(deps domain.IntegrationDeps) domain.IntegrationConnectionTester {
	return &InfinityConnectionTester{}
}

type infinityConnectionPayload struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

func (c *InfinityConnectionTester) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	data, err := json.Marshal(params.Credential.DecryptedPayload)
	if err != nil {
		return false, err
	}

	var payload infinityConnectionPayload

	if err := json.Unmarshal(data, &payload); err != nil {
		return false, err
	}

	if payload.BaseURL == "" {
		payload.BaseURL = DefaultBaseURL
	}

	log.Info().Msgf("Testing connection to Infinity at %s", payload.BaseURL)

	config := openai.DefaultConfig(payload.APIKey)
	config.BaseURL = strings.TrimSuffix(payload.BaseURL, "/") + "/v1"

	client := openai.NewClientWithConfig(config)

	if _, err := client.ListModels(ctx); err != nil {
		return false, fmt.Errorf("failed to reach Infinity API: %w", err)
	}

	return true, nil
}
