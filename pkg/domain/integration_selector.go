package domain

import (
	"context"
	"fmt"
)

type CreateIntegrationParams struct {
	CredentialID string
	WorkspaceID  string

	// Embedder is the embedding function resolved from the upstream
	// embeddings handle, when the integration declares one.
	Embedder Embedder
}

type IntegrationCreator interface {
	CreateIntegration(ctx context.Context, p CreateIntegrationParams) (IntegrationExecutor, error)
}

type IntegrationExecutor interface {
	Execute(ctx context.Context, params IntegrationInput) (IntegrationOutput, error)
}

type IntegrationPeeker interface {
	Peek(ctx context.Context, params PeekParams) (PeekResult, error)
}

type IntegrationConnectionTester interface {
	TestConnection(ctx context.Context, params TestConnectionParams) (bool, error)
}

type TestConnectionParams struct {
	Credential Credential
}

type SelectIntegrationParams struct {
	IntegrationType IntegrationType
}

type IntegrationSelector interface {
	Select(ctx context.Context, params SelectIntegrationParams) (IntegrationExecutor, error)
	RegisterIntegration(integrationType IntegrationType, executor IntegrationExecutor)
	RegisterCreator(integrationType IntegrationType, creator IntegrationCreator)
	SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error)
	SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error)
	RegisterConnectionTester(integrationType IntegrationType, connectionTester IntegrationConnectionTester)
}

type integrationSelector struct {
	integrationsByType      map[IntegrationType]IntegrationExecutor
	creatorsByType          map[IntegrationType]IntegrationCreator
	connectionTestersByType map[IntegrationType]IntegrationConnectionTester
}

func NewIntegrationSelector() IntegrationSelector {
	return &integrationSelector{
		integrationsByType:      make(map[IntegrationType]IntegrationExecutor),
		creatorsByType:          make(map[IntegrationType]IntegrationCreator),
		connectionTestersByType: make(map[IntegrationType]IntegrationConnectionTester),
	}
}

func (s *integrationSelector) RegisterIntegration(integrationType IntegrationType, executor IntegrationExecutor) {
	s.integrationsByType[integrationType] = executor
}

func (s *integrationSelector) Select(ctx context.Context, params SelectIntegrationParams) (IntegrationExecutor, error) {
	executor, ok := s.integrationsByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return executor, nil
}

func (s *integrationSelector) RegisterCreator(integrationType IntegrationType, creator IntegrationCreator) {
	s.creatorsByType[integrationType] = creator
}

func (s *integrationSelector) SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error) {
	creator, ok := s.creatorsByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return creator, nil
}

func (s *integrationSelector) RegisterConnectionTester(integrationType IntegrationType, connectionTester IntegrationConnectionTester) {
	s.connectionTestersByType[integrationType] = connectionTester
}

func (s *integrationSelector) SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error) {
	connectionTester, ok := s.connectionTestersByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return connectionTester, nil
}
