package domain

import (
	"context"
)

type CredentialType string

var (
	CredentialTypeDefault CredentialType = "default"
)

type Credential struct {
	ID              string
	Name            string
	WorkspaceID     string
	Type            CredentialType
	IntegrationType IntegrationType

	EncryptedPayload string
	DecryptedPayload map[string]any
}

// CredentialGetter decodes a decrypted credential payload into a typed
// credential struct for one integration.
type CredentialGetter[T any] interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) (T, error)
}

type ExecutorCredentialManager interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) ([]byte, error)
	GetFullCredential(ctx context.Context, credentialID string) (Credential, error)
}
