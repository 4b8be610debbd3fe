package domain

import (
	"context"
)

// Document is the common envelope for a piece of text and its metadata,
// shared by every vector store integration so downstream nodes do not need
// to know which backend produced it.
type Document struct {
	PageContent string         `json:"text"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Embedder turns text into vectors. Implementations are produced by
// embeddings integrations and wired into vector store integrations by the
// host through an embedding handle.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the handle a vector store integration builds around its
// backend client.
type VectorStore interface {
	AddDocuments(ctx context.Context, documents []Document) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, k int) ([]Document, error)
}

// Retriever exposes a vector store as a generic retrieval interface for
// downstream consumers.
type Retriever interface {
	GetRelevantDocuments(ctx context.Context, query string) ([]Document, error)
}

// NewVectorStoreRetriever exposes a vector store as a Retriever with a fixed
// result count.
func NewVectorStoreRetriever(store VectorStore, k int) Retriever {
	return &vectorStoreRetriever{
		store: store,
		k:     k,
	}
}

type vectorStoreRetriever struct {
	store VectorStore
	k     int
}

func (r *vectorStoreRetriever) GetRelevantDocuments(ctx context.Context, query string) ([]Document, error) {
	return r.store.SimilaritySearch(ctx, query, r.k)
}

// VectorStoreProvider is implemented by integrations whose outputs include
// a store handle and a retriever handle.
type VectorStoreProvider interface {
	BuildVectorStore(ctx context.Context, params IntegrationInput, item Item) (VectorStore, error)
	BuildRetriever(ctx context.Context, params IntegrationInput, item Item) (Retriever, error)
}

// EmbedderProvider is implemented by embeddings integrations whose output
// is an embedding function handle.
type EmbedderProvider interface {
	BuildEmbedder(ctx context.Context, params IntegrationInput, item Item) (Embedder, error)
}

// NewItemsFromDocuments converts backend documents into the platform item
// format.
func NewItemsFromDocuments(documents []Document) []Item {
	items := make([]Item, 0, len(documents))

	for _, document := range documents {
		item := map[string]any{
			"text": document.PageContent,
		}

		if len(document.Metadata) > 0 {
			item["metadata"] = document.Metadata
		}

		items = append(items, item)
	}

	return items
}

// ItemsToDocuments converts platform items into backend documents. An item
// carries its content under the "text" key; every other field is kept as
// metadata. Items without text content are not documents and are skipped.
func ItemsToDocuments(items []Item) []Document {
	documents := make([]Document, 0, len(items))

	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			continue
		}

		text, ok := object["text"].(string)
		if !ok || text == "" {
			continue
		}

		metadata := map[string]any{}

		if rawMetadata, ok := object["metadata"].(map[string]any); ok {
			for key, value := range rawMetadata {
				metadata[key] = value
			}
		}

		for key, value := range object {
			if key == "text" || key == "metadata" {
				continue
			}

			metadata[key] = value
		}

		document := Document{PageContent: text}

		if len(metadata) > 0 {
			document.Metadata = metadata
		}

		documents = append(documents, document)
	}

	return documents
}
