// Package embedding generates the vectors behind the knowledge-base
// retrieval leg. Both providers emit 768-dimension vectors matching the
// knowledge_embeddings column.
package embedding

// Task types passed through to providers that distinguish them. Documents
// and queries embed differently on Gemini.
const (
	TaskRetrievalDocument = "retrieval_document"
	TaskRetrievalQuery    = "retrieval_query"
)

type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
