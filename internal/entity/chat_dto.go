package entity

// ChatRequest is the payload of POST /api/chat.
type ChatRequest struct {
	Message    string    `json:"message"`
	UseContext *bool     `json:"use_context,omitempty"`
	Stream     bool      `json:"stream,omitempty"`
	History    []Message `json:"history,omitempty"`
}

// WithContext reports whether retrieval augmentation is enabled for the
// request. Defaults to true when the field is omitted.
func (r *ChatRequest) WithContext() bool {
	return r.UseContext == nil || *r.UseContext
}

// SourceAttribution names a document that contributed context to an
// answer, with its retrieval similarity.
type SourceAttribution struct {
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// ChatResponse is the non-streaming chat reply.
type ChatResponse struct {
	Response string              `json:"response"`
	Sources  []SourceAttribution `json:"sources,omitempty"`
}

// HealthStatus reports overall service health.
type HealthStatus struct {
	Status          string `json:"status"`
	LLMModel        string `json:"llm_model"`
	EmbeddingModel  string `json:"embedding_model"`
	DocumentsCount  int    `json:"documents_count"`
	OllamaAvailable bool   `json:"ollama_available"`
}
