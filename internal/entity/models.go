package entity

// ChunkMetadata carries the provenance of a chunk inside its source document.
type ChunkMetadata struct {
	Source      string `json:"source"`
	FilePath    string `json:"file_path,omitempty"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	CharStart   int    `json:"char_start"`
	CharEnd     int    `json:"char_end"`
}

// Chunk is a bounded segment of a source document, ready for embedding
// and indexing. Chunks are immutable once annotated.
type Chunk struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Metadata  ChunkMetadata `json:"metadata"`
	Embedding []float32     `json:"-"`
}

// SearchHit is a raw nearest-neighbor match as returned by the similarity
// index. Distance is cosine distance in [0, 2].
type SearchHit struct {
	Text     string
	Metadata ChunkMetadata
	Distance float64
}

// ContextRecord is a retrieved chunk enriched with its similarity score.
// Similarity is 1 - cosine distance, so it lives in [-1, 1] with higher
// being better; only records above the configured floor are surfaced.
type ContextRecord struct {
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// SourceInfo describes one indexed document and how many chunks it
// produced.
type SourceInfo struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// IngestResult reports the outcome of indexing a single uploaded file.
type IngestResult struct {
	Source        string `json:"source"`
	ChunksCreated int    `json:"chunks_created"`
}
