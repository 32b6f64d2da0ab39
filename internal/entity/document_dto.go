package entity

// UploadResponse is the reply to POST /api/documents.
type UploadResponse struct {
	Message string         `json:"message"`
	Files   []IngestResult `json:"files"`
}

// DocumentListResponse is the reply to GET /api/documents.
type DocumentListResponse struct {
	Documents []SourceInfo `json:"documents"`
	Count     int          `json:"count"`
}

// DeleteDocumentResponse is the reply to DELETE /api/documents/{source}.
type DeleteDocumentResponse struct {
	Message       string `json:"message"`
	ChunksDeleted int64  `json:"chunks_deleted"`
}
