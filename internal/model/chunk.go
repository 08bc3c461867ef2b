package model

// Chunk is one fixed-size slice of a document's extracted text plus its
// embedding vector. Chunk indices are contiguous from 0 within a document.
type Chunk struct {
	ChunkID      string    `json:"chunk_id"`
	DocumentID   string    `json:"document_id"`
	DepartmentID string    `json:"department_id"`
	TenantID     string    `json:"tenant_id"`
	FileName     string    `json:"file_name"`
	ChunkIndex   int       `json:"chunk_index"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"embedding"`
	IsDisabled   bool      `json:"is_disabled"`
}

// ChunkMatch is a chunk row returned by a vector search, with its similarity
// score attached. Higher score means more relevant.
type ChunkMatch struct {
	Chunk
	Score float32 `json:"score"`
}
