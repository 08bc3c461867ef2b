package model

// ChunkContent is clean chunk content for LLM consumption.
type ChunkContent struct {
	Text     string  `json:"text"`
	FileName string  `json:"file_name,omitempty"`
	Score    float32 `json:"score"`
}

// ChunkMetadata describes a retrieved chunk for the client side.
type ChunkMetadata struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DepartmentID string  `json:"department_id"`
	TenantID     string  `json:"tenant_id,omitempty"`
	ChunkIndex   int     `json:"chunk_index"`
	Score        float32 `json:"score"`
	FileName     string  `json:"file_name"`
}

// RetrievalMetadata describes the retrieval operation itself.
type RetrievalMetadata struct {
	Query           string          `json:"query"`
	K               int             `json:"k"`
	ChunksRetrieved int             `json:"chunks_retrieved"`
	DepartmentID    string          `json:"department_id,omitempty"`
	TenantID        string          `json:"tenant_id,omitempty"`
	Chunks          []ChunkMetadata `json:"chunks"`
}

// RetrievalResult pairs LLM-facing content with client-facing metadata.
// Data and Metadata.Chunks are positionally aligned and equal length.
type RetrievalResult struct {
	Data     []ChunkContent    `json:"data"`
	Metadata RetrievalMetadata `json:"metadata"`
}
