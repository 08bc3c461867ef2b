package model

const (
	EmbeddingStatusPending    = "pending"
	EmbeddingStatusProcessing = "processing"
	EmbeddingStatusCompleted  = "completed"
	EmbeddingStatusFailed     = "failed"
)

const DocumentTypeKnowledge = "knowledge"

type Document struct {
	ID              string   `json:"id"`
	DepartmentID    string   `json:"department_id"`
	TenantID        string   `json:"tenant_id"`
	FileName        string   `json:"file_name"`
	ContentType     string   `json:"content_type"`
	Size            int64    `json:"size"`
	StorageKey      string   `json:"storage_key"`
	UploadedBy      string   `json:"uploaded_by"`
	Description     string   `json:"description,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	DocumentType    string   `json:"document_type"`
	EmbeddingStatus string   `json:"embedding_status"`
	EmbeddingError  string   `json:"embedding_error,omitempty"`
	IsDisabled      bool     `json:"is_disabled"`
	Ctime           int64    `json:"ctime"`
	Mtime           int64    `json:"mtime"`
}
