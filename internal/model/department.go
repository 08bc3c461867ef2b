package model

type Department struct {
	ID                 string   `json:"id"`
	TenantID           string   `json:"tenant_id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Intent             []string `json:"intent,omitempty"`
	DurationThreshold  *int     `json:"duration_threshold,omitempty"`
	SentimentThreshold *int     `json:"sentiment_threshold,omitempty"`
	IsActive           bool     `json:"is_active"`
	Ctime              int64    `json:"ctime"`
	Mtime              int64    `json:"mtime"`
}
