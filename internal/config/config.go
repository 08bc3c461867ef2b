package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port       int              `json:"port"`
	LogConfig  logger.LogConfig `json:"log_config"`
	Database   DatabaseConfig   `json:"database"`
	Embedding  EmbeddingConfig  `json:"embedding"`
	RAG        RAGConfig        `json:"rag"`
	LLM        LLMConfig        `json:"llm"`
	STT        STTConfig        `json:"stt"`
	Stream     StreamConfig     `json:"stream"`
	FileStore  FileStoreConfig  `json:"file_store"`
	Tenant     TenantConfig     `json:"tenant"`
	CORSAllow  []string         `json:"cors_allow"`
	Reconciler ReconcilerConfig `json:"reconciler"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type EmbeddingConfig struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
	Data       interface{} `json:"data"`
}

type RAGConfig struct {
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	IndexName    string `json:"index_name"`
	DefaultK     int    `json:"default_k"`
}

type LLMConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type STTConfig struct {
	APIKey   string `json:"api_key"`
	URL      string `json:"url"`
	Language string `json:"language"`
}

type StreamConfig struct {
	TokenSecret     string `json:"token_secret"`
	TokenTTLSeconds int    `json:"token_ttl_seconds"`
	IdleTimeoutSecs int    `json:"idle_timeout_secs"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type TenantConfig struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

type ReconcilerConfig struct {
	Spec            string `json:"spec"`
	StaleAfterSecs  int64  `json:"stale_after_secs"`
	DisableSchedule bool   `json:"disable_schedule"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Embedding.Provider == "" {
		return nil, fmt.Errorf("embedding.provider is required")
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-004"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 250
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap must be smaller than rag.chunk_size")
	}
	if cfg.RAG.IndexName == "" {
		cfg.RAG.IndexName = "document_chunks_embedding_idx"
	}
	if cfg.RAG.DefaultK == 0 {
		cfg.RAG.DefaultK = 5
	}
	if cfg.Stream.TokenSecret == "" {
		return nil, fmt.Errorf("stream.token_secret is required")
	}
	if cfg.Stream.TokenTTLSeconds == 0 {
		cfg.Stream.TokenTTLSeconds = 300
	}
	if cfg.Stream.IdleTimeoutSecs == 0 {
		cfg.Stream.IdleTimeoutSecs = 300
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Tenant.TenantID == "" {
		cfg.Tenant.TenantID = "mvp_tenant"
	}
	if cfg.Tenant.UserID == "" {
		cfg.Tenant.UserID = "mvp_user"
	}
	if cfg.Reconciler.Spec == "" {
		cfg.Reconciler.Spec = "*/10 * * * *"
	}
	if cfg.Reconciler.StaleAfterSecs == 0 {
		cfg.Reconciler.StaleAfterSecs = 1800
	}
	return &cfg, nil
}
