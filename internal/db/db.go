package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/voxdesk/voxdesk/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func ApplyMigrations(db *sql.DB) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return err
		}
		queries := strings.Split(string(content), ";")
		for _, q := range queries {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			if _, err := db.Exec(q); err != nil {
				if strings.Contains(err.Error(), "already exists") {
					continue
				}
				return fmt.Errorf("execute query in %s: %w", file, err)
			}
		}
	}
	return nil
}

// VerifyVectorIndex checks that the ANN index on document_chunks.embedding
// exists and that the vector column carries the expected dimensionality. The
// index is provisioned out of band, never created here.
func VerifyVectorIndex(ctx context.Context, db *sql.DB, indexName string, dimensions int) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pg_indexes WHERE tablename = 'document_chunks' AND indexname = $1`,
		indexName,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("query pg_indexes: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("vector index %q not found on document_chunks", indexName)
	}
	var typmod int
	err = db.QueryRowContext(ctx,
		`SELECT a.atttypmod FROM pg_attribute a
		 JOIN pg_class c ON c.oid = a.attrelid
		 WHERE c.relname = 'document_chunks' AND a.attname = 'embedding'`,
	).Scan(&typmod)
	if err != nil {
		return fmt.Errorf("query embedding column: %w", err)
	}
	if typmod != dimensions {
		return fmt.Errorf("embedding column has %d dimensions, config expects %d", typmod, dimensions)
	}
	return nil
}
