package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/ai"
	"github.com/voxdesk/voxdesk/internal/config"
	"github.com/voxdesk/voxdesk/internal/db"
	"github.com/voxdesk/voxdesk/internal/extract"
	"github.com/voxdesk/voxdesk/internal/filestore"
	"github.com/voxdesk/voxdesk/internal/handler"
	"github.com/voxdesk/voxdesk/internal/job"
	"github.com/voxdesk/voxdesk/internal/middleware"
	"github.com/voxdesk/voxdesk/internal/repo"
	"github.com/voxdesk/voxdesk/internal/schedule"
	"github.com/voxdesk/voxdesk/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "voxdesk",
		Short: "voxdesk knowledge backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run voxdesk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer database.Close()
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			if err := db.VerifyVectorIndex(cmd.Context(), database, cfg.RAG.IndexName, cfg.Embedding.Dimensions); err != nil {
				return fmt.Errorf("vector index: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	departmentRepo := repo.NewDepartmentRepo(database)
	documentRepo := repo.NewDocumentRepo(database)
	chunkRepo := repo.NewChunkRepo(database)

	embedProvider, err := ai.NewEmbedProvider(cfg.Embedding.Provider, cfg.Embedding.Data)
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, cfg.Embedding.Model)
	chunker, err := ai.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("init chunker: %w", err)
	}
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	departmentService := service.NewDepartmentService(departmentRepo)
	retrievalService := service.NewRetrievalService(embedder, chunkRepo, cfg.RAG.DefaultK)
	ingestService := service.NewIngestService(extract.NewExtractor(), chunker, embedder, documentRepo, chunkRepo, store)

	deps := handler.RouterDeps{
		Departments:  handler.NewDepartmentHandler(departmentService, cfg.Tenant.TenantID),
		Documents:    handler.NewDocumentHandler(departmentService, ingestService, documentRepo, cfg.Tenant.UserID),
		Stream:       handler.NewStreamHandler(departmentService, retrievalService, cfg.Stream, cfg.STT, cfg.LLM, cfg.Tenant),
		UploadWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllow),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Reconciler.DisableSchedule {
		scheduler := schedule.NewCronScheduler()
		reconcile := job.NewEmbeddingReconcileJob(documentRepo, time.Duration(cfg.Reconciler.StaleAfterSecs)*time.Second)
		if err := scheduler.AddJob(reconcile, cfg.Reconciler.Spec); err != nil {
			return fmt.Errorf("schedule reconciler: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
