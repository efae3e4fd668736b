package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mineai/mineai/config"
	"mineai/mineai/controllers"
	"mineai/mineai/middlewares"
	"mineai/mineai/routes"
	"mineai/mineai/services/llm"
	"mineai/mineai/services/rag"
	"mineai/mineai/sources/psql"
	"mineai/mineai/sources/psql/dao"
	"mineai/mineai/sources/storage"
	"mineai/mineai/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg, err := config.LoadConfig()
	if err != nil {
		// refuse to serve anything with secrets missing
		logging.ErrorLogger.Error("config error", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	roPool, err := psql.NewReadOnlyPool(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("read-only pool connection error", zap.Error(err))
		os.Exit(1)
	}
	defer roPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	convDAO := dao.NewConversationDAO(db.DB)
	msgDAO := dao.NewMessageDAO(db.DB)
	docDAO := dao.NewDocumentDAO(db.DB)

	embedder := llm.NewEmbeddingClient(cfg.AIGatewayURL, cfg.AIGatewayKey)
	retriever := rag.NewRetriever(roPool)
	gateway := llm.NewGatewayClient(cfg.AIGatewayURL, cfg.AIGatewayKey)

	chatCtrl := controllers.NewChatController(embedder, retriever, gateway, convDAO, msgDAO)
	convCtrl := controllers.NewConversationController(convDAO, msgDAO)
	docCtrl := controllers.NewDocumentController(docDAO, minioClient)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CORSMiddleware)

	r.Mount("/chat", routes.ChatRoutes(chatCtrl, cfg))
	r.Mount("/conversations", routes.ConversationRoutes(convCtrl, cfg))
	r.Mount("/documents", routes.DocumentRoutes(docCtrl, cfg))
	r.Mount("/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
