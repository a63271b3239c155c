package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	handler "github.com/communitydesk/ballot/internal/adapters/handler/http"
	"github.com/communitydesk/ballot/internal/adapters/notifier"
	repo "github.com/communitydesk/ballot/internal/adapters/repository/postgres"
	"github.com/communitydesk/ballot/internal/core/services"
	"github.com/communitydesk/ballot/internal/platform/config"
	"github.com/communitydesk/ballot/internal/platform/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.FromEnv()

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	logger := log.New(os.Stdout, "", log.LstdFlags)
	notify := notifier.New(logger, m, 256)

	pollRepo := repo.NewPollRepository(db)
	ledger := repo.NewLedgerRepository(db)
	resultsRepo := repo.NewResultsRepository(db)

	pollSvc := services.NewPollService(pollRepo, notify)
	voteSvc := services.NewVoteService(pollRepo, ledger, notify, m)
	receiptSvc := services.NewReceiptService(ledger)
	auditSvc := services.NewAuditService(pollRepo, ledger, m)
	resultsSvc := services.NewResultsService(pollRepo, resultsRepo, cfg.ResultsCacheTTL, time.Now)

	auth := handler.NewAuthMiddleware(cfg.JWTSecret)
	router := handler.NewHandler(
		handler.NewPollHandler(pollSvc, resultsSvc),
		handler.NewVoteHandler(voteSvc),
		handler.NewReceiptHandler(receiptSvc),
		handler.NewAuditHandler(auditSvc),
		auth,
		registry,
	)

	server := &stdhttp.Server{Addr: cfg.Addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := notify.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("notifier stopped: %v", err)
		}
	}()

	go func() {
		log.Printf("ballot server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
