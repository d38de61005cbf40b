package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-market-ledger.git/internal/config"
	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/logging"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/pgstore"
	"github.com/ariefcatur/go-market-ledger.git/internal/postgres"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
	"github.com/ariefcatur/go-market-ledger.git/internal/reports"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNew(cfg.ServiceName+"-reports", cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &reports.Service{
		Store:       pgstore.New(db),
		Redis:       rdb,
		Log:         log,
		ServiceName: cfg.ServiceName + "-reports",
	}

	group := getenv("REPORTS_GROUP", "reports-svc")
	workers := mustAtoi(os.Getenv("REPORTS_WORKERS"), "4")
	topics := []string{
		market.TopicOrderPlaced,
		market.TopicOrderCompleted,
		market.TopicOrderCancelled,
		market.TopicOrderDeleted,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers, log)

	go func() {
		log.Info("reports consumer started",
			zap.String("group", group),
			zap.Strings("topics", topics),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer")
	cancel()
}
