package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-market-ledger.git/internal/config"
	"github.com/ariefcatur/go-market-ledger.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/logging"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/pgstore"
	"github.com/ariefcatur/go-market-ledger.git/internal/postgres"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNew(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers per lifecycle topic
	pub := httpx.Publishers{
		Placed:    kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderPlaced, 1024, log),
		Completed: kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCompleted, 1024, log),
		Cancelled: kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCancelled, 1024, log),
		Deleted:   kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderDeleted, 1024, log),
	}
	for _, p := range []*kafkax.Producer{pub.Placed, pub.Completed, pub.Cancelled, pub.Deleted} {
		p.Start(ctx)
	}

	// Engine & handler
	engine := market.NewEngine(pgstore.New(db), log)
	router := httpx.NewRouter()
	mh := &httpx.MarketHandler{
		Engine:  engine,
		Redis:   rdb,
		Pub:     pub,
		Service: cfg.ServiceName,
		Log:     log,
	}
	mh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// tutup inbox -> flush & close writer
	for _, p := range []*kafkax.Producer{pub.Placed, pub.Completed, pub.Cancelled, pub.Deleted} {
		p.Close()
	}
	for _, p := range []*kafkax.Producer{pub.Placed, pub.Completed, pub.Cancelled, pub.Deleted} {
		p.WaitClosed()
	}
}
