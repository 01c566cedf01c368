package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pos-checkout/internal/config"
	"pos-checkout/internal/events"
	"pos-checkout/internal/journal"
	kafkax "pos-checkout/internal/kafka"
	"pos-checkout/internal/ordercache"
	"pos-checkout/internal/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", cfg.ServiceName+"-journal").
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 8)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis (event dedup)
	rdb := ordercache.NewRedis(cfg.RedisAddr)
	defer rdb.Close()

	svc := &journal.Service{
		Repo:  &journal.Repo{DB: db},
		Redis: rdb,
		Log:   log,
	}

	group := getenv("JOURNAL_GROUP", "sales-journal")
	workers := atoiDefault(os.Getenv("JOURNAL_WORKERS"), 4)

	for _, topic := range []string{events.TopicCheckoutCompleted, events.TopicCheckoutCancelled} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		go func(topic string) {
			log.Info().Str("topic", topic).Str("group", group).Int("workers", workers).Msg("consumer started")
			if err := cons.Start(ctx, svc.HandleCheckoutEvent); err != nil {
				log.Error().Err(err).Str("topic", topic).Msg("consumer exit")
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)

	// one last look at today's numbers for the shift log
	sumCtx, sumCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer sumCancel()
	if s, err := svc.Repo.Summary(sumCtx, time.Now().UTC()); err == nil {
		log.Info().
			Int("sales", s.SalesCount).
			Int("cancellations", s.Cancellations).
			Int64("gross_total", s.GrossTotal).
			Int64("net_total", s.NetTotal).
			Msg("daily summary")
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
