package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pos-checkout/internal/checkout"
	"pos-checkout/internal/config"
	"pos-checkout/internal/events"
	"pos-checkout/internal/httpx"
	kafkax "pos-checkout/internal/kafka"
	"pos-checkout/internal/ordercache"
	"pos-checkout/internal/posapi"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (order-detail cache)
	rdb := ordercache.NewRedis(cfg.RedisAddr)
	defer rdb.Close()
	cache := ordercache.New(rdb)

	// Backend client + payment methods (cache-first, methods change rarely)
	client := posapi.NewClient(cfg.BackendBaseURL, cfg.BackendAPIKey)
	methods, hit, err := cache.GetPaymentMethods(ctx)
	if err != nil || !hit {
		loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
		methods, err = client.ListPaymentMethods(loadCtx)
		loadCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("load payment methods")
		}
		_ = cache.PutPaymentMethods(ctx, methods)
	}
	log.Info().Int("count", len(methods)).Msg("payment methods loaded")

	// Kafka producers, one per checkout topic
	pDone := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicCheckoutCompleted, 1024, log)
	pDone.Start(ctx)
	pCancel := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicCheckoutCancelled, 1024, log)
	pCancel.Start(ctx)

	// Session store & handler
	store := checkout.NewStore(checkout.Deps{
		Client:       client,
		Cache:        cache,
		Completed:    pDone,
		Cancelled:    pCancel,
		Service:      cfg.ServiceName,
		Log:          log,
		PollInterval: cfg.PollInterval,
		BaseCtx:      ctx,
	}, methods, cfg.StaticQRISMethodID)

	router := httpx.NewRouter(log)
	ch := &httpx.CheckoutHandler{Sessions: store}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pDone.Close()
	pCancel.Close()
	cancel()
	pDone.WaitClosed()
	pCancel.WaitClosed()
}
