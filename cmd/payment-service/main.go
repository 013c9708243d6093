package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/app/background"
	"github.com/FENGsir1992/mall-payment-service/internal/config"
	deliveryhttp "github.com/FENGsir1992/mall-payment-service/internal/delivery/http"
	"github.com/FENGsir1992/mall-payment-service/internal/delivery/http/handlers"
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/gateway/alipay"
	"github.com/FENGsir1992/mall-payment-service/internal/gateway/wechat"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/kafka"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/metrics"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/migrate"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/repository"
	internalRedis "github.com/FENGsir1992/mall-payment-service/internal/infrastructure/redis"
	payment "github.com/FENGsir1992/mall-payment-service/internal/usecase/payment"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init redis lock store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lockStore := internalRedis.NewLockStore(redisClient)

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	eventPublisher := kafka.NewPaymentEventPublisher(brokers, cfg.Kafka.Topic)

	// Init repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	paymentRepo := repository.NewDefaultPaymentRepository(db)

	// Init provider gateway clients: built once, injected everywhere
	wechatClient, err := wechat.NewClient(&cfg.Wechat, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatalf("failed to init wechat client: %v", err)
	}
	alipayClient, err := alipay.NewClient(&cfg.Alipay, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatalf("failed to init alipay client: %v", err)
	}
	gateways := map[domain.PaymentMethod]domain.PaymentGateway{
		domain.MethodWechat: wechatClient,
		domain.MethodAlipay: alipayClient,
	}

	// Init metrics
	paymentMetrics := metrics.NewPaymentMetrics()

	// Init payment usecase
	uc := payment.NewDefaultPaymentUsecase(
		orderRepo,
		paymentRepo,
		gateways,
		lockStore,
		eventPublisher,
		paymentMetrics,
		cfg.Gateway.Timeout,
	)

	// Init handlers and router
	paymentHandler := handlers.NewPaymentHandler(uc)
	callbackHandler := handlers.NewCallbackHandler(wechatClient, alipayClient, uc)
	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		PaymentHandler:  paymentHandler,
		CallbackHandler: callbackHandler,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: router,
	}

	// Background reconciliation
	bgCtx, bgCancel := context.WithCancel(context.Background())
	tasks := background.NewBackgroundTasks(uc, cfg.Sweeper)
	tasks.StartAll(bgCtx)

	go func() {
		log.Printf("HTTP server started on %s:%s\n", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown: stop the sweeper first, let in-flight work finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	bgCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := eventPublisher.Close(); err != nil {
		log.Printf("failed to close kafka publisher: %v", err)
	}

	log.Println("Server exited")
}
