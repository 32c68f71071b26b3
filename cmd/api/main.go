package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-shop-nosql/internal/config"
	"github.com/go-shop-nosql/internal/infrastructure/awscfg"
	"github.com/go-shop-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-shop-nosql/internal/infrastructure/jwt"
	s3infra "github.com/go-shop-nosql/internal/infrastructure/s3"
	"github.com/go-shop-nosql/internal/infrastructure/smtp"
	"github.com/go-shop-nosql/internal/infrastructure/sns"
	"github.com/go-shop-nosql/internal/pkg/clock"
	"github.com/go-shop-nosql/internal/pkg/logger"
	"github.com/go-shop-nosql/internal/pkg/password"
	transporthttp "github.com/go-shop-nosql/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg, "")
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName)
	if err := s3Store.EnsureBucket(ctx); err != nil {
		slog.Warn("image bucket not ready", "bucket", cfg.S3BucketName, "err", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ProductRepo: dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		ObjectStore: s3Store,
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
		Hasher:      password.NewBcrypt(0),
		Clock:       clock.New(),
	}

	// SNS SMS copy of the OTP (optional).
	if cfg.OTPSMSEnabled {
		snsCfg, err := awscfg.Load(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			slog.Warn("sns sender not available", "err", err)
		} else {
			deps.SMSSender = sns.NewSender(snsCfg, cfg.AWSEndpointURL)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}
