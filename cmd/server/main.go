package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/orbital-ledger/internal/adapter/grpc"
	"github.com/simaogato/orbital-ledger/internal/adapter/rates"
	"github.com/simaogato/orbital-ledger/internal/adapter/repository"
	"github.com/simaogato/orbital-ledger/internal/config"
	"github.com/simaogato/orbital-ledger/internal/logger"
	"github.com/simaogato/orbital-ledger/internal/usecase/converter"
	"github.com/simaogato/orbital-ledger/internal/usecase/dashboard"
	"github.com/simaogato/orbital-ledger/internal/usecase/ledger"
	"github.com/simaogato/orbital-ledger/internal/usecase/seeder"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", logger.FormatConsole)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, logger.Format(cfg.Log.Format))
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// 2. Setup state store
	store, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open ledger store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("Ledger store opened")

	// 3. Initialize Services (Use Cases)
	rateProvider := rates.NewHTTPProvider(rates.ProviderConfig{
		PrimaryURL:  cfg.Rates.PrimaryURL,
		FallbackURL: cfg.Rates.FallbackURL,
		CacheTTL:    cfg.Rates.CacheTTL,
		Timeout:     cfg.Rates.Timeout,
	}, log)
	currencyConverter := converter.NewCurrencyConverter(rateProvider, log.With().Str("component", "converter").Logger())
	dashboardService := dashboard.NewDashboardService(currencyConverter)

	sessions := grpcadapter.NewSessionRegistry(func(userID string) *ledger.Engine {
		return ledger.NewEngine(userID, currencyConverter, store, log)
	})

	// Seed the demo ledger when asked to
	defaultUser := ""
	if cfg.SeedDemo {
		seeded, err := seeder.NewDemoSeeder(store, time.Now, log).Seed(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo ledger")
		}
		log.Info().Bool("written", seeded).Msg("Demo ledger ready")
		defaultUser = seeder.DemoUserID
	}

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.AuthInterceptor(cfg.APIToken),
			grpcadapter.UserInterceptor(defaultUser),
			grpcadapter.LoggingInterceptor(log),
		),
	)

	grpcAdapter := grpcadapter.NewServer(sessions, dashboardService, rateProvider)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, log)
	log.Info().Strs("users", sessions.Users()).Msg("Sessions closed")
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
