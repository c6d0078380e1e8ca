package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-advancement/internal/events"
	"github.com/KirkDiggler/rpg-advancement/internal/orchestrators/advancement"
)

const healthServiceName = "rpg.advancement.v1alpha1.AdvancementService"

var (
	grpcPort int
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the advancement engine",
	Long: `Start the advancement engine: level-up subscriber workers, the optional
Kafka level-up source, and the gRPC health endpoint.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides ADVANCEMENT_GRPC_PORT)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if grpcPort != 0 {
		cfg.GRPCPort = grpcPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("failed to close stores", "error", err)
		}
	}()

	if cfg.CatalogFile != "" {
		if err := seedCatalog(ctx, st, cfg.CatalogFile); err != nil {
			return err
		}
	}

	notifier, closeNotifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			slog.Warn("failed to close notifier", "error", err)
		}
	}()

	svc, err := buildService(cfg, st, notifier)
	if err != nil {
		return err
	}

	queue := events.NewQueue(cfg.QueueSize)
	subscriber, err := events.NewSubscriber(&events.SubscriberConfig{
		Queue:   queue,
		Handler: advancement.LevelUpHandler(svc),
		Workers: cfg.SubscriberWorkers,
	})
	if err != nil {
		return err
	}

	var source *events.KafkaSource
	if cfg.KafkaEnabled() {
		source, err = events.NewKafkaSource(&events.KafkaSourceConfig{
			Brokers:   cfg.KafkaBrokers,
			Topic:     cfg.KafkaLevelUpTopic,
			GroupID:   cfg.KafkaGroupID,
			Publisher: queue,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := source.Close(); err != nil {
				slog.Warn("failed to close kafka source", "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandlerContext(recoverFunc)),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(grpc_recovery.WithRecoveryHandlerContext(recoverFunc)),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(healthServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return subscriber.Run(gctx)
	})

	if source != nil {
		g.Go(func() error {
			// the queue closes once the source stops so workers drain and exit
			defer queue.Close()
			return source.Run(gctx)
		})
	} else {
		g.Go(func() error {
			<-gctx.Done()
			queue.Close()
			return nil
		})
	}

	g.Go(func() error {
		slog.InfoContext(gctx, "gRPC server starting",
			"port", cfg.GRPCPort,
			"backend", cfg.Backend,
			"kafka", cfg.KafkaEnabled())
		if err := srv.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		healthServer.Shutdown()
		gracefulStop(srv, 30*time.Second)
		return nil
	})

	return g.Wait()
}

func gracefulStop(srv *grpc.Server, timeout time.Duration) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-time.After(timeout):
		slog.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("server stopped gracefully")
	}
}

// logFunc bridges the interceptor logger to slog; the level values line up
func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}

func recoverFunc(ctx context.Context, p any) error {
	slog.ErrorContext(ctx, "panic in gRPC handler", "panic", p)
	return status.Errorf(codes.Internal, "internal error")
}
