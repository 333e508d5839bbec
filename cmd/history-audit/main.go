package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"perfume-advisor-be/internal/config"
	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/pkg/events"
	pktNats "perfume-advisor-be/pkg/nats"
)

// history-audit follows the ADVISOR stream and appends every event to the audit log,
// so the trail survives restarts of the REST instances.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.Infra.NatsURL == "" {
		log.Fatal("NATS_URL is required")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()
	audit := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	defer audit.Sync()

	// the publisher owns stream creation
	pub, err := pktNats.NewPublisher(cfg.Infra.NatsURL, cfg.Infra.NatsRetention, sysLogger)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	pub.Close()

	sub, err := pktNats.NewSubscriber(cfg.Infra.NatsURL, sysLogger)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", "history-audit", func(_ context.Context, event events.Event) error {
		details := make(map[string]interface{}, len(event.Payload())+1)
		for k, v := range event.Payload() {
			details[k] = v
		}
		details["occurred_at"] = event.Timestamp()
		audit.Info("HISTORY", event.EventType(), details)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	sysLogger.Info("AUDIT", "History audit worker running", map[string]interface{}{"stream": pktNats.StreamName})
	<-ctx.Done()
}
