package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"perfume-advisor-be/internal/bootstrap"
	"perfume-advisor-be/internal/config"
	"perfume-advisor-be/internal/server"
	"perfume-advisor-be/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, cfg)
	defer container.Close()

	shutdownTracer := tracer.InitTracer(cfg.Telemetry, container.Logger)
	defer shutdownTracer(context.Background())

	// 3. Load catalog and questions; /api/health reports 503 until this finishes
	go func() {
		if err := container.Advisor.Initialize(ctx); err != nil {
			container.Logger.Error("MAIN", "Advisor initialization failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
