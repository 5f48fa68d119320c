// Command worker consumes booking events from RabbitMQ and appends them to
// the booking log.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadWorkerConfig()
	c := queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.BookingLogDir}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("booking-consumer: writing to %s", cfg.BookingLogDir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("booking-consumer: %v", err)
	}
}
