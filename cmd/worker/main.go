package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollcall/internal/config"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

// Worker consumes recorded-mark events and maintains the per-(date, day,
// period) roll counters in Redis. The ledger stays the durable record; a
// dropped event only skews a counter.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	if !redisClient.Healthy(ctx) {
		log.Println("WARNING: redis not reachable, will keep retrying")
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:marks")
	}

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for mark events...")
	for evt := range events {
		if evt.MarkID == "" {
			continue
		}
		if err := redisClient.IncrRollCount(ctx, evt.Date, evt.Day, evt.Period); err != nil {
			log.Printf("roll count update failed for %s: %v", evt.MarkID, err)
			continue
		}
		log.Printf("counted mark %s (%s %s period %s)", evt.MarkID, evt.Date, evt.Day, evt.Period)
	}

	log.Println("worker stopped")
}
