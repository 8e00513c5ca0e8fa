package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/docshelf-app/docshelf-backend/config"
	"github.com/docshelf-app/docshelf-backend/internal/analytics"
	cronjob "github.com/docshelf-app/docshelf-backend/internal/analytics/cron"
)

// The worker owns the analytics rollup. Two modes:
//
//	worker rollup     run one rollup for yesterday and today, then exit
//	worker schedule   run the nightly cron until terminated (default)
func main() {
	mode := "schedule"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(5)
	if err := db.Ping(); err != nil {
		log.Fatalf("database ping: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	rollup := analytics.NewRollup(analytics.NewViewCounter(rdb), analytics.NewRollupStore(db))

	switch mode {
	case "rollup":
		runOnce(rollup)
	case "schedule":
		cronjob.NewScheduler(rollup).Start()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		log.Println("worker stopping")
	default:
		log.Fatalf("unknown mode %q (want rollup or schedule)", mode)
	}
}

func runOnce(rollup *analytics.Rollup) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	for _, day := range []time.Time{now.AddDate(0, 0, -1), now} {
		written, err := rollup.Run(ctx, day)
		if err != nil {
			log.Fatalf("rollup for %s: %v", day.Format("2006-01-02"), err)
		}
		log.Printf("rollup for %s wrote %d project(s)", day.Format("2006-01-02"), written)
	}
}
