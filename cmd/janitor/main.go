package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Scheduled cleanup: parties whose start time is more than 30 days gone,
// and parties that never got a message attached (the create/attach pair
// was interrupted) older than a day.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stale, err := pool.Exec(cctx, `
DELETE FROM parties
WHERE start_at IS NOT NULL
  AND start_at < now() - INTERVAL '30 days';`)
	if err != nil {
		return fmt.Sprintf("stale: %v", err), nil
	}

	orphaned, err := pool.Exec(cctx, `
DELETE FROM parties
WHERE message_id IS NULL
  AND created_at < now() - INTERVAL '1 day';`)
	if err != nil {
		return fmt.Sprintf("orphaned: %v", err), nil
	}

	return fmt.Sprintf("ok stale=%d orphaned=%d", stale.RowsAffected(), orphaned.RowsAffected()), nil
}

func main() { lambda.Start(handler) }
