package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// listen emits once, then again on every notification on channel whose payload matches.
// It holds a dedicated connection which is closed, not returned to the pool, on exit.
func listen(ctx context.Context, pool *pgxpool.Pool, channel string, match func(payload string) bool, emit func(ctx context.Context) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pool.Acquire: %w", err)
	}
	defer func() {
		_ = conn.Hijack().Close(context.Background())
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("conn.Exec LISTEN: %w", err)
	}

	if err := emit(ctx); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("conn.WaitForNotification: %w", err)
		}

		if !match(n.Payload) {
			continue
		}

		if err := emit(ctx); err != nil {
			return err
		}
	}
}
