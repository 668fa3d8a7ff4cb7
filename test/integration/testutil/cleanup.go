//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table the scoring schema owns.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"wager_settlements",
		"group_event_log",
		"score_groups",
	}
	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
