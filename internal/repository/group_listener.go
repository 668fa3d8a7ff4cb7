package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// groupListener shares one LISTEN connection between every subscription of a
// store and fans notifications out by payload. The connection is dialed
// outside the pool, opened with the first subscriber and dropped with the
// last, so spectators never hold a pool slot.
type groupListener struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu     sync.Mutex
	groups map[string]*groupWatchers
	nextID int
	stop   context.CancelFunc
	done   chan struct{}
}

type groupWatchers struct {
	ref domain.GroupRef
	fns map[int]func(*domain.Group)
}

func newGroupListener(pool *pgxpool.Pool, logger *slog.Logger) *groupListener {
	return &groupListener{pool: pool, logger: logger, groups: make(map[string]*groupWatchers)}
}

// add registers fn for ref. When it returns the shared connection is
// listening, so no commit after this point is missed.
func (l *groupListener) add(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop == nil {
		conn, err := l.connect(ctx)
		if err != nil {
			return 0, err
		}
		runCtx, stop := context.WithCancel(context.Background())
		l.stop, l.done = stop, make(chan struct{})
		go l.run(runCtx, conn, l.done)
	}

	key := ref.String()
	w := l.groups[key]
	if w == nil {
		w = &groupWatchers{ref: ref, fns: make(map[int]func(*domain.Group))}
		l.groups[key] = w
	}
	id := l.nextID
	l.nextID++
	w.fns[id] = fn
	return id, nil
}

// remove unregisters a subscriber and stops the listener once none are left.
// It does not wait for the listener goroutine, so it is safe to call from fn.
func (l *groupListener) remove(ref domain.GroupRef, id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ref.String()
	if w := l.groups[key]; w != nil {
		delete(w.fns, id)
		if len(w.fns) == 0 {
			delete(l.groups, key)
		}
	}
	if len(l.groups) == 0 && l.stop != nil {
		l.stop()
		l.stop, l.done = nil, nil
	}
}

// close drops every subscriber and waits for the listener to exit.
func (l *groupListener) close() {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.groups = make(map[string]*groupWatchers)
	l.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

func (l *groupListener) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, l.pool.Config().ConnConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+GroupChangeChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("listen: %w", err)
	}
	return conn, nil
}

func (l *groupListener) run(ctx context.Context, conn *pgx.Conn, done chan struct{}) {
	defer close(done)
	for {
		err := l.listen(ctx, conn)
		_ = conn.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("group listener disconnected", "error", err)

		conn, err = l.reconnect(ctx)
		if err != nil {
			return
		}
		// Commits made while disconnected sent no notification we saw.
		l.resync(ctx)
	}
}

func (l *groupListener) listen(ctx context.Context, conn *pgx.Conn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.deliver(ctx, n.Payload)
	}
}

func (l *groupListener) reconnect(ctx context.Context) (*pgx.Conn, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	var conn *pgx.Conn
	err := backoff.RetryNotify(func() error {
		c, err := l.connect(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		l.logger.Warn("group listener reconnect failed", "error", err, "retry_in", wait)
	})
	return conn, err
}

func (l *groupListener) resync(ctx context.Context) {
	l.mu.Lock()
	keys := make([]string, 0, len(l.groups))
	for key := range l.groups {
		keys = append(keys, key)
	}
	l.mu.Unlock()

	for _, key := range keys {
		l.deliver(ctx, key)
	}
}

// deliver reads the group once and hands each subscriber its own copy.
func (l *groupListener) deliver(ctx context.Context, key string) {
	l.mu.Lock()
	w := l.groups[key]
	if w == nil {
		l.mu.Unlock()
		return
	}
	ref := w.ref
	fns := make([]func(*domain.Group), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	g, err := getGroup(ctx, l.pool, ref)
	if err != nil {
		l.logger.Warn("reload subscribed group", "tournament_id", ref.TournamentID, "group_id", ref.GroupID, "error", err)
		return
	}
	for _, fn := range fns {
		fn(g.Clone())
	}
}

// subscribers reports how many subscriptions are registered.
func (l *groupListener) subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.groups {
		n += len(w.fns)
	}
	return n
}
