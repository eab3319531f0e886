package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/jitter"
	"github.com/marble-shop/go-backend/pkg/logger"
)

const (
	listenWaitTimeout  = 30 * time.Second
	reconnectBaseDelay = 2 * time.Second
	reconnectMaxDelay  = time.Minute
)

// PgListener подписывается на канал Postgres через LISTEN и превращает
// уведомления в сигналы для OutboxWorker. При обрыве соединения переподключается
// с экспоненциальной задержкой.
type PgListener struct {
	dbConnStr string
	channel   string
	logger    logger.Logger
	signals   chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewPgListener(dbConnStr, channel string, logger logger.Logger) *PgListener {
	return &PgListener{
		dbConnStr: dbConnStr,
		channel:   channel,
		logger:    logger,
		signals:   make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

// Notifications: канал сигналов. Несколько уведомлений подряд схлопываются в одно.
func (l *PgListener) Notifications() <-chan struct{} {
	return l.signals
}

func (l *PgListener) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.listen(ctx)
	}()
}

func (l *PgListener) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	l.wg.Wait()
}

func (l *PgListener) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, l.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	l.logger.Infof("Subscribed to '%s' channel", l.channel)
	return conn, nil
}

func (l *PgListener) listen(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-l.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		conn    *pgx.Conn
		attempt int
	)
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for ctx.Err() == nil {
		if conn == nil {
			var err error
			conn, err = l.connect(ctx)
			if err != nil {
				delay := jitter.ExponentialBackoff(reconnectBaseDelay, reconnectMaxDelay, attempt, jitter.DefaultJitter)
				attempt++
				l.logger.Warnf("Reconnect failed: %v. Next attempt in %s", err, delay)
				if !jitter.Sleep(ctx.Done(), delay) {
					return
				}
				continue
			}
			attempt = 0
			// пока соединения не было, уведомления могли потеряться
			l.signal()
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, listenWaitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		waitCancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			l.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == l.channel {
			l.signal()
		}
	}
}

func (l *PgListener) signal() {
	select {
	case l.signals <- struct{}{}:
	default:
	}
}
