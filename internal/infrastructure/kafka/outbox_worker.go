package kafka

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

// OutboxStore: хранилище outbox, с которым работает воркер.
type OutboxStore interface {
	usecase.OutboxRepository
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// OutboxWorker переносит события из outbox_events в Kafka.
// Очередь разбирается при старте, по сигналу из notifications и по таймеру.
type OutboxWorker struct {
	repo          OutboxStore
	logger        logger.Logger
	producer      usecase.MessageProducer
	notifications <-chan struct{}
	cfg           *cfg.OutboxCfg
	stop          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

func NewOutboxWorker(
	repo OutboxStore,
	logger logger.Logger,
	producer usecase.MessageProducer,
	notifications <-chan struct{},
	cfg *cfg.OutboxCfg,
) *OutboxWorker {
	return &OutboxWorker{
		repo:          repo,
		logger:        logger,
		producer:      producer,
		notifications: notifications,
		cfg:           cfg,
		stop:          make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения текущей пачки.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Outbox worker stopped")
			return
		case <-w.notifications:
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		case <-ticker.C:
			if n, err := w.repo.ReleaseStale(ctx, w.cfg.StaleAfter); err != nil {
				w.logger.Warnf("release stale events failed: %v", err)
			} else if n > 0 {
				w.logger.Warnf("released %d stale outbox events", n)
			}
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет или пока отправка не начнёт падать.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает true, если вся пачка отправлена и в очереди может быть ещё.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			w.logger.Warnf("publish event %s failed: %v", event.EventID, err)
			if err := w.repo.Release(ctx, event.ID); err != nil {
				w.logger.Warnf("release event %d failed: %v", event.ID, err)
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return failed == 0 && len(events) == w.cfg.BatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event)); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
