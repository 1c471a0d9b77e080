package outbox

import (
	"context"
	"errors"
	"time"

	"tokenvault/config"
	"tokenvault/internal/metrics"
	"tokenvault/internal/models"
	"tokenvault/internal/repository"

	"go.uber.org/zap"
)

// Handler delivers one message payload. Handlers must tolerate redelivery.
type Handler func(ctx context.Context, payload []byte) error

var ErrNoHandler = errors.New("no handler registered for outbox kind")

const (
	maxBackoff = time.Hour
	claimLease = time.Minute
)

type Dispatcher struct {
	repo     *repository.OutboxRepository
	wake     <-chan struct{}
	handlers map[string]Handler
	cfg      config.OutboxConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatcher(repo *repository.OutboxRepository, ob *Outbox, cfg config.OutboxConfig, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		repo:     repo,
		handlers: make(map[string]Handler),
		cfg:      cfg,
		logger:   logger.Named("outbox"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	if ob != nil {
		d.wake = ob.Wakeups()
	}
	return d
}

// Handle registers h for kind. Register all handlers before Run.
func (d *Dispatcher) Handle(kind string, h Handler) {
	d.handlers[kind] = h
}

// Run delivers due messages on every poll tick and whenever the outbox is signalled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.Warn("outbox poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// DispatchOnce delivers one batch of due messages and returns how many were delivered.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.repo.ListDue(ctx, now, d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for i := range due {
		m := &due[i]
		ok, err := d.repo.Claim(ctx, m, now, now.Add(claimLease))
		if err != nil {
			return delivered, err
		}
		if !ok {
			continue
		}
		if d.deliver(ctx, m) {
			delivered++
		}
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, m *models.OutboxMessage) bool {
	log := d.logger.With(zap.Uint("message_id", m.ID), zap.String("kind", m.Kind), zap.Int("attempt", m.Attempts+1))

	h, ok := d.handlers[m.Kind]
	if !ok {
		d.markDead(ctx, m, ErrNoHandler, log)
		return false
	}

	herr := h(ctx, []byte(m.Payload))
	if herr == nil {
		if err := d.repo.MarkDone(ctx, m.ID); err != nil {
			log.Error("mark outbox message done", zap.Error(err))
		}
		metrics.OutboxMessages.WithLabelValues(m.Kind, "delivered").Inc()
		return true
	}

	metrics.DependencyFailures.WithLabelValues("outbox_" + m.Kind).Inc()
	if m.Attempts+1 >= d.cfg.MaxAttempts {
		d.markDead(ctx, m, herr, log)
		return false
	}
	next := d.now().Add(d.backoff(m.Attempts))
	if err := d.repo.MarkRetry(ctx, m.ID, next, herr.Error()); err != nil {
		log.Error("schedule outbox retry", zap.Error(err))
	}
	metrics.OutboxMessages.WithLabelValues(m.Kind, "retry").Inc()
	log.Warn("outbox delivery failed, will retry", zap.Error(herr), zap.Time("next_attempt_at", next))
	return false
}

func (d *Dispatcher) markDead(ctx context.Context, m *models.OutboxMessage, cause error, log *zap.Logger) {
	if err := d.repo.MarkDead(ctx, m.ID, cause.Error()); err != nil {
		log.Error("mark outbox message dead", zap.Error(err))
	}
	metrics.OutboxMessages.WithLabelValues(m.Kind, "dead").Inc()
	log.Error("outbox message dead-lettered", zap.Error(cause))
}

// backoff doubles the base delay per previous attempt, capped at maxBackoff.
func (d *Dispatcher) backoff(attempts int) time.Duration {
	delay := d.cfg.BaseBackoff
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
