package robot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller views.
const (
	PollControl  = "control"
	PollRealtime = "realtime"
)

// Poller re-fetches backend state while a view is active. Each view owns
// one refresh loop; deactivating the view stops its loop. The revert timer
// lives in the Controller and is untouched by view teardown.
type Poller struct {
	controller *Controller
	logger     *zap.Logger

	controlInterval  time.Duration
	realtimeInterval time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewPoller creates a poller over the controller's refresh operations.
func NewPoller(controller *Controller, controlInterval, realtimeInterval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		controller:       controller,
		logger:           logger,
		controlInterval:  controlInterval,
		realtimeInterval: realtimeInterval,
		cancels:          make(map[string]context.CancelFunc),
	}
}

// Activate starts the view's refresh loop. Re-activating a running view
// restarts its loop with the given token.
func (p *Poller) Activate(view, token string) {
	var interval time.Duration
	var refresh func(context.Context, string)

	switch view {
	case PollControl:
		interval = p.controlInterval
		refresh = p.refreshControl
	case PollRealtime:
		interval = p.realtimeInterval
		refresh = p.refreshRealtime
	default:
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if prev, ok := p.cancels[view]; ok {
		prev()
	}
	p.cancels[view] = cancel
	p.mu.Unlock()

	go p.run(ctx, view, token, interval, refresh)
}

// Deactivate stops the view's refresh loop.
func (p *Poller) Deactivate(view string) {
	p.mu.Lock()
	cancel, ok := p.cancels[view]
	if ok {
		delete(p.cancels, view)
	}
	p.mu.Unlock()

	if ok {
		cancel()
	}
}

// Active reports whether a view's loop is running. For testing.
func (p *Poller) Active(view string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cancels[view]
	return ok
}

// Shutdown stops every loop.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	for view, cancel := range p.cancels {
		cancel()
		delete(p.cancels, view)
	}
	p.mu.Unlock()
}

func (p *Poller) run(ctx context.Context, view, token string, interval time.Duration, refresh func(context.Context, string)) {
	refresh(ctx, token)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx, token)
		}
	}
}

func (p *Poller) refreshControl(ctx context.Context, token string) {
	if _, err := p.controller.RefreshStatus(ctx, token); err != nil && ctx.Err() == nil {
		p.logger.Warn("control poll failed", zap.Error(err))
	}
}

func (p *Poller) refreshRealtime(ctx context.Context, token string) {
	if _, err := p.controller.RefreshReadings(ctx, token); err != nil && ctx.Err() == nil {
		p.logger.Warn("sensor poll failed", zap.Error(err))
	}
	if _, err := p.controller.RefreshStatus(ctx, token); err != nil && ctx.Err() == nil {
		p.logger.Warn("status poll failed", zap.Error(err))
	}
}
