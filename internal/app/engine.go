// Package engine runs the telemetry pipeline: it polls snapshots once per
// tick, derives strategy metrics, detects events, and hands them to the
// announcement, logging, and overlay adapters.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pitbox/pitwall/internal/adapters/mq/queue"
	"github.com/pitbox/pitwall/internal/adapters/notify"
	"github.com/pitbox/pitwall/internal/adapters/overlay"
	"github.com/pitbox/pitwall/internal/adapters/session"
	"github.com/pitbox/pitwall/internal/adapters/telemetry"
	"github.com/pitbox/pitwall/internal/config"
	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/pitbox/pitwall/pkg/logger"
	"github.com/pitbox/pitwall/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultTickInterval    = time.Second
	defaultQueueSize       = 256
	consumerStopTimeout    = 5 * time.Second
	defaultRecentEventsCap = 10
)

// Engine owns the tick loop and all pipeline components.
type Engine struct {
	mu sync.Mutex

	// Core components
	reader   telemetry.Reader
	calc     *strategy.Calculator
	det      *detector.Detector
	detState *detector.State
	queue    queue.Queue
	notifier notify.Notifier
	consumer *notify.Consumer
	store    *session.Store
	hub      *overlay.Hub

	// Configuration
	tickInterval time.Duration
	queueSize    int

	// Session state
	sessionID     string
	lapsCompleted int
	lastLap       int
	recentEvents  []model.Event

	// Lifecycle
	started bool
	done    chan struct{}

	logger logger.Logger
}

// New constructs an engine reading from the given telemetry source.
func New(reader telemetry.Reader, opts ...Option) *Engine {
	e := &Engine{
		reader:       reader,
		tickInterval: defaultTickInterval,
		queueSize:    defaultQueueSize,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start wires the remaining components and launches the tick loop. It
// returns immediately; Done() closes when the session ends.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	if e.calc == nil {
		e.calc = strategy.New()
	}
	if e.det == nil {
		e.det = detector.New()
	}
	e.detState = detector.NewState()

	if e.queue == nil {
		e.queue = queue.NewInMemoryQueue(
			queue.WithCapacity(e.queueSize),
			queue.WithBufferSize(e.queueSize),
		)
	}
	if e.notifier == nil {
		e.notifier = notify.NewLogNotifier()
	}
	e.consumer = notify.NewConsumer(e.queue, e.notifier)
	go e.consumer.Run(ctx)

	if e.store != nil {
		id, err := e.store.Begin(ctx, time.Now())
		if err != nil {
			return err
		}
		e.sessionID = id
	}

	e.started = true
	e.logger.Info(ctx, "engine started",
		logger.Duration("tick", e.tickInterval),
		logger.Int("queueSize", e.queueSize),
		logger.Bool("sessionLog", e.store != nil),
		logger.Bool("overlay", e.hub != nil),
	)

	go e.run(ctx)
	return nil
}

// Done closes when the tick loop has finished.
func (e *Engine) Done() <-chan struct{} { return e.done }

// run is the tick loop. It exits when the context ends or the reader reports
// end of session.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := e.reader.Next(ctx)
			if err != nil {
				if errors.Is(err, telemetry.ErrEndOfSession) {
					e.logger.Info(ctx, "session ended", logger.Int("laps", e.lapsCompleted))
					return
				}
				if ctx.Err() != nil {
					return
				}
				metrics.RecordSnapshotError()
				e.logger.Warn(ctx, "snapshot unavailable", logger.Error(err))
				continue
			}
			e.tick(ctx, snap)
		}
	}
}

// tick processes one snapshot through the pipeline.
func (e *Engine) tick(ctx context.Context, snap model.Snapshot) {
	start := time.Now()
	defer func() {
		metrics.RecordTick(float64(time.Since(start).Milliseconds()))
	}()

	// Off track means garage or tow; hold all state and stay quiet.
	if !snap.OnTrack {
		return
	}

	if snap.Lap > e.lastLap && e.lastLap > 0 {
		e.lapsCompleted += snap.Lap - e.lastLap
		metrics.RecordLapCompleted()
	}
	e.lastLap = snap.Lap

	m := e.calc.Update(snap)
	events := e.det.Detect(start, snap, m, e.detState)

	for _, ev := range events {
		metrics.RecordEventEmitted(ev.Kind.String())
		if !e.queue.Enqueue(ctx, ev) {
			e.logger.Warn(ctx, "event dropped, queue full",
				logger.String("kind", ev.Kind.String()),
			)
		}
		if e.store != nil {
			if err := e.store.LogEvent(ctx, e.sessionID, ev); err != nil {
				e.logger.Error(ctx, "session event log failed", logger.Error(err))
			}
		}
	}
	if len(events) > 0 {
		e.recentEvents = append(e.recentEvents, events...)
		if n := len(e.recentEvents); n > defaultRecentEventsCap {
			e.recentEvents = e.recentEvents[n-defaultRecentEventsCap:]
		}
	}

	if e.store != nil {
		if err := e.store.LogSnapshot(ctx, e.sessionID, snap); err != nil {
			e.logger.Error(ctx, "session snapshot log failed", logger.Error(err))
		}
	}

	if e.hub != nil {
		if err := e.hub.Broadcast(ctx, overlay.BuildState(snap, m, e.recentEvents)); err != nil {
			e.logger.Error(ctx, "overlay broadcast failed", logger.Error(err))
		}
	}
}

// Stop drains the pipeline and releases resources.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}

	e.logger.Info(ctx, "stopping engine")

	_ = e.queue.Close()

	stopCtx, cancel := context.WithTimeout(context.Background(), consumerStopTimeout)
	defer cancel()
	if err := e.consumer.Shutdown(stopCtx); err != nil {
		e.logger.Warn(ctx, "consumer shutdown", logger.Error(err))
	}

	if e.store != nil {
		if err := e.store.End(stopCtx, e.sessionID, time.Now(), e.lapsCompleted); err != nil {
			e.logger.Error(ctx, "session end failed", logger.Error(err))
		}
		_ = e.store.Close()
	}
	if e.hub != nil {
		_ = e.hub.Close()
	}
	_ = e.reader.Close()

	e.started = false
	e.logger.Info(ctx, "engine stopped", logger.Int("laps", e.lapsCompleted))
}

// FromConfig builds the calculator and detector options from configuration.
func FromConfig(cfg *config.Config) (calcOpts []strategy.Option, detOpts []detector.Option) {
	calcOpts = []strategy.Option{
		strategy.WithFuelThresholds(cfg.FuelWarningLaps, cfg.FuelCriticalLaps),
		strategy.WithTireWearThresholds(cfg.TireWarningPct, cfg.TireCriticalPct),
		strategy.WithTireTempThresholds(cfg.TireTempColdC, cfg.TireTempHotC),
		strategy.WithFuelWindow(cfg.FuelWindowLaps),
		strategy.WithMinFuelPerLap(cfg.MinFuelPerLap),
		strategy.WithPaceTrend(cfg.PaceTrendLaps, cfg.PaceDropSec, cfg.PaceGainSec),
	}
	detOpts = []detector.Option{
		detector.WithPositionBatching(true, cfg.PositionMinLap, time.Duration(cfg.PositionSettleTimeSec)*time.Second),
		detector.WithGapThresholds(cfg.GapBattleSec, cfg.GapCloseSec, cfg.GapClearSec),
		detector.WithAirThresholds(cfg.GapDirtyAirSec, cfg.GapCleanAirSec),
		detector.WithSpikeDelta(cfg.TireSpikeDelta),
		detector.WithProgressCallouts(true, cfg.RaceHalfwayCallout, cfg.LapsRemainingCallouts),
		detector.WithPeriodicUpdate(cfg.PeriodicUpdateLaps),
		detector.WithCooldowns(
			time.Duration(cfg.CooldownPositionSec)*time.Second,
			time.Duration(cfg.CooldownGapSec)*time.Second,
			time.Duration(cfg.CooldownTireTempSec)*time.Second,
			time.Duration(cfg.CooldownLockupSec)*time.Second,
			time.Duration(cfg.CooldownPaceSec)*time.Second,
			time.Duration(cfg.CooldownStrategySec)*time.Second,
		),
	}
	return calcOpts, detOpts
}
