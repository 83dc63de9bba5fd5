// Package syncer drives the synchronization flows between the remote
// configuration store and the local file tree: pull-and-materialize, publish,
// and the long-lived change subscription. The Syncer is an explicitly
// constructed, explicitly owned service object; callers hold the only
// reference and control its lifecycle.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/c360/confsync/errors"
	"github.com/c360/confsync/health"
	"github.com/c360/confsync/materializer"
	"github.com/c360/confsync/metric"
)

// Store is the capability contract the remote configuration store must
// satisfy. Reconnect and retry policy belongs to the store client, not to
// the Syncer.
type Store interface {
	// Fetch returns the composite document for (dataID, group). An empty
	// string with a nil error means the store holds no document.
	Fetch(ctx context.Context, dataID, group string) (string, error)

	// Publish pushes a composite document to the store.
	Publish(ctx context.Context, dataID, group, content string) error

	// Subscribe registers onChange for every change to (dataID, group) and
	// returns once the subscription is established. The callback runs on the
	// store client's delivery goroutine and must not block.
	Subscribe(ctx context.Context, dataID, group string, onChange func(content string)) error
}

// Pass triggers, used as metric labels and log fields.
const (
	TriggerManual = "manual"
	TriggerNotify = "notify"
)

// PassInfo records the outcome of the most recent materialize pass.
type PassInfo struct {
	ID       string
	Trigger  string
	Time     time.Time
	Written  int
	Failures int
	Empty    bool
}

// Syncer owns one (dataID, group) synchronization: it fetches and
// materializes the composite document, publishes the local copy back, and
// keeps the target files current while the subscription runs.
type Syncer struct {
	store   Store
	writer  *materializer.Writer
	dataID  string
	group   string
	logger  *slog.Logger
	metrics *metric.Metrics
	monitor *health.Monitor

	// pending is the one-slot notification queue: the store callback only
	// enqueues, and a newer document replaces an older undelivered one, so
	// the single worker always materializes the latest content and store
	// delivery latency stays decoupled from write latency.
	pending chan string

	lastPass atomic.Value // stores PassInfo

	// Lifecycle management
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	started    atomic.Bool
	stopped    atomic.Bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithMetrics attaches Prometheus collectors. Without it the Syncer records
// nothing.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Syncer) { s.metrics = m }
}

// WithMonitor attaches a health monitor that receives component status
// updates after every pass and publish.
func WithMonitor(m *health.Monitor) Option {
	return func(s *Syncer) { s.monitor = m }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// New creates a Syncer for one (dataID, group) pair. The store and writer
// are required; dataID and group must be non-empty.
func New(store Store, writer *materializer.Writer, dataID, group string, opts ...Option) (*Syncer, error) {
	if store == nil {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "syncer", "new", "validate store")
	}
	if writer == nil {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "syncer", "new", "validate writer")
	}
	if dataID == "" || group == "" {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "syncer", "new", "validate data id and group")
	}

	s := &Syncer{
		store:   store,
		writer:  writer,
		dataID:  dataID,
		group:   group,
		logger:  slog.Default(),
		pending: make(chan string, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SyncOnce runs one pull-and-materialize pass. A nil/empty fetched document
// aborts the pass with a warning and touches no files; per-fragment failures
// degrade to a partial result and do not fail the pass.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	content, err := s.store.Fetch(ctx, s.dataID, s.group)
	if err != nil {
		s.recordPass(TriggerManual, "fetch_error")
		s.updateHealth(false, "fetch failed")
		return cerrors.WrapTransient(err, "syncer", "syncOnce", "fetch composite")
	}
	return s.materialize(TriggerManual, content)
}

// PublishLocal pushes the locally materialized composite to the store. The
// result is a boolean, never a panic across the boundary: a missing store
// address, an absent or malformed local composite, and a store rejection all
// degrade to a logged false.
func (s *Syncer) PublishLocal(ctx context.Context) bool {
	content, err := s.writer.LoadComposite()
	if err != nil {
		s.logger.Warn("publish aborted, local composite unavailable",
			"data_id", s.dataID, "error", err)
		s.recordPublish("local_missing")
		return false
	}

	if err := s.store.Publish(ctx, s.dataID, s.group, content); err != nil {
		s.logger.Warn("publish rejected by store",
			"data_id", s.dataID, "group", s.group, "error", err)
		s.recordPublish("rejected")
		return false
	}

	s.logger.Info("composite published",
		"data_id", s.dataID, "group", s.group, "bytes", len(content))
	s.recordPublish("ok")
	return true
}

// Start registers the change subscription and spawns the single worker
// goroutine that materializes queued notifications. Start may be called
// once; the subscription lives until Stop.
func (s *Syncer) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return cerrors.ErrAlreadyStarted
	}
	s.shutdownCh = make(chan struct{})

	if err := s.store.Subscribe(ctx, s.dataID, s.group, s.enqueue); err != nil {
		s.started.Store(false)
		return cerrors.WrapTransient(err, "syncer", "start", "register subscription")
	}

	s.wg.Add(1)
	go s.worker(ctx)

	s.logger.Info("syncer started", "data_id", s.dataID, "group", s.group)
	return nil
}

// Stop shuts the worker down, waiting up to timeout for an in-flight pass to
// finish. A pass that already started runs its fragments to completion; only
// queued, unstarted notifications are abandoned.
func (s *Syncer) Stop(timeout time.Duration) error {
	if !s.started.Load() {
		return cerrors.ErrNotStarted
	}
	if !s.stopped.CompareAndSwap(false, true) {
		return nil // Already stopped
	}

	close(s.shutdownCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("syncer shutdown timeout", "timeout", timeout)
		return cerrors.WrapTransient(cerrors.ErrShuttingDown, "syncer", "stop", "wait for worker")
	}

	s.logger.Info("syncer stopped", "data_id", s.dataID, "group", s.group)
	return nil
}

// LastPass returns the most recent pass outcome, with ok=false before any
// pass has run.
func (s *Syncer) LastPass() (PassInfo, bool) {
	v := s.lastPass.Load()
	if v == nil {
		return PassInfo{}, false
	}
	return v.(PassInfo), true
}

// enqueue is the subscription callback. It never blocks: when a notification
// is already pending, the older document is dropped in favor of the newer
// one. The single consumer preserves last-write-wins ordering.
func (s *Syncer) enqueue(content string) {
	if s.stopped.Load() {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordNotificationReceived()
	}

	for {
		select {
		case s.pending <- content:
			return
		default:
		}
		select {
		case <-s.pending:
			if s.metrics != nil {
				s.metrics.RecordNotificationCoalesced()
			}
			s.logger.Debug("pending notification coalesced", "data_id", s.dataID)
		default:
		}
	}
}

// worker is the single consumer of the notification queue.
func (s *Syncer) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownCh:
			return
		case content := <-s.pending:
			if err := s.materialize(TriggerNotify, content); err != nil {
				s.logger.Error("materialize pass failed",
					"trigger", TriggerNotify, "error", err)
			}
		}
	}
}

// materialize runs one write pass over content and records its outcome.
func (s *Syncer) materialize(trigger, content string) error {
	passID := uuid.NewString()
	start := time.Now()

	if content == "" {
		// Spurious empty fetches must not wipe good local state.
		s.logger.Warn("empty composite document, pass skipped",
			"pass_id", passID, "trigger", trigger,
			"data_id", s.dataID, "group", s.group)
		s.recordPass(trigger, "empty")
		s.lastPass.Store(PassInfo{ID: passID, Trigger: trigger, Time: start, Empty: true})
		return nil
	}

	res, err := s.writer.Materialize(content)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordPassDuration(trigger, duration)
	}
	if err != nil {
		s.recordPass(trigger, "error")
		s.updateHealth(false, "materialize pass failed")
		return err
	}

	info := PassInfo{
		ID:       passID,
		Trigger:  trigger,
		Time:     start,
		Written:  len(res.Written),
		Failures: len(res.Failures),
	}
	s.lastPass.Store(info)

	if s.metrics != nil {
		for range res.Written {
			s.metrics.RecordFragmentWrite("ok")
		}
		for range res.Failures {
			s.metrics.RecordFragmentWrite("failed")
		}
	}

	if !res.OK() {
		for _, f := range res.Failures {
			s.logger.Warn("fragment not materialized",
				"pass_id", passID, "name", f.Name, "error", f.Err)
		}
		s.recordPass(trigger, "partial")
		s.updateHealth(false, "pass completed with fragment failures")
	} else {
		s.recordPass(trigger, "ok")
		s.updateHealth(true, "last pass materialized all fragments")
	}

	s.logger.Info("materialize pass complete",
		"pass_id", passID, "trigger", trigger,
		"written", info.Written, "failed", info.Failures,
		"duration", duration)
	return nil
}

func (s *Syncer) recordPass(trigger, status string) {
	if s.metrics != nil {
		s.metrics.RecordSyncPass(trigger, status)
	}
}

func (s *Syncer) recordPublish(status string) {
	if s.metrics != nil {
		s.metrics.RecordPublish(status)
	}
}

func (s *Syncer) updateHealth(healthy bool, message string) {
	if s.monitor == nil {
		return
	}
	if healthy {
		s.monitor.UpdateHealthy("syncer", message)
	} else {
		s.monitor.UpdateDegraded("syncer", message)
	}
}
