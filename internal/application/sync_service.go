package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRateLimited is returned when a manual sync is requested during the
// cooldown.
var ErrRateLimited = errors.New("rate limit exceeded")

// DefaultSyncCooldown is the minimum time between two manual syncs.
const DefaultSyncCooldown = 30 * time.Second

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	CollectionsAdded   int       `json:"collections_added"`
	CollectionsUpdated int       `json:"collections_updated"`
	CollectionsRemoved int       `json:"collections_removed"`
	CollectionsTotal   int       `json:"collections_total"`
	SyncedAt           time.Time `json:"synced_at"`
	NextScheduledAt    time.Time `json:"next_scheduled_at,omitempty"`
}

// SyncService reloads collections from storage on a schedule and on
// request.
type SyncService struct {
	registry *CollectionRegistry
	interval time.Duration
	cooldown time.Duration
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	triggerMu   sync.Mutex
	lastTrigger time.Time

	// Serializes registry syncs.
	syncMu sync.Mutex

	nextMu   sync.RWMutex
	nextSync time.Time
}

// NewSyncService creates a new sync service. A non-positive cooldown
// selects DefaultSyncCooldown.
func NewSyncService(registry *CollectionRegistry, interval, cooldown time.Duration, logger *slog.Logger) *SyncService {
	if cooldown <= 0 {
		cooldown = DefaultSyncCooldown
	}
	return &SyncService{
		registry: registry,
		interval: interval,
		cooldown: cooldown,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sync scheduler. It does nothing when the
// interval is not positive.
func (s *SyncService) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("periodic sync disabled")
		return
	}
	s.logger.Info("starting sync service", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setNextSync(time.Now().Add(s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped: context canceled")
			return
		case <-s.stopCh:
			s.logger.Info("sync service stopped")
			return
		case <-ticker.C:
			s.logger.Debug("scheduled sync triggered")
			if _, err := s.sync(ctx); err != nil {
				s.logger.Error("scheduled sync failed", "error", err)
			}
			s.setNextSync(time.Now().Add(s.interval))
		}
	}
}

// Stop stops the scheduler and waits for a running sync to finish. It is
// safe to call more than once.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping sync service")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// TriggerSync runs a sync immediately. It returns ErrRateLimited when the
// previous manual sync is less than the cooldown ago.
func (s *SyncService) TriggerSync(ctx context.Context) (SyncResult, error) {
	s.triggerMu.Lock()
	if !s.lastTrigger.IsZero() && time.Since(s.lastTrigger) < s.cooldown {
		s.triggerMu.Unlock()
		return SyncResult{}, ErrRateLimited
	}
	s.lastTrigger = time.Now()
	s.triggerMu.Unlock()

	return s.sync(ctx)
}

func (s *SyncService) sync(ctx context.Context) (SyncResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	stats, err := s.registry.Sync(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	return SyncResult{
		CollectionsAdded:   stats.Added,
		CollectionsUpdated: stats.Updated,
		CollectionsRemoved: stats.Removed,
		CollectionsTotal:   s.registry.CollectionCount(),
		SyncedAt:           time.Now().UTC(),
		NextScheduledAt:    s.NextSync(),
	}, nil
}

func (s *SyncService) setNextSync(t time.Time) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()
	s.nextSync = t
}

// NextSync returns when the next scheduled sync runs, or the zero time if
// the scheduler is not running.
func (s *SyncService) NextSync() time.Time {
	s.nextMu.RLock()
	defer s.nextMu.RUnlock()
	return s.nextSync
}

// Cooldown returns the minimum time between two manual syncs.
func (s *SyncService) Cooldown() time.Duration {
	return s.cooldown
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}
