// Package backup copies the persisted project list to a second store on a
// cron schedule.
package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hse-epd/lut-studio/internal/kvstore"
	"github.com/hse-epd/lut-studio/internal/telemetry"
)

// snapshotLayout is appended to the source key to name each snapshot.
const snapshotLayout = "20060102T150405Z"

type Options struct {
	// Schedule is a six-field cron spec (seconds first).
	Schedule  string
	Key       string
	Logger    zerolog.Logger
	Collector telemetry.Collector
	Now       func() time.Time
}

type Scheduler struct {
	src, dst  kvstore.Store
	schedule  string
	key       string
	log       zerolog.Logger
	collector telemetry.Collector
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScheduler(src, dst kvstore.Store, opt Options) *Scheduler {
	s := &Scheduler{
		src:       src,
		dst:       dst,
		schedule:  opt.Schedule,
		key:       opt.Key,
		log:       opt.Logger,
		collector: opt.Collector,
		now:       opt.Now,
	}
	if s.collector == nil {
		s.collector = telemetry.Noop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SnapshotKey names the snapshot taken at t.
func SnapshotKey(key string, t time.Time) string {
	return key + "-" + t.UTC().Format(snapshotLayout)
}

// RunOnce copies the current value of the source key. It returns the
// snapshot key, or "" when there is nothing stored yet.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	data, err := s.src.Load(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		s.log.Info().Str("key", s.key).Msg("backup skipped, nothing stored")
		return "", nil
	}
	if err != nil {
		s.collector.IncBackup(false)
		return "", fmt.Errorf("load %s: %w", s.key, err)
	}

	snap := SnapshotKey(s.key, s.now())
	if err := s.dst.Save(ctx, snap, data); err != nil {
		s.collector.IncBackup(false)
		return "", fmt.Errorf("save %s: %w", snap, err)
	}
	s.collector.IncBackup(true)
	s.log.Info().Str("snapshot", snap).Int("bytes", len(data)).Msg("backup written")
	return snap, nil
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("backup scheduler already started")
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("backup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("backup schedule %q: %w", s.schedule, err)
	}

	s.log.Info().Str("schedule", s.schedule).Msg("backup scheduler started")
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the runner and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}
