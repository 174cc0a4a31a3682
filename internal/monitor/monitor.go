// ABOUTME: Monitoring snapshots: system metrics, storage stats, uptime
// ABOUTME: System counters come from a pluggable sampler; storage from the file store

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hearthside/hearth/internal/store"
)

// ErrNoSampler is returned when system metrics are requested but no sampler
// was configured
var ErrNoSampler = errors.New("no system sampler configured")

// SystemMetrics holds point-in-time system resource usage
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsedGB    float64 `json:"disk_used_gb"`
	DiskTotalGB   float64 `json:"disk_total_gb"`
	DiskFreeGB    float64 `json:"disk_free_gb"`
}

// StorageStats summarizes tracked file storage
type StorageStats struct {
	TotalFiles  int64   `json:"total_files"`
	TotalSizeGB float64 `json:"total_size_gb"`
	StoragePath string  `json:"storage_path"`
}

// Dashboard combines all monitoring data into one snapshot.
// System is omitted when no sampler is configured.
type Dashboard struct {
	System        *SystemMetrics `json:"system,omitempty"`
	Storage       StorageStats   `json:"storage"`
	UptimeSeconds float64        `json:"uptime_seconds"`
}

// SystemSampler collects OS-level resource counters. Implementations live
// outside this package; a nil sampler simply drops the system block from
// dashboard snapshots.
type SystemSampler interface {
	Sample(ctx context.Context) (*SystemMetrics, error)
}

// Service composes monitoring snapshots
type Service struct {
	files       store.FileStore
	sampler     SystemSampler
	storagePath string
	started     time.Time
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a monitoring service. sampler may be nil.
// started anchors the uptime calculation, normally process start.
func NewService(files store.FileStore, sampler SystemSampler, storagePath string, started time.Time, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		files:       files,
		sampler:     sampler,
		storagePath: storagePath,
		started:     started,
		logger:      logger.With("component", "monitor"),
		now:         time.Now,
	}
}

// System returns current system metrics from the sampler.
// Returns ErrNoSampler when none is configured.
func (s *Service) System(ctx context.Context) (*SystemMetrics, error) {
	if s.sampler == nil {
		return nil, ErrNoSampler
	}
	metrics, err := s.sampler.Sample(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampling system metrics: %w", err)
	}
	return metrics, nil
}

// Storage returns aggregate stats over the tracked file table
func (s *Service) Storage(ctx context.Context) (*StorageStats, error) {
	stats, err := s.files.FileStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching file stats: %w", err)
	}
	return &StorageStats{
		TotalFiles:  stats.TotalFiles,
		TotalSizeGB: roundTo(float64(stats.TotalBytes)/(1<<30), 4),
		StoragePath: s.storagePath,
	}, nil
}

// Snapshot composes the full dashboard. A sampler failure degrades the
// snapshot (system block omitted) rather than failing it; a storage failure
// is an error because the store is this service's own backend.
func (s *Service) Snapshot(ctx context.Context) (*Dashboard, error) {
	storage, err := s.Storage(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Storage:       *storage,
		UptimeSeconds: roundTo(s.now().Sub(s.started).Seconds(), 1),
	}

	if s.sampler != nil {
		system, err := s.sampler.Sample(ctx)
		if err != nil {
			s.logger.Warn("system sampler failed", "error", err)
		} else {
			dashboard.System = system
		}
	}

	return dashboard, nil
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
