// ABOUTME: Tests for monitoring snapshot composition
// ABOUTME: Covers sampler presence/absence/failure, storage rounding, uptime

package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hearthside/hearth/internal/store"
)

type fakeSampler struct {
	metrics *SystemMetrics
	err     error
}

func (f *fakeSampler) Sample(ctx context.Context) (*SystemMetrics, error) {
	return f.metrics, f.err
}

func testMetrics() *SystemMetrics {
	return &SystemMetrics{
		CPUPercent:    12.5,
		MemoryPercent: 40.0,
		MemoryUsedGB:  6.4,
		MemoryTotalGB: 16.0,
		DiskPercent:   55.0,
		DiskUsedGB:    550.0,
		DiskTotalGB:   1000.0,
		DiskFreeGB:    450.0,
	}
}

func TestSnapshot(t *testing.T) {
	files := store.NewMockStore()
	ctx := context.Background()
	now := time.Now().UTC()

	// 3 GiB of tracked files
	if err := files.CreateFile(ctx, &store.FileMetadata{
		ID: "f1", Name: "big.iso", Path: "/srv/storage/big.iso",
		Size: 3 << 30, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	started := now.Add(-90 * time.Second)
	svc := NewService(files, &fakeSampler{metrics: testMetrics()}, "/srv/storage", started, nil)
	svc.now = func() time.Time { return now }

	dash, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if dash.System == nil {
		t.Fatal("expected system block")
	}
	if dash.System.CPUPercent != 12.5 {
		t.Errorf("CPUPercent = %v, want 12.5", dash.System.CPUPercent)
	}
	if dash.Storage.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1", dash.Storage.TotalFiles)
	}
	if dash.Storage.TotalSizeGB != 3.0 {
		t.Errorf("TotalSizeGB = %v, want 3.0", dash.Storage.TotalSizeGB)
	}
	if dash.Storage.StoragePath != "/srv/storage" {
		t.Errorf("StoragePath = %q, want /srv/storage", dash.Storage.StoragePath)
	}
	if dash.UptimeSeconds != 90.0 {
		t.Errorf("UptimeSeconds = %v, want 90.0", dash.UptimeSeconds)
	}
}

func TestSnapshot_NilSamplerOmitsSystem(t *testing.T) {
	svc := NewService(store.NewMockStore(), nil, "/srv/storage", time.Now(), nil)

	dash, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if dash.System != nil {
		t.Errorf("expected system block omitted, got %+v", dash.System)
	}
}

func TestSnapshot_SamplerFailureDegrades(t *testing.T) {
	sampler := &fakeSampler{err: errors.New("counters unavailable")}
	svc := NewService(store.NewMockStore(), sampler, "/srv/storage", time.Now(), nil)

	dash, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot should degrade, not fail: %v", err)
	}
	if dash.System != nil {
		t.Error("expected system block omitted on sampler failure")
	}
}

func TestSystem_NoSampler(t *testing.T) {
	svc := NewService(store.NewMockStore(), nil, "/srv/storage", time.Now(), nil)

	_, err := svc.System(context.Background())
	if !errors.Is(err, ErrNoSampler) {
		t.Errorf("expected ErrNoSampler, got %v", err)
	}
}

func TestStorage_Rounding(t *testing.T) {
	files := store.NewMockStore()
	ctx := context.Background()
	now := time.Now().UTC()

	// 1.5 MiB rounds to 0.0015 GB at 4 decimal places
	if err := files.CreateFile(ctx, &store.FileMetadata{
		ID: "f1", Name: "clip.mp4", Path: "/srv/storage/clip.mp4",
		Size: 3 << 19, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	svc := NewService(files, nil, "/srv/storage", now, nil)
	stats, err := svc.Storage(ctx)
	if err != nil {
		t.Fatalf("Storage failed: %v", err)
	}
	if stats.TotalSizeGB != 0.0015 {
		t.Errorf("TotalSizeGB = %v, want 0.0015", stats.TotalSizeGB)
	}
}
