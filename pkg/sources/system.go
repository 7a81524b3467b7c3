package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemStats is the host health payload for the system widget.
type SystemStats struct {
	CPUPercent  float64       `json:"cpuPercent"`
	MemPercent  float64       `json:"memPercent"`
	MemUsedMB   uint64        `json:"memUsedMB"`
	MemTotalMB  uint64        `json:"memTotalMB"`
	DiskPercent float64       `json:"diskPercent"`
	Uptime      time.Duration `json:"uptime"`
}

// SystemSource samples local CPU, memory, and disk usage. It implements
// Source.
type SystemSource struct {
	interval time.Duration
}

// NewSystemSource builds a system metrics source.
func NewSystemSource(interval time.Duration) *SystemSource {
	return &SystemSource{interval: interval}
}

func (s *SystemSource) Name() string            { return "system" }
func (s *SystemSource) Interval() time.Duration { return s.interval }

// Fetch samples the host once. CPU sampling blocks for one second to get a
// meaningful utilization delta.
func (s *SystemSource) Fetch(ctx context.Context) (interface{}, error) {
	stats := SystemStats{}

	cpus, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("system: cpu sample: %w", err)
	}
	if len(cpus) > 0 {
		stats.CPUPercent = cpus[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("system: memory sample: %w", err)
	}
	stats.MemPercent = vm.UsedPercent
	stats.MemUsedMB = vm.Used / (1024 * 1024)
	stats.MemTotalMB = vm.Total / (1024 * 1024)

	du, err := disk.UsageWithContext(ctx, "/")
	if err == nil {
		stats.DiskPercent = du.UsedPercent
	}

	uptime, err := host.UptimeWithContext(ctx)
	if err == nil {
		stats.Uptime = time.Duration(uptime) * time.Second
	}

	return stats, nil
}
