package controller

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/invisible-tech/aicompliance/internal/randutil"
)

// HostSampler reads real CPU and memory utilisation in percent.
type HostSampler interface {
	Sample(ctx context.Context) (cpuPercent, memPercent float64, err error)
}

// GopsutilSampler samples the local host with gopsutil.
type GopsutilSampler struct{}

// Sample implements HostSampler.
func (GopsutilSampler) Sample(ctx context.Context) (float64, float64, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read cpu: %w", err)
	}
	if len(cpuPercents) == 0 {
		return 0, 0, fmt.Errorf("no cpu readings")
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read memory: %w", err)
	}
	return cpuPercents[0], vm.UsedPercent, nil
}

// updateMetrics applies one perturbation step to the system metrics and the
// digital twin. Host readings, when configured, replace the CPU and memory walk.
func (c *Controller) updateMetrics(ctx context.Context) {
	var (
		hostCPU, hostMem float64
		sampled          bool
	)
	if c.sampler != nil {
		var err error
		hostCPU, hostMem, err = c.sampler.Sample(ctx)
		if err != nil {
			c.log.WithError(err).Debug("Host sampling failed, using simulated metrics")
		} else {
			sampled = true
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	r, m, t := c.rng, &c.metrics, &c.twin

	if sampled {
		m.CPUUsage = hostCPU
		m.MemoryUsage = hostMem
	} else {
		m.CPUUsage = randutil.Clamp(m.CPUUsage+randutil.Uniform(r, -5, 5), 10, 90)
		m.MemoryUsage = randutil.Clamp(m.MemoryUsage+randutil.Uniform(r, -2, 2), 20, 95)
	}
	m.NetworkTraffic = max(100, m.NetworkTraffic+randutil.Uniform(r, -100, 100))
	m.ActiveConnections = max(100, m.ActiveConnections+randutil.IntBetween(r, -25, 25))

	t.ApplicationHealth = randutil.Clamp(t.ApplicationHealth+randutil.Uniform(r, -1, 1), 70, 100)
	t.ResponseTime = randutil.Clamp(t.ResponseTime+randutil.Uniform(r, -10, 10), 50, 500)
	t.ErrorRate = randutil.Clamp(t.ErrorRate+randutil.Uniform(r, -0.01, 0.01), 0, 5)
	t.Throughput = max(500, t.Throughput+randutil.Uniform(r, -50, 50))
}
