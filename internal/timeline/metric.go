// Package timeline maintains bounded sliding-window time series of
// per-process resource metrics across repeated snapshots.
package timeline

import (
	"math"

	"github.com/dshills/procscope/internal/snapshot"
)

// Metric identifies one tracked resource counter.
type Metric int

// Tracked metrics, in chart order.
const (
	MetricCPU Metric = iota
	MetricMemory
	MetricDiskRead
	MetricDiskWrite
	MetricNetRecv
	MetricNetSent
	MetricGPU

	metricCount
)

// MetricCount is the number of tracked metrics.
const MetricCount = int(metricCount)

// Metrics returns all tracked metrics in chart order.
func Metrics() []Metric {
	m := make([]Metric, MetricCount)
	for i := range m {
		m[i] = Metric(i)
	}
	return m
}

// String returns the display label of the metric.
func (m Metric) String() string {
	switch m {
	case MetricCPU:
		return "CPU %"
	case MetricMemory:
		return "Memory"
	case MetricDiskRead:
		return "Disk Read"
	case MetricDiskWrite:
		return "Disk Write"
	case MetricNetRecv:
		return "Net Recv"
	case MetricNetSent:
		return "Net Sent"
	case MetricGPU:
		return "GPU %"
	default:
		return "Unknown"
	}
}

// Percentage reports whether the metric is a percentage rather than a
// byte counter.
func (m Metric) Percentage() bool {
	return m == MetricCPU || m == MetricGPU
}

// valueOf extracts the metric's value from a snapshot entry.
func (m Metric) valueOf(e snapshot.Entry) float64 {
	switch m {
	case MetricCPU:
		return e.CPUPercent
	case MetricMemory:
		return float64(e.MemoryRSS)
	case MetricDiskRead:
		return float64(e.DiskReadBytes)
	case MetricDiskWrite:
		return float64(e.DiskWriteBytes)
	case MetricNetRecv:
		return float64(e.NetRecvBytes)
	case MetricNetSent:
		return float64(e.NetSentBytes)
	case MetricGPU:
		return e.GPUPercent
	default:
		return math.NaN()
	}
}
