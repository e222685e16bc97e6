// Package telemetry aggregates per-frame simulation counters into fixed
// windows and writes them as CSV.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameSample is what one simulation step reports.
type FrameSample struct {
	Frame    int
	Bullets  int // Live at frame end
	Sparks   int // Live at frame end
	Fired    int // Pairs fired this frame
	Expired  int
	Impacted int
}

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStart int     `csv:"-"`
	WindowEnd   int     `csv:"window_end"`
	SimTimeSec  float64 `csv:"sim_time"`
	Frames      int     `csv:"frames"`

	// Events during window
	PairsFired int     `csv:"pairs_fired"`
	Expired    int     `csv:"expired"`
	Impacted   int     `csv:"impacted"`
	ImpactRate float64 `csv:"impact_rate"` // Impacted / (expired + impacted)

	// Live populations over the window
	BulletsMean float64 `csv:"bullets_mean"`
	BulletsStd  float64 `csv:"bullets_std"`
	BulletsMax  float64 `csv:"bullets_max"`
	SparksMean  float64 `csv:"sparks_mean"`
	SparksStd   float64 `csv:"sparks_std"`
	SparksMax   float64 `csv:"sparks_max"`
}

// Collector accumulates frame samples and produces WindowStats.
type Collector struct {
	windowFrames int
	dt           float64

	windowStart int
	lastFrame   int

	fired    int
	expired  int
	impacted int
	bullets  []float64
	sparks   []float64
}

// NewCollector creates a collector that flushes every windowFrames frames of
// dt seconds each.
func NewCollector(windowFrames int, dt float64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: windowFrames,
		dt:           dt,
		bullets:      make([]float64, 0, windowFrames),
		sparks:       make([]float64, 0, windowFrames),
	}
}

// Record adds one frame to the current window.
func (c *Collector) Record(s FrameSample) {
	if len(c.bullets) == 0 {
		c.windowStart = s.Frame
	}
	c.lastFrame = s.Frame
	c.fired += s.Fired
	c.expired += s.Expired
	c.impacted += s.Impacted
	c.bullets = append(c.bullets, float64(s.Bullets))
	c.sparks = append(c.sparks, float64(s.Sparks))
}

// ShouldFlush returns true once the window is full.
func (c *Collector) ShouldFlush() bool {
	return len(c.bullets) >= c.windowFrames
}

// Pending returns the number of frames recorded since the last flush.
func (c *Collector) Pending() int {
	return len(c.bullets)
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush() WindowStats {
	ws := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   c.lastFrame,
		SimTimeSec:  float64(c.lastFrame+1) * c.dt,
		Frames:      len(c.bullets),
		PairsFired:  c.fired,
		Expired:     c.expired,
		Impacted:    c.impacted,
	}
	if n := c.expired + c.impacted; n > 0 {
		ws.ImpactRate = float64(c.impacted) / float64(n)
	}
	ws.BulletsMean, ws.BulletsStd, ws.BulletsMax = summarize(c.bullets)
	ws.SparksMean, ws.SparksStd, ws.SparksMax = summarize(c.sparks)

	c.fired, c.expired, c.impacted = 0, 0, 0
	c.bullets = c.bullets[:0]
	c.sparks = c.sparks[:0]
	return ws
}

// summarize returns mean, sample standard deviation and max. Fewer than two
// samples have no spread.
func summarize(xs []float64) (mean, std, max float64) {
	switch len(xs) {
	case 0:
		return 0, 0, 0
	case 1:
		return xs[0], 0, xs[0]
	}
	mean, std = stat.MeanStdDev(xs, nil)
	return mean, std, floats.Max(xs)
}
