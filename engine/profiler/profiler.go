package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

const bytesPerMB = 1024 * 1024

// Stats is one profiling sample covering the interval since the previous sample.
type Stats struct {
	FPS          float64
	FrameTime    time.Duration // mean frame time over the interval
	HeapMB       float64
	AllocRateMB  float64 // MB allocated per second
	GCCount      uint32
	LastPause    time.Duration
	MaxPause     time.Duration
	SysMB        float64
	SampledAt    time.Time
	FramesInSpan int
}

// Profiler tracks frame rate and memory statistics for the render loop.
// Samples are logged at a fixed interval and the latest one is kept for status displays.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	logger         *slog.Logger
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and samples go to the default slog logger.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		mu:             &sync.Mutex{},
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often samples are taken. Non-positive values are ignored.
func (p *Profiler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateInterval = d
}

// SetLogger routes samples to l instead of slog.Default.
func (p *Profiler) SetLogger(l *slog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = l
}

// Last returns the most recent sample, zero before the first interval elapses.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs a sample when the update interval has elapsed: FPS, mean frame time, heap usage,
// allocation rate, GC count and pause times, and total memory.
//
// Returns:
//   - bool: true if a sample was taken this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:    elapsed / time.Duration(p.frameCount),
		HeapMB:       float64(p.memStats.Alloc) / bytesPerMB,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / bytesPerMB / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
		SysMB:        float64(p.memStats.Sys) / bytesPerMB,
		SampledAt:    now,
		FramesInSpan: p.frameCount,
	}
	s.LastPause, s.MaxPause = pauses(&p.memStats, p.lastGCCount)

	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("profiler",
		"fps", s.FPS,
		"frame_time", s.FrameTime,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_pause", s.LastPause,
		"gc_max_pause", s.MaxPause,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// pauses returns the latest GC pause and the longest pause among collections numbered since or later.
// PauseNs is a circular buffer of the last 256 pauses.
func pauses(m *runtime.MemStats, since uint32) (last, longest time.Duration) {
	n := m.NumGC
	if n == 0 {
		return 0, 0
	}
	last = time.Duration(m.PauseNs[(n-1)%256])

	start := since
	if n-start > 256 {
		start = n - 256
	}
	for i := start; i < n; i++ {
		if d := time.Duration(m.PauseNs[i%256]); d > longest {
			longest = d
		}
	}
	return last, longest
}
