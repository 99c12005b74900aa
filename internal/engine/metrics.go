package engine

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
	"go-data-processor/internal/store"
)

const defaultRefreshInterval = 10 * time.Second

// Metrics maintains the service-wide SystemMetrics snapshot. A background
// ticker refreshes uptime and the resource gauges; the executor feeds job
// totals as attempts finish. Readers always get an internally consistent
// copy.
type Metrics struct {
	mu   sync.RWMutex
	snap model.SystemMetrics

	totalDurationMs float64
	finishedJobs    uint64
	completedJobs   uint64
	failedJobs      uint64

	registry *store.JobRegistry
	start    time.Time
	interval time.Duration
	log      *logrus.Entry
	stop     chan struct{}
	done     chan struct{}
}

// NewMetrics builds an aggregator refreshing on the given interval;
// interval <= 0 selects the 10 second default.
func NewMetrics(registry *store.JobRegistry, interval time.Duration) *Metrics {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Metrics{
		registry: registry,
		start:    time.Now(),
		interval: interval,
		log:      logrus.WithField("component", "metrics"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop.
func (m *Metrics) Start() {
	m.refresh()
	go m.loop()
}

// Stop terminates the refresh loop. Safe for test teardown.
func (m *Metrics) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Metrics) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.refresh()
		}
	}
}

func (m *Metrics) refresh() {
	gauges := sampleGauges(m.log)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.UptimeSeconds = uint64(time.Since(m.start).Seconds())
	m.snap.ActiveJobs = m.registry.ActiveJobs()
	if gauges.ok {
		m.snap.CPUUsage = gauges.cpu
		m.snap.MemoryUsage = gauges.memory
		m.snap.DiskUsage = gauges.disk
	}
}

// RecordJob folds one finished execution attempt into the running totals.
func (m *Metrics) RecordJob(elapsed time.Duration, records int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishedJobs++
	if ok {
		m.completedJobs++
		m.snap.TotalRecordsProcessed += uint64(records)
		m.totalDurationMs += float64(elapsed.Milliseconds())
	} else {
		m.failedJobs++
	}
	// The mean covers completed jobs only; failures contribute no duration
	// and must not dilute it.
	if m.completedJobs > 0 {
		m.snap.AverageProcessingTimeMs = m.totalDurationMs / float64(m.completedJobs)
	}
	m.snap.ErrorRate = float64(m.failedJobs) / float64(m.finishedJobs)
	m.snap.ActiveJobs = m.registry.ActiveJobs()
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() model.SystemMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := m.snap
	snap.UptimeSeconds = uint64(time.Since(m.start).Seconds())
	snap.ActiveJobs = m.registry.ActiveJobs()
	return snap
}

type resourceGauges struct {
	cpu, memory, disk float64
	ok                bool
}

// sampleGauges reads process-host resource usage. A failed sample keeps the
// previous gauge values rather than zeroing them.
func sampleGauges(log *logrus.Entry) resourceGauges {
	var g resourceGauges

	cpuPercents, err := cpu.Percent(0, false)
	if err != nil || len(cpuPercents) == 0 {
		log.WithField("error", err).Debug("cpu sample failed")
		return g
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.WithField("error", err).Debug("memory sample failed")
		return g
	}
	du, err := disk.Usage(".")
	if err != nil {
		log.WithField("error", err).Debug("disk sample failed")
		return g
	}

	g.cpu = cpuPercents[0]
	g.memory = vm.UsedPercent
	g.disk = du.UsedPercent
	g.ok = true
	return g
}
