package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests    uint64
	errorRequests    uint64
	rateLimited      uint64
	totalDurationMs  uint64
	sweepsRun        uint64
	pipsCreated      uint64
	terminationsDone uint64
	policyRejections uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) SweepRun()        { atomic.AddUint64(&c.sweepsRun, 1) }
func (c *Collector) PipCreated()      { atomic.AddUint64(&c.pipsCreated, 1) }
func (c *Collector) Termination()     { atomic.AddUint64(&c.terminationsDone, 1) }
func (c *Collector) PolicyRejection() { atomic.AddUint64(&c.policyRejections, 1) }

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":  atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":     avg,
		"sweepsTotal":       atomic.LoadUint64(&c.sweepsRun),
		"pipsCreatedTotal":  atomic.LoadUint64(&c.pipsCreated),
		"terminationsTotal": atomic.LoadUint64(&c.terminationsDone),
		"policyRejections":  atomic.LoadUint64(&c.policyRejections),
	}
}
