package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMappedLimitExceeded is returned when a mapping would exceed the mapped-bytes budget.
var ErrMappedLimitExceeded = errors.New("mapped bytes limit exceeded")

// Config holds resource limits.
type Config struct {
	// MappedLimitBytes is the hard limit for bytes mapped across all files
	// sharing this controller. If 0, no hard limit is enforced (only tracking).
	MappedLimitBytes int64

	// IOLimitBytesPerSec is the maximum throughput for flushes and archive
	// transfers. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared between mapped files.
// A nil *Controller is valid and imposes no limits.
type Controller struct {
	cfg Config

	// Mapped address space
	mappedSem  *semaphore.Weighted // nil if unlimited
	mappedUsed atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MappedLimitBytes > 0 {
		c.mappedSem = semaphore.NewWeighted(cfg.MappedLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMapped attempts to reserve mapped bytes.
// Returns ErrMappedLimitExceeded if the limit would be exceeded.
// Non-blocking: a grow either fits the budget now or fails.
func (c *Controller) AcquireMapped(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.mappedSem != nil {
		if !c.mappedSem.TryAcquire(bytes) {
			return ErrMappedLimitExceeded
		}
	}

	c.mappedUsed.Add(bytes)
	return nil
}

// ReleaseMapped returns mapped bytes to the budget.
func (c *Controller) ReleaseMapped(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.mappedSem != nil {
		c.mappedSem.Release(bytes)
	}
	c.mappedUsed.Add(-bytes)
}

// MappedUsage returns the bytes currently mapped under this controller.
func (c *Controller) MappedUsage() int64 {
	if c == nil {
		return 0
	}
	return c.mappedUsed.Load()
}

// MappedLimit returns the configured limit in bytes (0 if unlimited).
func (c *Controller) MappedLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MappedLimitBytes
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the limiter burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
