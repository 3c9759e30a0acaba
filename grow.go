package mmapfile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/mmapfile/internal/growth"
	"github.com/hupe1980/mmapfile/internal/mmap"
)

// grow makes the mapping cover at least minRequired bytes.
//
// The file is extended before the old mapping is released, so a failed
// extension leaves the File untouched. If the new mapping then fails, the old
// capacity is mapped again; only when that also fails is the File poisoned.
func (f *File) grow(minRequired int64) error {
	h := f.h
	cur := h.capacity.Load()
	next := growth.Next(cur, minRequired, int64(h.port.PageSize()), f.opts.growthFactor)
	if next < minRequired || next > math.MaxInt {
		return capacityError(minRequired, cur, mmap.ErrInvalidSize)
	}

	start := time.Now()
	err := f.remap(cur, next, minRequired)
	elapsed := time.Since(start)

	f.opts.metrics.RecordGrow(cur, next, elapsed, err)
	f.logger.LogGrow(context.Background(), cur, next, elapsed, err)

	return err
}

func (f *File) remap(cur, next, minRequired int64) error {
	h := f.h
	delta := next - cur

	if err := h.rc.AcquireMapped(delta); err != nil {
		return capacityError(minRequired, cur, err)
	}

	if err := h.port.Extend(h.fh, next); err != nil {
		h.rc.ReleaseMapped(delta)
		return capacityError(minRequired, cur, err)
	}

	f.lock()
	defer f.unlock()

	if err := h.port.Unmap(h.m); err != nil {
		// The mapping is released regardless; the error only matters for
		// the address space it may leak.
		f.logger.Warn("unmap during grow failed", "error", err)
	}
	h.m = nil
	f.gen.Add(1)

	m, err := h.port.Map(h.fh, int(next))
	if err == nil {
		h.m = m
		h.capacity.Store(next)
		h.reserved += delta
		f.grows.Add(1)
		f.reapplyAdvice()
		return nil
	}

	h.rc.ReleaseMapped(delta)

	old, rerr := h.port.Map(h.fh, int(cur))
	if rerr != nil {
		f.poisoned.Store(true)
		f.logger.LogPoisoned(context.Background(), rerr)
		return &CapacityError{
			Requested: minRequired,
			Capacity:  cur,
			cause:     fmt.Errorf("%w: %w", ErrPoisoned, translateError(err)),
		}
	}

	h.m = old
	f.reapplyAdvice()
	return capacityError(minRequired, cur, err)
}

func (f *File) reapplyAdvice() {
	if f.advice == AccessDefault {
		return
	}
	if err := f.h.m.Advise(f.advice); err != nil {
		f.logger.Debug("advise after remap failed", "error", err)
	}
}
