package mmapfile

import (
	"context"
	"time"
)

// Flush pushes the dirty pages to the backing file.
//
// FlushBlocking returns once the platform reports the pages durable and then
// clears Dirty. FlushAsync only schedules write-back and keeps Dirty set until
// a later blocking flush or Close.
//
// With a resource controller, flushed bytes are charged against its IO limit.
func (f *File) Flush(mode FlushMode) error {
	if err := f.check(); err != nil {
		return err
	}
	if f.dirty.Empty() {
		return nil
	}

	start := time.Now()
	n, err := f.sync(mode)
	elapsed := time.Since(start)

	f.opts.metrics.RecordFlush(mode, n, elapsed, err)
	f.logger.LogFlush(context.Background(), mode, n, err)

	return err
}

// sync syncs every dirty run and returns the bytes handed to the platform.
func (f *File) sync(mode FlushMode) (int64, error) {
	h := f.h
	var synced int64

	f.rlock()
	defer f.runlock()

	for _, run := range f.dirty.Runs(h.capacity.Load()) {
		if err := h.rc.AcquireIO(context.Background(), int(run.Len)); err != nil {
			return synced, ioError("flush", f.path, err)
		}
		if err := h.port.Sync(h.m, int(run.Off), int(run.Len), mode.syncMode()); err != nil {
			return synced, ioError("flush", f.path, err)
		}
		synced += run.Len
	}

	if mode == FlushBlocking {
		f.dirty.Reset()
	}
	return synced, nil
}
