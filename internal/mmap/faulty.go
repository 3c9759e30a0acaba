package mmap

import (
	"errors"
	"sync"

	"github.com/hupe1980/mmapfile/internal/fs"
)

// ErrInjected is returned by FaultyPort when a fault fires without a custom error.
var ErrInjected = errors.New("mmap: injected fault")

// PortFault selects which FaultyPort calls fail.
type PortFault struct {
	FailExtend   bool
	FailMap      bool
	FailUnmap    bool
	FailSync     bool
	FailTruncate bool
	// SkipMaps lets this many Map calls succeed before FailMap applies.
	SkipMaps int
	// MapFailures limits how many Map calls fail once FailMap applies.
	// Zero means every later call fails.
	MapFailures int
	Err         error
}

// FaultyPort wraps a Port and injects failures.
type FaultyPort struct {
	Port

	mu     sync.Mutex
	fault  PortFault
	maps   int
	unmaps int
	syncs  []SyncCall
}

// SyncCall records one Sync invocation.
type SyncCall struct {
	Off, N int
	Mode   SyncMode
}

// NewFaultyPort wraps p (or Native if nil).
func NewFaultyPort(p Port) *FaultyPort {
	if p == nil {
		p = Native()
	}
	return &FaultyPort{Port: p}
}

// Set replaces the active fault.
func (p *FaultyPort) Set(f PortFault) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fault = f
	p.maps = 0
}

// Syncs returns the Sync calls seen so far.
func (p *FaultyPort) Syncs() []SyncCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SyncCall(nil), p.syncs...)
}

// Unmaps returns the number of Unmap calls seen so far.
func (p *FaultyPort) Unmaps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unmaps
}

func (p *FaultyPort) injected(op string) error {
	err := p.fault.Err
	if err == nil {
		err = ErrInjected
	}
	return &Error{Op: op, Code: CodeUnknown, Err: err}
}

func (p *FaultyPort) Extend(f fs.File, size int64) error {
	p.mu.Lock()
	fail := p.fault.FailExtend
	p.mu.Unlock()
	if fail {
		return p.injected("extend")
	}
	return p.Port.Extend(f, size)
}

func (p *FaultyPort) Map(f fs.File, size int) (*Mapping, error) {
	p.mu.Lock()
	p.maps++
	fail := p.fault.FailMap && p.maps > p.fault.SkipMaps
	if fail && p.fault.MapFailures > 0 {
		fail = p.maps <= p.fault.SkipMaps+p.fault.MapFailures
	}
	p.mu.Unlock()
	if fail {
		return nil, p.injected("mmap")
	}
	return p.Port.Map(f, size)
}

func (p *FaultyPort) Unmap(m *Mapping) error {
	p.mu.Lock()
	fail := p.fault.FailUnmap
	p.unmaps++
	p.mu.Unlock()
	// Release the memory either way so tests do not leak mappings.
	err := p.Port.Unmap(m)
	if fail {
		return p.injected("munmap")
	}
	return err
}

func (p *FaultyPort) Sync(m *Mapping, off, n int, mode SyncMode) error {
	p.mu.Lock()
	fail := p.fault.FailSync
	p.syncs = append(p.syncs, SyncCall{Off: off, N: n, Mode: mode})
	p.mu.Unlock()
	if fail {
		return p.injected("msync")
	}
	return p.Port.Sync(m, off, n, mode)
}

func (p *FaultyPort) Truncate(f fs.File, size int64) error {
	p.mu.Lock()
	fail := p.fault.FailTruncate
	p.mu.Unlock()
	if fail {
		return p.injected("truncate")
	}
	return p.Port.Truncate(f, size)
}
