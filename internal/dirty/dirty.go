// Package dirty tracks which pages of a mapping were written since the last
// durable flush.
//
// Pages are kept in a roaring bitmap indexed by page number, so a flush can
// sync only the touched runs instead of the whole mapping. Page indexes are
// 32-bit, which bounds a tracked mapping to 2^32 pages.
package dirty

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Run is a contiguous, page-aligned byte range.
type Run struct {
	Off int64
	Len int64
}

// Tracker records dirty pages.
type Tracker struct {
	pageSize int64
	pages    *roaring.Bitmap
}

// New returns an empty tracker for the given page size.
func New(pageSize int) *Tracker {
	if pageSize <= 0 {
		panic("dirty: page size must be positive")
	}
	return &Tracker{
		pageSize: int64(pageSize),
		pages:    roaring.New(),
	}
}

// Mark records that bytes [off, off+n) were modified.
func (t *Tracker) Mark(off, n int64) {
	if n <= 0 || off < 0 {
		return
	}
	first := off / t.pageSize
	last := (off + n - 1) / t.pageSize
	t.pages.AddRange(uint64(first), uint64(last)+1)
}

// Empty reports whether no page is dirty.
func (t *Tracker) Empty() bool {
	return t.pages.IsEmpty()
}

// Pages returns the number of dirty pages.
func (t *Tracker) Pages() uint64 {
	return t.pages.GetCardinality()
}

// Runs returns the dirty pages coalesced into ranges, clipped to limit bytes.
func (t *Tracker) Runs(limit int64) []Run {
	var runs []Run
	it := t.pages.Iterator()
	for it.HasNext() {
		p := int64(it.Next())
		off := p * t.pageSize
		if off >= limit {
			break
		}
		n := t.pageSize
		if off+n > limit {
			n = limit - off
		}
		if k := len(runs); k > 0 && runs[k-1].Off+runs[k-1].Len == off {
			runs[k-1].Len += n
			continue
		}
		runs = append(runs, Run{Off: off, Len: n})
	}
	return runs
}

// Bytes returns the number of dirty bytes before limit.
func (t *Tracker) Bytes(limit int64) int64 {
	var total int64
	for _, r := range t.Runs(limit) {
		total += r.Len
	}
	return total
}

// Reset forgets all dirty pages.
func (t *Tracker) Reset() {
	t.pages.Clear()
}
