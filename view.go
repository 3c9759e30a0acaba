package mmapfile

// View is a borrowed window [Offset, Offset+Len) of the logical content.
//
// A View remembers the mapping generation it was taken from. Any grow, and
// Close, replaces the mapping; Bytes then fails with ErrStaleView or
// ErrClosed instead of handing out memory that is no longer mapped. Slices
// already returned by Bytes are not tracked and must not be used after the
// next write that may grow the File.
type View struct {
	f   *File
	off int64
	n   int64
	gen uint64
}

// View returns a View of n bytes at off. It fails with ErrBounds when the
// range exceeds Len(), even if it is inside the mapped capacity.
func (f *File) View(off, n int64) (View, error) {
	if err := f.check(); err != nil {
		return View{}, err
	}
	if err := f.inBounds(off, n); err != nil {
		return View{}, err
	}
	return View{f: f, off: off, n: n, gen: f.gen.Load()}, nil
}

// Offset returns the start of the view in the file.
func (v View) Offset() int64 { return v.off }

// Len returns the size of the view.
func (v View) Len() int64 { return v.n }

// Valid reports whether Bytes would succeed.
func (v View) Valid() bool {
	return v.check() == nil
}

func (v View) check() error {
	if v.f == nil {
		return ErrStaleView
	}
	if err := v.f.check(); err != nil {
		return err
	}
	if v.f.gen.Load() != v.gen {
		return ErrStaleView
	}
	return nil
}

// Bytes returns the mapped bytes of the view without copying. The slice
// aliases the mapping; its capacity is clipped to the view. It stays readable
// after the File is garbage collected without Close, but not after Close.
func (v View) Bytes() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	end := v.off + v.n
	return v.f.h.m.Bytes()[v.off:end:end], nil
}

// Copy returns an owned copy of the view.
func (v View) Copy() ([]byte, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadFunc calls fn with the n bytes at off. The slice is only valid inside
// fn; with WithGrowLock no grow can happen while fn runs.
func (f *File) ReadFunc(off, n int64, fn func(p []byte)) error {
	if err := f.check(); err != nil {
		return err
	}
	f.rlock()
	defer f.runlock()

	if err := f.inBounds(off, n); err != nil {
		return err
	}
	end := off + n
	fn(f.h.m.Bytes()[off:end:end])
	return nil
}

// Read returns a copy of the n bytes at off.
func (f *File) Read(off, n int64) ([]byte, error) {
	var out []byte
	err := f.ReadFunc(off, n, func(p []byte) {
		out = append([]byte(nil), p...)
	})
	return out, err
}
