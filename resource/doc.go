// Package resource shares limits between mapped files.
//
// A [Controller] enforces a budget on the total number of bytes mapped by all
// files that use it (so a runaway writer fails with a capacity error instead
// of exhausting the address space) and throttles flush and archive IO.
//
//	rc := resource.NewController(resource.Config{
//	    MappedLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	f, err := mmapfile.Open(path, mmapfile.CreateIfMissing, mmapfile.WithResourceController(rc))
package resource
