/*
Package physmem provides a process-wide allocator for pinned,
cache-friendly memory blocks.

# Quick Start

	blk, err := physmem.Allocate(256 << 20)
	if err != nil {
	    log.Fatal(err)
	}
	defer physmem.Free(blk)

The first call builds a contig.Allocator from contig.DefaultOptions (or from
the options passed to Configure) and keeps it for the life of the process.
Calls are serialized, so concurrent callers wait for each other; every call
is slow and meant for start-up.
*/
package physmem
