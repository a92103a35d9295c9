package main

import (
	"fmt"

	"github.com/joshuapare/contigmem/contig"
	"github.com/joshuapare/contigmem/internal/pagemap"
	"github.com/spf13/cobra"
)

// allocatorFlags carries the flags shared by commands that build an allocator.
type allocatorFlags struct {
	strategy    string
	granularity string
	align       string
	maxAttempts int
	failover    bool
	pagemap     string
}

func (f *allocatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", "heap", "Raw allocation strategy: heap or mmap")
	cmd.Flags().StringVar(&f.granularity, "granularity", "1MiB", "Cache granularity, a power of two")
	cmd.Flags().StringVar(&f.align, "align", "2MiB", "Heap block alignment, at least the granularity")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", contig.DefaultMaxAttempts, "Hard cap on trial blocks")
	cmd.Flags().BoolVar(&f.failover, "failover", false, "Fall back to an ordinary pinned block")
	cmd.Flags().StringVar(&f.pagemap, "pagemap", pagemap.DefaultPath, "Frame map to read")
}

func (f *allocatorFlags) options() (contig.Options, error) {
	opts := contig.DefaultOptions()

	kind, err := contig.ParseStrategy(f.strategy)
	if err != nil {
		return opts, err
	}
	gran, err := parseSize(f.granularity)
	if err != nil {
		return opts, fmt.Errorf("--granularity: %w", err)
	}
	align, err := parseSize(f.align)
	if err != nil {
		return opts, fmt.Errorf("--align: %w", err)
	}

	opts.Strategy = kind
	opts.CacheGranularity = gran
	opts.BlockAlign = align
	opts.MaxAttempts = f.maxAttempts
	opts.Failover = f.failover
	opts.PagemapPath = f.pagemap
	opts.Report = verbose
	opts.OnFatal = func(err error) {
		printError("%v\n", err)
		exit(1)
	}
	return opts, opts.Validate()
}
