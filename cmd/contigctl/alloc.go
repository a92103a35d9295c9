package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/contigmem/contig"
	"github.com/joshuapare/contigmem/internal/logger"
	"github.com/spf13/cobra"
)

var (
	allocFlags allocatorFlags
	allocSize  string
	allocHold  time.Duration
)

func init() {
	cmd := newAllocCmd()
	allocFlags.register(cmd)
	cmd.Flags().StringVar(&allocSize, "size", "256MiB", "Requested block size")
	cmd.Flags().DurationVar(&allocHold, "hold", 0, "Keep the block pinned this long before releasing it")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Allocate, report and release one pinned block",
		Long: `The alloc command searches for a cache-friendly pinned block, reports how
good the chosen block is, then releases it.

Example:
  sudo contigctl alloc
  sudo contigctl alloc --size 64MiB --strategy mmap --json
  sudo contigctl alloc --granularity 2MiB --align 2MiB --hold 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(cmd.Context())
		},
	}
	return cmd
}

type allocResult struct {
	Addr     string        `json:"addr"`
	Size     int           `json:"size"`
	Failover bool          `json:"failover"`
	Report   contig.Report `json:"report"`
	Released bool          `json:"released"`
}

func runAlloc(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	size, err := parseSize(allocSize)
	if err != nil {
		return fmt.Errorf("--size: %w", err)
	}
	opts, err := allocFlags.options()
	if err != nil {
		return err
	}

	a, err := contig.New(opts)
	if err != nil {
		return err
	}
	logger.Debug("allocator ready",
		"strategy", a.Strategy().Name(),
		"page_size", a.PageSize(),
		"factor", a.Factor(),
		"size", size)

	printVerbose("Searching for a %s block (%s strategy, %s granularity)\n",
		formatSize(size), opts.Strategy, formatSize(opts.CacheGranularity))

	start := time.Now()
	blk, err := a.Allocate(ctx, size)
	if err != nil {
		logger.Error("allocation failed", "size", size, "err", err)
		if errors.Is(err, contig.ErrPermissionDenied) {
			return fmt.Errorf("failed to allocate a cache-friendly memory block: %w (needs CAP_SYS_ADMIN)", err)
		}
		return fmt.Errorf("failed to allocate a cache-friendly memory block: %w", err)
	}
	elapsed := time.Since(start)

	res := allocResult{
		Addr:     fmt.Sprintf("%#x", blk.Addr()),
		Size:     blk.Size(),
		Failover: blk.Failover(),
		Report:   blk.Report(),
	}
	if res.Failover {
		logger.Warn("no cache-friendly block found, holding a failover block", "addr", res.Addr)
	}

	if !jsonOut {
		printInfo("\nBlock:\n")
		printInfo("  Address: %s\n", res.Addr)
		printInfo("  Size: %s (%d pages)\n", formatSize(res.Size), res.Report.Pages)
		printInfo("  %s\n", res.Report)
		printVerbose("  Search took %s\n", elapsed.Round(time.Millisecond))
	}

	if allocHold > 0 {
		printVerbose("Holding block for %s\n", allocHold)
		select {
		case <-time.After(allocHold):
		case <-ctx.Done():
		}
	}

	if err := a.Release(blk); err != nil {
		return fmt.Errorf("trouble freeing memory: %w", err)
	}
	res.Released = true
	logger.Info("block released", "addr", res.Addr, "size", res.Size)

	if jsonOut {
		return printJSON(res)
	}
	printInfo("  Released\n")
	return nil
}
