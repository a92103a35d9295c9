package main

import (
	"errors"
	"fmt"

	"github.com/joshuapare/contigmem/contig"
	"github.com/spf13/cobra"
)

var probeFlags allocatorFlags

func init() {
	cmd := newProbeCmd()
	probeFlags.register(cmd)
	rootCmd.AddCommand(cmd)
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check whether physical frame numbers can be read",
		Long: `The probe command allocates one page, touches it and reads its physical
frame number from the frame map. It fails when the process lacks the
privilege to read frame numbers.

Example:
  contigctl probe
  sudo contigctl probe --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe()
		},
	}
	return cmd
}

type probeResult struct {
	Available bool   `json:"available"`
	Frame     string `json:"frame,omitempty"`
	PageSize  int    `json:"page_size"`
	Factor    uint32 `json:"cache_friendly_factor"`
	Reason    string `json:"reason,omitempty"`
}

func runProbe() error {
	opts, err := probeFlags.options()
	if err != nil {
		return err
	}
	a, err := contig.New(opts)
	if err != nil {
		return err
	}

	res := probeResult{PageSize: a.PageSize(), Factor: a.Factor()}
	frame, perr := a.Probe()
	if perr != nil && !errors.Is(perr, contig.ErrPermissionDenied) {
		return fmt.Errorf("probe failed: %w", perr)
	}
	res.Available = perr == nil
	if perr != nil {
		res.Reason = perr.Error()
	} else {
		res.Frame = fmt.Sprintf("%#x", frame)
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nFrame Inspection:\n")
	printInfo("  Page size: %d\n", res.PageSize)
	printInfo("  Cache-friendly mask: %#x\n", res.Factor)
	if res.Available {
		printInfo("  ✓ Available (probe page at frame %s)\n", res.Frame)
		return nil
	}
	printInfo("  ✗ Unavailable: %s\n", res.Reason)
	printInfo("  Run with CAP_SYS_ADMIN (e.g. sudo) to read frame numbers.\n")
	return nil
}
