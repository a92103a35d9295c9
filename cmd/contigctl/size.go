package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// parseSize parses byte sizes such as "4096", "64KiB", "1MiB" or "2GiB".
// IEC suffixes (KiB, MiB, GiB) are powers of 1024; SI suffixes (kB, MB, k, M)
// are powers of 1000. Suffixes are case-insensitive.
func parseSize(s string) (int, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0, fmt.Errorf("empty size")
	}
	n, err := humanize.ParseBytes(str)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(n), nil
}

// formatSize renders n bytes in IEC units, e.g. "256 MiB".
func formatSize(n int) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}
	return humanize.IBytes(uint64(n))
}
