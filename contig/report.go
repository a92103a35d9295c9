package contig

import (
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StopReason records why the trial loop ended.
type StopReason string

const (
	StopPerfect  StopReason = "perfect"  // a gap-free block was found
	StopBudget   StopReason = "budget"   // the trial budget ran out
	StopBackend  StopReason = "backend"  // raw allocation or pinning failed
	StopDenied   StopReason = "denied"   // frame numbers could not be read
	StopCanceled StopReason = "canceled" // the context was done
)

// Report describes the search behind one Allocate call.
type Report struct {
	Strategy string     `json:"strategy"`
	Size     int        `json:"size"`     // effective size in bytes
	Pages    int        `json:"pages"`    // pages per block
	Budget   int        `json:"budget"`   // trials permitted
	Trials   int        `json:"trials"`   // blocks allocated
	Rejected int        `json:"rejected"` // blocks with an incompatible gap
	Chosen   int        `json:"chosen"`   // winning trial index, -1 if none
	Gaps     int        `json:"gaps"`     // winner's gap count, -1 if none
	Stop     StopReason `json:"stop"`
	Failover bool       `json:"failover"`

	// BackendErr is the allocation or pin failure that stopped the loop, if any.
	BackendErr error `json:"-"`
}

func newReport(strategy string, size, pages, budget int) Report {
	return Report{
		Strategy: strategy,
		Size:     size,
		Pages:    pages,
		Budget:   budget,
		Chosen:   -1,
		Gaps:     -1,
		Stop:     StopBudget,
	}
}

// String renders the report for humans, with grouped digits.
func (r Report) String() string {
	p := message.NewPrinter(language.English)
	if r.Failover {
		return p.Sprintf(
			"failover %s block of %d bytes (%d pages) after %d trials, %d rejected, stop=%s",
			r.Strategy, r.Size, r.Pages, r.Trials, r.Rejected, r.Stop,
		)
	}
	if r.Chosen < 0 {
		return p.Sprintf(
			"no %s block of %d bytes found in %d of %d trials, %d rejected, stop=%s",
			r.Strategy, r.Size, r.Trials, r.Budget, r.Rejected, r.Stop,
		)
	}
	return p.Sprintf(
		"%s block of %d bytes from trial %d of %d: %d gaps over %d pages, %d rejected, stop=%s",
		r.Strategy, r.Size, r.Chosen+1, r.Trials, r.Gaps, r.Pages, r.Rejected, r.Stop,
	)
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("strategy", r.Strategy),
		slog.Int("size", r.Size),
		slog.Int("pages", r.Pages),
		slog.Int("budget", r.Budget),
		slog.Int("trials", r.Trials),
		slog.Int("rejected", r.Rejected),
		slog.Int("chosen", r.Chosen),
		slog.Int("gaps", r.Gaps),
		slog.String("stop", string(r.Stop)),
		slog.Bool("failover", r.Failover),
	}
	if r.BackendErr != nil {
		attrs = append(attrs, slog.String("backend_err", r.BackendErr.Error()))
	}
	return slog.GroupValue(attrs...)
}
