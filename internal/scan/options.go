package scan

import (
	"time"

	"github.com/trovescan/trove/internal/report"
)

// Options configures a scan. Supplied once per scan and treated as
// read-only afterward.
type Options struct {
	// Roots are the directories to traverse. At least one is required.
	Roots []string

	// DaysBack restricts matches to files modified within the last N days.
	// Zero disables the relative cutoff.
	DaysBack int

	// DateFrom and DateTo restrict matches to an explicit inclusive range.
	// When either is set, the explicit range takes precedence over DaysBack.
	DateFrom time.Time
	DateTo   time.Time

	// UseRecommendedExclusions enables the OS cache/trash/library lists.
	UseRecommendedExclusions bool

	// CustomExclusions are user-supplied patterns matched per entry.
	CustomExclusions []string

	// Throttle inserts a pause between directory entries for IO-nice
	// background scans. Zero disables pacing.
	Throttle time.Duration

	// Timeouts for the three filesystem operations a walk performs.
	ListTimeout     time.Duration
	DirStatTimeout  time.Duration
	FileStatTimeout time.Duration

	// Reporter thresholds.
	ProgressInterval time.Duration
	FlushInterval    time.Duration
	BatchSize        int
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *Options {
	return &Options{
		ListTimeout:      5 * time.Second,
		DirStatTimeout:   500 * time.Millisecond,
		FileStatTimeout:  time.Second,
		ProgressInterval: report.DefaultProgressInterval,
		FlushInterval:    report.DefaultFlushInterval,
		BatchSize:        report.DefaultBatchSize,
	}
}

// WithRoots sets the directories to scan.
func (o *Options) WithRoots(roots ...string) *Options {
	o.Roots = roots
	return o
}

// WithDaysBack sets a relative modification-time cutoff.
func (o *Options) WithDaysBack(days int) *Options {
	o.DaysBack = days
	return o
}

// WithDateRange sets an explicit inclusive modification-time range. Either
// bound may be zero to leave that side open.
func (o *Options) WithDateRange(from, to time.Time) *Options {
	o.DateFrom = from
	o.DateTo = to
	return o
}

// WithRecommendedExclusions toggles the system exclusion lists.
func (o *Options) WithRecommendedExclusions(on bool) *Options {
	o.UseRecommendedExclusions = on
	return o
}

// WithCustomExclusions sets user exclusion patterns.
func (o *Options) WithCustomExclusions(patterns ...string) *Options {
	o.CustomExclusions = patterns
	return o
}

// WithThrottle sets the per-entry pacing delay.
func (o *Options) WithThrottle(d time.Duration) *Options {
	o.Throttle = d
	return o
}

// timeFilter is the resolved modification-time window of a scan. A zero
// bound leaves that side open.
type timeFilter struct {
	from time.Time
	to   time.Time
}

// timeFilterFrom resolves the options into a filter, or nil when no time
// filter is requested.
func timeFilterFrom(o *Options, now time.Time) *timeFilter {
	if !o.DateFrom.IsZero() || !o.DateTo.IsZero() {
		return &timeFilter{from: o.DateFrom, to: o.DateTo}
	}
	if o.DaysBack > 0 {
		return &timeFilter{from: now.AddDate(0, 0, -o.DaysBack)}
	}
	return nil
}

func (f *timeFilter) contains(t time.Time) bool {
	if !f.from.IsZero() && t.Before(f.from) {
		return false
	}
	if !f.to.IsZero() && t.After(f.to) {
		return false
	}
	return true
}
