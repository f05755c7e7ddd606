// Package telemetrytest provides a telemetry.API that records reports so tests
// can assert on them.
package telemetrytest

import (
	"strings"
	"sync"
)

type Kind int

const (
	KindBroken Kind = iota
	KindWarning
	KindDebug
	KindCount
)

type Report struct {
	Kind   Kind
	ID     string
	Params []any
	Count  int64
}

type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Report{Kind: KindBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Report{Kind: KindWarning, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Report{Kind: KindDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Report{Kind: KindCount, ID: id, Count: count})
}

func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Find returns every report of the given kind whose id contains substr.
func (r *Recorder) Find(kind Kind, substr string) []Report {
	var out []Report
	for _, report := range r.Reports() {
		if report.Kind == kind && strings.Contains(report.ID, substr) {
			out = append(out, report)
		}
	}
	return out
}
