// Package diag collects the data-quality findings of a build, fit or
// optimization pass. Findings never abort a pass; they are returned to the
// caller and logged as they are recorded.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Kind classifies a finding.
type Kind int

const (
	// InputDefect is malformed configuration: a bad address prefix,
	// missing metadata, an empty node list.
	InputDefect Kind = iota
	// ResolutionFailure is a bone or container that could not be found.
	ResolutionFailure
	// GeometricFailure is a node no surface ray could reach.
	GeometricFailure
	// AssetMissing is an absent visual asset or component.
	AssetMissing
)

var kindNames = []string{"input_defect", "resolution_failure", "geometric_failure", "asset_missing"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	for i, n := range kindNames {
		if n == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("diag: unknown kind %q", text)
}

// Severity mirrors the log level the entry was written at.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return fmt.Errorf("diag: unknown severity %q", text)
	}
	return nil
}

func (s Severity) level() slog.Level {
	switch s {
	case Info:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Entry is one finding about one subject (a node, bone or container name).
type Entry struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s: %s", e.Severity, e.Kind, e.Subject, e.Message)
}

// Report accumulates entries. A nil logger falls back to slog.Default.
type Report struct {
	Entries []Entry `json:"entries"`
	log     *slog.Logger
}

// NewReport returns an empty report logging through log.
func NewReport(log *slog.Logger) *Report {
	if log == nil {
		log = slog.Default()
	}
	return &Report{log: log}
}

// Add records and logs one entry.
func (r *Report) Add(kind Kind, sev Severity, subject, format string, args ...any) {
	e := Entry{Kind: kind, Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)}
	r.Entries = append(r.Entries, e)
	if r.log == nil {
		r.log = slog.Default()
	}
	r.log.Log(context.Background(), sev.level(), e.Message, "kind", kind.String(), "subject", subject)
}

// Warn records a Warning entry.
func (r *Report) Warn(kind Kind, subject, format string, args ...any) {
	r.Add(kind, Warning, subject, format, args...)
}

// Error records an Error entry.
func (r *Report) Error(kind Kind, subject, format string, args ...any) {
	r.Add(kind, Error, subject, format, args...)
}

// Merge appends the entries of other without logging them again.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Entries = append(r.Entries, other.Entries...)
}

// Count returns how many entries have the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, e := range r.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the entries of the given kind.
func (r *Report) Filter(kind Kind) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether any entry is at Error severity.
func (r *Report) HasErrors() bool {
	for _, e := range r.Entries {
		if e.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (r *Report) Len() int { return len(r.Entries) }

func (r *Report) String() string {
	var sb strings.Builder
	for _, e := range r.Entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
