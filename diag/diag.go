// Package diag accumulates validation diagnostics. A Sink is a passive,
// append-only log: it does not format or print anything, and it never
// aborts the caller. A separate renderer (the CLI) turns a Sink's entries
// into user-visible output.
package diag

import (
	"fmt"
	"sync"
)

// Kind classifies why a diagnostic was raised. The set is closed; callers
// should switch exhaustively over it rather than compare Message strings.
type Kind string

const (
	Structural      Kind = "structural"      // fields overlap, out-of-range constants
	Reference       Kind = "reference"       // unknown name
	Shape           Kind = "shape"           // width mismatch, indexed access of non-file
	Conflict        Kind = "conflict"        // encoding collision
	Semantic        Kind = "semantic"        // instruction missing behavior
	Interpretability Kind = "interpretability" // RTL failed the dry-run
	AliasCycle      Kind = "alias-cycle"     // alias chain revisits a name
)

// Diagnostic is one accumulated finding. Once recorded it is immutable.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Location string // e.g. "instruction ADD", "format R_TYPE"
}

// String renders a diagnostic as "location: message", matching how the
// original validator's location-tagged errors read on one line.
func (d Diagnostic) String() string {
	if d.Location == "" {
		return d.Message
	}
	return d.Location + ": " + d.Message
}

// Sink is a mutex-guarded, append-only collector of diagnostics. Create one
// per validation run with New; it is safe for concurrent recording but is
// not meant to be shared across independent validations of different specs.
type Sink struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// New returns an empty Sink ready to record diagnostics.
func New() *Sink {
	return &Sink{}
}

// Add records a diagnostic in insertion order.
func (s *Sink) Add(kind Kind, location, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Diagnostic{Kind: kind, Message: message, Location: location})
}

// Addf is Add with a formatted message.
func (s *Sink) Addf(kind Kind, location, format string, args ...any) {
	s.Add(kind, location, fmt.Sprintf(format, args...))
}

// Diagnostics returns all recorded diagnostics in insertion order.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of recorded diagnostics.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// OfKind returns only the diagnostics matching kind, in insertion order.
func (s *Sink) OfKind(kind Kind) []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Diagnostic
	for _, e := range s.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
