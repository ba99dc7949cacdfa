// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package errkind tags pipeline errors with the taxonomy kind a caller
// needs to decide how to react, without introducing a bespoke error
// hierarchy: every error is still a plain wrapped Go error.
package errkind

import "fmt"

// Kind is one of the error taxonomy entries from the error handling design.
type Kind string

const (
	Config            Kind = "config"            // bad azimuth window, radius, viewport, lat/lon.
	MissingTile       Kind = "missing_tile"       // not an error at the TileStore level.
	BadTile           Kind = "bad_tile"           // wrong size or unreadable file.
	IO                Kind = "io"                 // filesystem, download, or mapping failure.
	Device            Kind = "device"             // shader/framebuffer/readback failure.
	InvariantViolated Kind = "invariant_violated" // internal sanity assertion.
)

// tagged wraps an error with a Kind so callers can recover it with Of.
type tagged struct {
	kind Kind
	err  error
}

// New wraps err with the given taxonomy kind. New(k, nil) returns nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &tagged{kind: kind, err: err}
}

// Newf is a convenience constructor: errkind.Newf(Config, "radius %d exceeds bound", r).
func Newf(kind Kind, format string, args ...interface{}) error {
	return &tagged{kind: kind, err: fmt.Errorf(format, args...)}
}

func (t *tagged) Error() string { return fmt.Sprintf("%s: %s", t.kind, t.err) }
func (t *tagged) Unwrap() error { return t.err }

// Of returns the taxonomy kind of err, or "" if err was not tagged.
func Of(err error) Kind {
	var t *tagged
	for err != nil {
		if tt, ok := err.(*tagged); ok {
			t = tt
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if t == nil {
		return ""
	}
	return t.kind
}
