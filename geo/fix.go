// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package geo holds the geographic fix type and the forward/inverse
// panoramic projection math shared by the mesh, render, and poi packages.
package geo

import (
	"github.com/paulmach/orb"

	"github.com/galvanized/horizon/internal/lin"
)

// EarthRadiusM is the spherical Earth radius used throughout the
// projection (no WGS84 ellipsoid refinement).
const EarthRadiusM = 6371000.0

// Fix is a geographic position: latitude in [-80,80], longitude in
// [-180,180], both in degrees, plus an elevation in meters. It wraps an
// orb.Point ([lon, lat]) so it interoperates with any orb-based geometry.
type Fix struct {
	pt   orb.Point
	Elev float64
}

// NewFix builds a Fix from degrees and an elevation in meters.
func NewFix(latDeg, lonDeg, elevM float64) Fix {
	return Fix{pt: orb.Point{lonDeg, latDeg}, Elev: elevM}
}

// LatDeg returns the latitude in degrees.
func (f Fix) LatDeg() float64 { return f.pt.Lat() }

// LonDeg returns the longitude in degrees.
func (f Fix) LonDeg() float64 { return f.pt.Lon() }

// LatRad returns the latitude in radians.
func (f Fix) LatRad() float64 { return lin.Rad(f.pt.Lat()) }

// LonRad returns the longitude in radians.
func (f Fix) LonRad() float64 { return lin.Rad(f.pt.Lon()) }

// Point returns the underlying orb.Point ([lon, lat]).
func (f Fix) Point() orb.Point { return f.pt }

// Valid reports whether the fix's latitude and longitude fall within the
// domain this renderer supports.
func (f Fix) Valid() bool {
	lat, lon := f.LatDeg(), f.LonDeg()
	return lat >= -80 && lat <= 80 && lon >= -180 && lon <= 180
}
