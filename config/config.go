// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package config reduces the horizon pipeline's construction footprint
// using functional options.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/galvanized/horizon/errkind"
	"gopkg.in/yaml.v3"
)

// Options holds every attribute a rendering session needs, set either by
// explicit Attr or by a loaded YAML file.
type Options struct {
	ViewerLatDeg, ViewerLonDeg float64
	EyeLift                    float64

	Az0, Az1 float64

	WidthPx, HeightPx int
	Radius            int

	ZNear, ZFar           float64
	ZNearColor, ZFarColor float64

	DEMDir, TileDir string
	SRTM1           bool
	AllowDownloads  bool

	setExplicitly map[string]bool
}

// optionsDefaults provides reasonable defaults so a session can run even
// if the caller sets nothing.
var optionsDefaults = Options{
	EyeLift: 1, // per the spec's arbitrary +1m viewer lift, kept as a default.
	Az0:     -10, Az1: 10,
	WidthPx: 1024, HeightPx: 256,
	Radius:     1000,
	ZNear:      1, ZFar: 200_000,
	ZNearColor: 1, ZFarColor: 50_000,
	DEMDir:  "~/.horizon/dem",
	TileDir: "~/.horizon/tiles",
	SRTM1:   false,
}

// Attr defines an optional session attribute.
//
//	opts := config.New(
//	    config.Viewer(46.8, 8.2),
//	    config.Viewport(1920, 480),
//	)
type Attr func(*Options)

func (o *Options) mark(names ...string) {
	if o.setExplicitly == nil {
		o.setExplicitly = make(map[string]bool)
	}
	for _, n := range names {
		o.setExplicitly[n] = true
	}
}

// Viewer sets the viewer's geographic position in degrees.
func Viewer(latDeg, lonDeg float64) Attr {
	return func(o *Options) {
		o.ViewerLatDeg, o.ViewerLonDeg = latDeg, lonDeg
		o.mark("viewer")
	}
}

// EyeLift sets the viewer's height above the terrain surface, in meters.
func EyeLift(m float64) Attr {
	return func(o *Options) { o.EyeLift = m; o.mark("eyelift") }
}

// Azimuth sets the rendered azimuth window in degrees, east of north.
func Azimuth(az0, az1 float64) Attr {
	return func(o *Options) { o.Az0, o.Az1 = az0, az1; o.mark("azimuth") }
}

// Viewport sets the output image size in pixels.
func Viewport(widthPx, heightPx int) Attr {
	return func(o *Options) { o.WidthPx, o.HeightPx = widthPx, heightPx; o.mark("viewport") }
}

// Radius sets the mosaic's half-extent in DEM cells.
func Radius(cells int) Attr {
	return func(o *Options) { o.Radius = cells; o.mark("radius") }
}

// ZExtents sets the near/far range clamps and the (possibly distinct)
// near/far color-coding clamps, all in meters.
func ZExtents(zNear, zFar, zNearColor, zFarColor float64) Attr {
	return func(o *Options) {
		o.ZNear, o.ZFar = zNear, zFar
		o.ZNearColor, o.ZFarColor = zNearColor, zFarColor
		o.mark("zextents")
	}
}

// DEMDir sets the directory holding cached SRTM .hgt tiles.
func DEMDir(dir string) Attr {
	return func(o *Options) { o.DEMDir = dir; o.mark("demdir") }
}

// TileDir sets the directory holding cached slippy-map imagery tiles.
func TileDir(dir string) Attr {
	return func(o *Options) { o.TileDir = dir; o.mark("tiledir") }
}

// AllowDownloads enables best-effort fetching of missing imagery tiles.
func AllowDownloads() Attr {
	return func(o *Options) { o.AllowDownloads = true; o.mark("allowdownloads") }
}

// SRTM1 selects 1 arc-second SRTM tiles instead of the default 3
// arc-second tiles.
func SRTM1() Attr {
	return func(o *Options) { o.SRTM1 = true; o.mark("srtm1") }
}

// New builds an Options from defaults, overridden by attrs in order.
func New(attrs ...Attr) *Options {
	o := optionsDefaults
	o.DEMDir = expandHome(o.DEMDir)
	o.TileDir = expandHome(o.TileDir)
	for _, attr := range attrs {
		attr(&o)
	}
	o.DEMDir = expandHome(o.DEMDir)
	o.TileDir = expandHome(o.TileDir)
	return &o
}

// fileOptions is the subset of Options a YAML file may set, kept separate
// from Options so a zero value in the decoded file (e.g. radius: 0) is
// distinguishable from "not present in the file".
type fileOptions struct {
	ViewerLatDeg *float64 `yaml:"viewer_lat_deg"`
	ViewerLonDeg *float64 `yaml:"viewer_lon_deg"`
	EyeLift      *float64 `yaml:"eye_lift"`
	Az0          *float64 `yaml:"az0"`
	Az1          *float64 `yaml:"az1"`
	WidthPx      *int     `yaml:"width_px"`
	HeightPx     *int     `yaml:"height_px"`
	Radius       *int     `yaml:"radius"`
	ZNear        *float64 `yaml:"z_near"`
	ZFar         *float64 `yaml:"z_far"`
	ZNearColor   *float64 `yaml:"z_near_color"`
	ZFarColor    *float64 `yaml:"z_far_color"`
	DEMDir       *string  `yaml:"dem_dir"`
	TileDir      *string  `yaml:"tile_dir"`
	SRTM1        *bool    `yaml:"srtm1"`
	AllowDL      *bool    `yaml:"allow_downloads"`
}

// Load builds an Options from defaults, then attrs, then an optional YAML
// file at path — but the file only ever fills fields the attrs left
// untouched, so an explicit attr always wins over the file, and the file
// always wins over the built-in default. If path is "" no file is read.
func Load(path string, attrs ...Attr) (*Options, error) {
	o := optionsDefaults
	for _, attr := range attrs {
		attr(&o)
	}
	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		if err != nil {
			return nil, errkind.New(errkind.IO, err)
		}
		var fo fileOptions
		if err := yaml.Unmarshal(data, &fo); err != nil {
			return nil, errkind.New(errkind.Config, err)
		}
		applyFile(&o, &fo)
	}
	o.DEMDir = expandHome(o.DEMDir)
	o.TileDir = expandHome(o.TileDir)
	return &o, nil
}

// applyFile copies every present field of fo into o, skipping fields the
// caller already set explicitly via an Attr passed to Load.
func applyFile(o *Options, fo *fileOptions) {
	if fo.ViewerLatDeg != nil && fo.ViewerLonDeg != nil && !o.setExplicitly["viewer"] {
		o.ViewerLatDeg, o.ViewerLonDeg = *fo.ViewerLatDeg, *fo.ViewerLonDeg
	}
	if fo.EyeLift != nil && !o.setExplicitly["eyelift"] {
		o.EyeLift = *fo.EyeLift
	}
	if fo.Az0 != nil && fo.Az1 != nil && !o.setExplicitly["azimuth"] {
		o.Az0, o.Az1 = *fo.Az0, *fo.Az1
	}
	if fo.WidthPx != nil && fo.HeightPx != nil && !o.setExplicitly["viewport"] {
		o.WidthPx, o.HeightPx = *fo.WidthPx, *fo.HeightPx
	}
	if fo.Radius != nil && !o.setExplicitly["radius"] {
		o.Radius = *fo.Radius
	}
	if fo.ZNear != nil && fo.ZFar != nil && fo.ZNearColor != nil && fo.ZFarColor != nil && !o.setExplicitly["zextents"] {
		o.ZNear, o.ZFar, o.ZNearColor, o.ZFarColor = *fo.ZNear, *fo.ZFar, *fo.ZNearColor, *fo.ZFarColor
	}
	if fo.DEMDir != nil && !o.setExplicitly["demdir"] {
		o.DEMDir = *fo.DEMDir
	}
	if fo.TileDir != nil && !o.setExplicitly["tiledir"] {
		o.TileDir = *fo.TileDir
	}
	if fo.SRTM1 != nil && !o.setExplicitly["srtm1"] {
		o.SRTM1 = *fo.SRTM1
	}
	if fo.AllowDL != nil && !o.setExplicitly["allowdownloads"] {
		o.AllowDownloads = *fo.AllowDL
	}
}

// expandHome expands a leading "~/" against $HOME. Paths without that
// prefix pass through unchanged.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
