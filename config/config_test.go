// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	o := New()
	if o.WidthPx != 1024 || o.HeightPx != 256 {
		t.Errorf("default viewport = %dx%d, want 1024x256", o.WidthPx, o.HeightPx)
	}
	if o.Az0 != -10 || o.Az1 != 10 {
		t.Errorf("default azimuth = [%v,%v], want [-10,10]", o.Az0, o.Az1)
	}
}

func TestAttrsOverrideDefaults(t *testing.T) {
	o := New(Viewer(46.8, 8.2), Viewport(800, 200), Radius(50))
	if o.ViewerLatDeg != 46.8 || o.ViewerLonDeg != 8.2 {
		t.Errorf("viewer = (%v,%v), want (46.8,8.2)", o.ViewerLatDeg, o.ViewerLonDeg)
	}
	if o.WidthPx != 800 || o.HeightPx != 200 {
		t.Errorf("viewport = %dx%d, want 800x200", o.WidthPx, o.HeightPx)
	}
	if o.Radius != 50 {
		t.Errorf("radius = %d, want 50", o.Radius)
	}
}

func TestExpandHomePrefix(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	o := New(DEMDir("~/dems"))
	want := filepath.Join(home, "dems")
	if o.DEMDir != want {
		t.Errorf("DEMDir = %q, want %q", o.DEMDir, want)
	}
}

func TestLoadFileFillsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "horizon.yaml")
	contents := "radius: 75\nwidth_px: 640\nheight_px: 160\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if o.Radius != 75 {
		t.Errorf("radius = %d, want 75 from file", o.Radius)
	}
	if o.WidthPx != 640 || o.HeightPx != 160 {
		t.Errorf("viewport = %dx%d, want 640x160 from file", o.WidthPx, o.HeightPx)
	}
}

// TestLoadExplicitAttrBeatsFile is the testable property from §8: a YAML
// file never overrides an attribute the caller set explicitly.
func TestLoadExplicitAttrBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "horizon.yaml")
	contents := "radius: 75\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path, Radius(12))
	if err != nil {
		t.Fatal(err)
	}
	if o.Radius != 12 {
		t.Errorf("radius = %d, want 12 (explicit attr must win over file's 75)", o.Radius)
	}
}

func TestLoadMissingPathReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a nonexistent config file")
	}
}

func TestLoadEmptyPathSkipsFile(t *testing.T) {
	o, err := Load("", Radius(99))
	if err != nil {
		t.Fatal(err)
	}
	if o.Radius != 99 {
		t.Errorf("radius = %d, want 99", o.Radius)
	}
}
