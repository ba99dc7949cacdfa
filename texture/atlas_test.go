// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writePNGTile(t *testing.T, dir string, zoom, tx, ty int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, TileSizePx, TileSizePx))
	for y := 0; y < TileSizePx; y++ {
		for x := 0; x < TileSizePx; x++ {
			img.Set(x, y, c)
		}
	}
	dirPath := filepath.Join(dir, strconv.Itoa(zoom), strconv.Itoa(tx))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirPath, strconv.Itoa(ty)+".png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSlippyXYMonotoneInLatitude(t *testing.T) {
	_, yNorth := slippyXY(40, 0, 5)
	_, ySouth := slippyXY(10, 0, 5)
	if yNorth >= ySouth {
		t.Errorf("expected higher latitude to have smaller y_tile: yNorth=%v ySouth=%v", yNorth, ySouth)
	}
}

func TestTileKeyHasOneDigitPerZoomLevel(t *testing.T) {
	key := tileKey(6, 19, 42)
	if len(key) != 6 {
		t.Fatalf("tileKey length = %d, want 6", len(key))
	}
}

func TestBuildAndSampleSingleTile(t *testing.T) {
	dir := t.TempDir()
	const zoom = 10
	lat0, lon0, lat1, lon1 := 34.0, -118.0, 34.01, -117.99
	xf, yf := slippyXY((lat0+lat1)/2, (lon0+lon1)/2, zoom)
	x, y := int(xf), int(yf)
	want := color.RGBA{R: 10, G: 200, B: 30, A: 255}
	writePNGTile(t, dir, zoom, x, y, want)

	a, err := Build(dir, zoom, lat0, lon0, lat1, lon1, (lat0+lat1)/2)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, ok := a.Sample((lat0+lat1)/2, (lon0+lon1)/2)
	if !ok {
		t.Fatal("expected Sample to hit the loaded tile")
	}
	if r != want.R || g != want.G || b != want.B {
		t.Errorf("Sample = (%d,%d,%d), want (%d,%d,%d)", r, g, b, want.R, want.G, want.B)
	}
}

func TestBuildMissingTileStaysBackground(t *testing.T) {
	dir := t.TempDir() // no tiles on disk.
	a, err := Build(dir, 8, 34.0, -118.0, 34.5, -117.5, 34.25)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, ok := a.Sample(34.25, -117.75)
	if !ok {
		t.Fatal("expected Sample to report a coordinate inside atlas coverage even with no tile loaded")
	}
	for _, v := range a.pix[:300] {
		if v != 0 {
			t.Fatalf("expected background pixels to stay zero, got %d", v)
		}
	}
}

func TestSampleOutsideCoverageFails(t *testing.T) {
	dir := t.TempDir()
	a, err := Build(dir, 8, 34.0, -118.0, 34.5, -117.5, 34.25)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, ok := a.Sample(80, 170); ok {
		t.Fatal("expected a far-away coordinate to miss the atlas")
	}
}
