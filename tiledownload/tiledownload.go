// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package tiledownload best-effort fetches slippy-map imagery tiles that
// texture.Build did not find on disk. A canceled context, a timeout, or a
// non-2xx response is never an error: the tile is simply left missing, and
// texture.Build already treats a missing tile as background.
package tiledownload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// URLTemplate builds a tile URL from a zoom/x/y slippy-tile address. The
// placeholders {z}, {x}, {y} are substituted; see TemplateOSM for the
// default OpenStreetMap raster template.
type URLTemplate string

// TemplateOSM is the standard OpenStreetMap raster tile endpoint.
const TemplateOSM URLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

func (t URLTemplate) url(zoom, tx, ty int) string {
	s := string(t)
	s = strings.ReplaceAll(s, "{z}", fmt.Sprint(zoom))
	s = strings.ReplaceAll(s, "{x}", fmt.Sprint(tx))
	s = strings.ReplaceAll(s, "{y}", fmt.Sprint(ty))
	return s
}

// Fetcher downloads missing slippy tiles into a texture.Build-compatible
// directory layout: tilesDir/{zoom}/{x}/{y}.png.
type Fetcher struct {
	Client   *http.Client
	Template URLTemplate
}

// New returns a Fetcher using the default HTTP client and the OSM raster
// tile template.
func New() *Fetcher {
	return &Fetcher{Client: http.DefaultClient, Template: TemplateOSM}
}

// Fetch downloads every (zoom, tx, ty) tile in tiles missing from tilesDir,
// reporting progress on stderr. ctx cancellation or deadline stops the
// remaining downloads early; tiles not yet fetched are simply left missing.
// Fetch itself never returns an error: a failed tile is logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, tilesDir string, zoom int, tiles [][2]int) {
	bar := progressbar.Default(int64(len(tiles)), "fetching tiles")
	defer bar.Finish()

	for i, xy := range tiles {
		tx, ty := xy[0], xy[1]
		select {
		case <-ctx.Done():
			log.Printf("tiledownload: canceled with %d/%d tiles remaining", len(tiles)-i, len(tiles))
			return
		default:
		}

		dest := filepath.Join(tilesDir, fmt.Sprint(zoom), fmt.Sprint(tx), fmt.Sprintf("%d.png", ty))
		if _, err := os.Stat(dest); err == nil {
			_ = bar.Add(1)
			continue
		}

		if err := f.fetchOne(ctx, dest, zoom, tx, ty); err != nil {
			log.Printf("tiledownload: tile %d/%d/%d left missing: %v", zoom, tx, ty, err)
		}
		_ = bar.Add(1)
	}
}

func (f *Fetcher) fetchOne(ctx context.Context, dest string, zoom, tx, ty int) error {
	url := f.Template.url(zoom, tx, ty)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, body, 0o644)
}
