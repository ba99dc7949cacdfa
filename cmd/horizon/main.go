// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Command horizon renders a panoramic terrain-horizon image and optional
// slant-range file from SRTM elevation tiles, for a viewer at a given
// geographic position and azimuth window.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strconv"

	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/galvanized/horizon/config"
	"github.com/galvanized/horizon/dem"
	"github.com/galvanized/horizon/geo"
	"github.com/galvanized/horizon/mesh"
	"github.com/galvanized/horizon/render"
	"github.com/galvanized/horizon/texture"
	"github.com/galvanized/horizon/tile"
	"github.com/galvanized/horizon/tiledownload"
)

var flags struct {
	width, height int
	imagePath     string
	rangesPath    string
	radius        int
	useTexture    bool
	srtm1         bool
	allowDL       bool
	zNear, zFar   float64
	zNearC, zFarC float64
	dirDems       string
	dirTiles      string
}

func main() {
	root := &cobra.Command{
		Use:           "horizon LAT LON AZ0 AZ1",
		Short:         "Render a panoramic terrain horizon from SRTM elevation tiles",
		Args:          cobra.ExactArgs(4),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().IntVar(&flags.width, "width", 1024, "output image width in pixels")
	root.Flags().IntVar(&flags.height, "height", 256, "output image height in pixels")
	root.Flags().StringVar(&flags.imagePath, "image", "", "write the rendered PNG here")
	root.Flags().StringVar(&flags.rangesPath, "ranges", "", "write the slant-range float32 file here")
	root.Flags().IntVar(&flags.radius, "radius", 1000, "mosaic half-extent in DEM cells")
	root.Flags().BoolVar(&flags.useTexture, "texture", false, "sample slippy-map imagery instead of a flat palette")
	root.Flags().BoolVar(&flags.srtm1, "SRTM1", false, "use 1 arc-second SRTM tiles instead of 3 arc-second")
	root.Flags().BoolVar(&flags.allowDL, "allow-tile-downloads", false, "best-effort fetch missing imagery tiles")
	root.Flags().Float64Var(&flags.zNear, "znear", 1, "near range clamp, meters")
	root.Flags().Float64Var(&flags.zFar, "zfar", 200_000, "far range clamp, meters")
	root.Flags().Float64Var(&flags.zNearC, "znear-color", 1, "near color-coding clamp, meters")
	root.Flags().Float64Var(&flags.zFarC, "zfar-color", 50_000, "far color-coding clamp, meters")
	root.Flags().StringVar(&flags.dirDems, "dirdems", "~/.horizon/dem", "directory of cached SRTM .hgt tiles")
	root.Flags().StringVar(&flags.dirTiles, "dirtiles", "~/.horizon/tiles", "directory of cached slippy-map imagery tiles")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorstring.Color("[red]error:[reset] "+err.Error()))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad LAT %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad LON %q: %w", args[1], err)
	}
	az0, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("bad AZ0 %q: %w", args[2], err)
	}
	az1, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("bad AZ1 %q: %w", args[3], err)
	}

	opts := config.New(
		config.Viewer(lat, lon),
		config.Azimuth(az0, az1),
		config.Viewport(flags.width, flags.height),
		config.Radius(flags.radius),
		config.ZExtents(flags.zNear, flags.zFar, flags.zNearC, flags.zFarC),
		config.DEMDir(flags.dirDems),
		config.TileDir(flags.dirTiles),
	)
	if flags.srtm1 {
		config.SRTM1()(opts)
	}
	if flags.allowDL {
		config.AllowDownloads()(opts)
	}

	colorstring.Println("[green]horizon[reset]: building DEM mosaic")
	width := tile.Width3
	if opts.SRTM1 {
		width = tile.Width1
	}
	store := tile.New(opts.DEMDir)
	defer store.CloseAll()

	m, err := dem.Build(opts.ViewerLatDeg, opts.ViewerLonDeg, opts.Radius, store, width)
	if err != nil {
		return err
	}

	msh, err := mesh.Build(m)
	if err != nil {
		return err
	}

	w := geo.Window{
		Viewer:     geo.NewFix(opts.ViewerLatDeg, opts.ViewerLonDeg, 0),
		Az0:        opts.Az0,
		Az1:        opts.Az1,
		ZNear:      opts.ZNear,
		ZFar:       opts.ZFar,
		ZNearColor: opts.ZNearColor,
		ZFarColor:  opts.ZFarColor,
		WidthPx:    opts.WidthPx,
		HeightPx:   opts.HeightPx,
	}
	shader := render.DefaultShaderProgram(w, m)

	if flags.useTexture {
		colorstring.Println("[green]horizon[reset]: building texture atlas")
		lat0, lon0, lat1, lon1 := m.BoundsDeg()
		const zoom = 12
		if opts.AllowDownloads {
			tiles := tilesInBounds(lat0, lon0, lat1, lon1, zoom)
			tiledownload.New().Fetch(context.Background(), opts.TileDir, zoom, tiles)
		}
		atlas, err := texture.Build(opts.TileDir, zoom, lat0, lon0, lat1, lon1, opts.ViewerLatDeg)
		if err != nil {
			return err
		}
		shader.Atlas = atlas
	}

	r, err := render.New(msh, shader, false)
	if err != nil {
		return err
	}
	if err := r.SetViewer(opts.ViewerLatDeg, opts.ViewerLonDeg, opts.EyeLift); err != nil {
		return err
	}

	colorstring.Println("[green]horizon[reset]: rasterizing")
	if err := r.Redraw(); err != nil {
		return err
	}

	if flags.imagePath != "" {
		if err := writeImage(r, flags.imagePath); err != nil {
			return err
		}
		colorstring.Printf("[green]horizon[reset]: wrote image to %s\n", flags.imagePath)
	}
	if flags.rangesPath != "" {
		if err := writeRanges(r, flags.rangesPath); err != nil {
			return err
		}
		colorstring.Printf("[green]horizon[reset]: wrote ranges to %s\n", flags.rangesPath)
	}

	return nil
}

func writeImage(r *render.Renderer, path string) error {
	buf := make([]byte, r.Width()*r.Height()*3)
	if err := r.ReadImage(buf, true); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			i := (y*r.Width() + x) * 3
			// ReadImage hands back BGR; swap to RGB for the PNG.
			img.Set(x, y, rgbColor{buf[i+2], buf[i+1], buf[i]})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// rgbColor implements color.Color for a plain 24-bit RGB triple.
type rgbColor struct{ r, g, b byte }

func (c rgbColor) RGBA() (r, g, b, a uint32) {
	return uint32(c.r) * 0x101, uint32(c.g) * 0x101, uint32(c.b) * 0x101, 0xffff
}

func writeRanges(r *render.Renderer, path string) error {
	buf := make([]float32, r.Width()*r.Height())
	if err := r.ReadRanges(buf, true); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	raw := make([]byte, 4)
	for _, v := range buf {
		binary.LittleEndian.PutUint32(raw, math.Float32bits(v))
		if _, err := f.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

func tilesInBounds(lat0, lon0, lat1, lon1 float64, zoom int) [][2]int {
	x0, y0, x1, y1 := texture.TileRange(lat0, lon0, lat1, lon1, zoom)
	var tiles [][2]int
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			tiles = append(tiles, [2]int{x, y})
		}
	}
	return tiles
}
