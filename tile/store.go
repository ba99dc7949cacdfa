// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package tile locates, opens and memory-maps SRTM height tile files.
// A tile file is named {N|S}ddE|Wddd.hgt and covers a 1°x1° patch as a
// W x W grid of signed 16-bit big-endian samples, W being 1201 (3") or
// 3601 (1"). Tiles are opened read-only and zero-copy via mmap; a missing
// file is not an error (it represents a sea-level patch) but a size
// mismatch against the expected W is fatal.
package tile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/galvanized/horizon/errkind"
)

// Width3 and Width1 are the two SRTM grid widths in samples per side.
const (
	Width3 = 1201 // 3 arc-second SRTM.
	Width1 = 3601 // 1 arc-second SRTM.
)

// Handle is a read-only, zero-copy view over a mapped tile file's bytes.
// The bytes are W*W samples of 2 bytes each, row-major, rows ordered
// north to south.
type Handle struct {
	Width int
	data  []byte
}

// Sample reads the big-endian signed 16-bit height at tile-local column
// (cellI, west to east) and row-from-south (cellJ, south to north),
// clipping void (-32768) and negative values to 0.
func (h *Handle) Sample(cellI, cellJ int) int16 {
	row := h.Width - 1 - cellJ // flip: file rows are north to south.
	off := 2 * (cellI + row*h.Width)
	v := int16(uint16(h.data[off])<<8 | uint16(h.data[off+1]))
	if v < 0 {
		return 0
	}
	return v
}

// Store opens and owns the memory mappings of SRTM tile files under a
// single directory. Store is safe for concurrent read access to already
// opened tiles, but Open/CloseAll are expected to be called from a single
// goroutine per the render pipeline's single-threaded host model.
type Store struct {
	dir string

	mu      sync.Mutex
	mapped  map[string][]byte
	handles map[string]*Handle
}

// New returns a Store rooted at dir. dir is expanded for a leading "~/"
// against $HOME.
func New(dir string) *Store {
	return &Store{
		dir:     expandHome(dir),
		mapped:  map[string][]byte{},
		handles: map[string]*Handle{},
	}
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// Name returns the SRTM file name for the integer SW corner (latDeg,
// lonDeg), e.g. Name(34, -118) == "N34W118.hgt".
func Name(latDeg, lonDeg int) string {
	ns, lat := 'N', latDeg
	if latDeg < 0 {
		ns, lat = 'S', -latDeg
	}
	ew, lon := 'E', lonDeg
	if lonDeg < 0 {
		ew, lon = 'W', -lonDeg
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, lat, ew, lon)
}

// Open returns the Handle for tile (latDeg, lonDeg), or (nil, nil) if the
// tile is absent or a zero-length placeholder for a sea tile. width is the
// expected grid width (Width3 or Width1); a mismatched file size is a
// fatal bad_tile error.
func (s *Store) Open(latDeg, lonDeg, width int) (*Handle, error) {
	name := Name(latDeg, lonDeg)
	path := filepath.Join(s.dir, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[name]; ok {
		return h, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // missing tile: treated as sea level.
		}
		return nil, errkind.New(errkind.IO, fmt.Errorf("tile open %s: %w", path, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errkind.New(errkind.IO, fmt.Errorf("tile stat %s: %w", path, err))
	}
	if info.Size() == 0 {
		return nil, nil // zero-length placeholder: sea tile.
	}
	want := int64(width) * int64(width) * 2
	if info.Size() != want {
		return nil, errkind.New(errkind.BadTile, fmt.Errorf(
			"tile %s: size %d bytes, want %d (width %d)", path, info.Size(), want, width))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errkind.New(errkind.IO, fmt.Errorf("tile mmap %s: %w", path, err))
	}

	h := &Handle{Width: width, data: data}
	s.mapped[name] = data
	s.handles[name] = h
	return h, nil
}

// CloseAll releases every mapping owned by the store. Idempotent.
func (s *Store) CloseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for name, data := range s.mapped {
		if err := unix.Munmap(data); err != nil && firstErr == nil {
			firstErr = errkind.New(errkind.IO, fmt.Errorf("tile munmap %s: %w", name, err))
		}
		delete(s.mapped, name)
		delete(s.handles, name)
	}
	return firstErr
}
