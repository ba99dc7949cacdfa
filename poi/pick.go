// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package poi

import "github.com/galvanized/horizon/render"

// Pick reads the depth at pixel (xPx, yPx) from r's last completed Redraw
// and inverts the projection to a geographic position. ok is false if the
// pixel reads back as sky (depth == 1.0).
func Pick(r *render.Renderer, xPx, yPx int) (latDeg, lonDeg float64, ok bool) {
	return r.Pick(xPx, yPx)
}
