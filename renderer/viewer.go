// Package renderer is the out-of-scope rendering collaborator: a thin
// raylib viewer driven exclusively by the read-only query interfaces of
// the simulation core. It never imports the systems package and never
// mutates simulation state.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/citycore/query"
)

// Queries bundles every read-only interface the viewer draws from.
type Queries struct {
	Buildings query.BuildingQueryable
	Transport query.TransportProvider
	Stats     query.StatQueryable
	Overlays  []query.GridOverlay
}

// Viewer draws the world grid plus one selectable overlay.
type Viewer struct {
	queries Queries
	side    int

	tileSize      int32
	activeOverlay int
}

// NewViewer creates a viewer over a map of the given side.
func NewViewer(queries Queries, side int) *Viewer {
	tile := int32(1024 / side)
	if tile < 1 {
		tile = 1
	}
	return &Viewer{queries: queries, side: side, tileSize: tile, activeOverlay: -1}
}

// Open initializes the window. Must be called from the main goroutine.
func (v *Viewer) Open(title string) {
	rl.InitWindow(int32(v.side)*v.tileSize+220, int32(v.side)*v.tileSize, title)
	rl.SetTargetFPS(60)
}

// ShouldClose reports whether the user asked to quit.
func (v *Viewer) ShouldClose() bool { return rl.WindowShouldClose() }

// Close tears the window down.
func (v *Viewer) Close() { rl.CloseWindow() }

// CycleOverlay advances to the next overlay (wrapping to "none").
func (v *Viewer) CycleOverlay() {
	v.activeOverlay++
	if v.activeOverlay >= len(v.queries.Overlays) {
		v.activeOverlay = -1
	}
}

// Frame draws one frame: base tiles, the active overlay, occupied
// tiles, and the side panel.
func (v *Viewer) Frame() {
	if rl.IsKeyPressed(rl.KeyTab) {
		v.CycleOverlay()
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(24, 26, 30, 255))

	v.drawTiles()
	v.drawPanel()

	rl.EndDrawing()
}

func (v *Viewer) drawTiles() {
	var overlay query.GridOverlay
	if v.activeOverlay >= 0 && v.activeOverlay < len(v.queries.Overlays) {
		if o := v.queries.Overlays[v.activeOverlay]; o.IsActive() {
			overlay = o
		}
	}

	for y := 0; y < v.side; y++ {
		for x := 0; x < v.side; x++ {
			px := int32(x) * v.tileSize
			py := int32(y) * v.tileSize

			if v.queries.Buildings != nil && v.queries.Buildings.IsTileOccupied(int32(x), int32(y)) {
				rl.DrawRectangle(px, py, v.tileSize, v.tileSize, rl.NewColor(180, 180, 190, 255))
			}
			if v.queries.Transport != nil && v.queries.Transport.GetNetworkIDAt(int32(x), int32(y)) != 0 {
				rl.DrawRectangle(px, py, v.tileSize, v.tileSize, rl.NewColor(90, 90, 100, 255))
			}
			if overlay != nil {
				r, g, b, a := overlay.ColorAt(int32(x), int32(y))
				if a > 0 {
					rl.DrawRectangle(px, py, v.tileSize, v.tileSize, rl.NewColor(r, g, b, a))
				}
			}
		}
	}
}

func (v *Viewer) drawPanel() {
	panelX := int32(v.side)*v.tileSize + 10
	y := int32(10)

	name := "none"
	if v.activeOverlay >= 0 && v.activeOverlay < len(v.queries.Overlays) {
		name = v.queries.Overlays[v.activeOverlay].Name()
	}
	rl.DrawText("overlay: "+name+" (tab)", panelX, y, 14, rl.RayWhite)
	y += 24

	if v.queries.Stats == nil {
		return
	}
	for id := query.StatID(0); v.queries.Stats.IsValidStat(id); id++ {
		label := v.queries.Stats.GetStatName(id)
		value := v.queries.Stats.GetStat(id)
		rl.DrawText(label+": "+formatStat(value), panelX, y, 12, rl.LightGray)
		y += 18
	}

	if v.queries.Buildings != nil {
		y += 10
		active := v.queries.Buildings.CountByState(query.Active)
		rl.DrawText(fmt.Sprintf("active buildings: %d", active), panelX, y, 12, rl.LightGray)
		y += 18
	}

	v.drawOverlayButtons(panelX, y)
}

func formatStat(v float32) string {
	return fmt.Sprintf("%.0f", v)
}
