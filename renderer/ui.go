package renderer

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawOverlayButtons renders one raygui toggle per overlay in the side
// panel; clicking selects it (or deselects the active one).
func (v *Viewer) drawOverlayButtons(panelX, y int32) {
	for i, o := range v.queries.Overlays {
		label := o.Name()
		if i == v.activeOverlay {
			label = "> " + label
		}
		if gui.Button(rl.NewRectangle(float32(panelX), float32(y), 180, 22), label) {
			if v.activeOverlay == i {
				v.activeOverlay = -1
			} else {
				v.activeOverlay = i
			}
		}
		y += 26
	}
}
