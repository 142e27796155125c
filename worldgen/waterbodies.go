package worldgen

import "github.com/pthm-cable/citycore/grid"

// deriveWaterBodies assigns a connected-component id to every water tile
// (4-connected BFS flood fill, §3.2 invariant: water_body_id != 0 iff
// terrain is a water type) and a flow direction to every FlowChannel
// tile (steepest-descent neighbor, §3.2: "only defined on flow-channel
// tiles").
func deriveWaterBodies(terrain *grid.TerrainGrid, side int) (*grid.WaterBodyGrid, *grid.FlowDirectionGrid) {
	waterBody := grid.NewWaterBodyGrid(side)
	flowDir := grid.NewFlowDirectionGrid(side)

	visited := make([]bool, side*side)
	var nextID uint16 = 1

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			idx := y*side + x
			if visited[idx] {
				continue
			}
			visited[idx] = true
			if !terrain.At(x, y).Type.IsWater() {
				continue
			}
			floodFill(terrain, waterBody, visited, side, x, y, nextID)
			nextID++
		}
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if terrain.At(x, y).Type == grid.FlowChannel {
				flowDir.Set(x, y, steepestDescent(terrain, x, y))
			}
		}
	}

	return waterBody, flowDir
}

// floodFill assigns id to the 4-connected water component containing
// (startX, startY), using an explicit stack (no recursion, no
// unordered-container iteration order to worry about — §4.3
// determinism rule).
func floodFill(terrain *grid.TerrainGrid, waterBody *grid.WaterBodyGrid, visited []bool, side, startX, startY int, id uint16) {
	type pt struct{ x, y int }
	stack := []pt{{startX, startY}}
	waterBody.Set(startX, startY, id)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
			nx, ny := p.x+d[0], p.y+d[1]
			if nx < 0 || ny < 0 || nx >= side || ny >= side {
				continue
			}
			idx := ny*side + nx
			if visited[idx] {
				continue
			}
			if !terrain.At(nx, ny).Type.IsWater() {
				continue
			}
			visited[idx] = true
			waterBody.Set(nx, ny, id)
			stack = append(stack, pt{nx, ny})
		}
	}
}

var directionTable = [3][3]grid.FlowDirection{
	{grid.FlowNW, grid.FlowN, grid.FlowNE},
	{grid.FlowW, grid.FlowNone, grid.FlowE},
	{grid.FlowSW, grid.FlowS, grid.FlowSE},
}

// steepestDescent returns the compass direction toward the lowest
// in-bounds 8-connected neighbor, or FlowNone if (x, y) is already a
// local minimum.
func steepestDescent(terrain *grid.TerrainGrid, x, y int) grid.FlowDirection {
	cell := terrain.At(x, y)
	best := grid.FlowNone
	bestElev := cell.Elevation

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !terrain.InBounds(nx, ny) {
				continue
			}
			n := terrain.At(nx, ny)
			if n.Elevation < bestElev {
				bestElev = n.Elevation
				best = directionTable[dy+1][dx+1]
			}
		}
	}
	return best
}
