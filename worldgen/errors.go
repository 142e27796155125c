package worldgen

import "errors"

// ErrInvalidSide is returned when the requested map side is not one of
// grid.ValidSides.
var ErrInvalidSide = errors.New("worldgen: invalid map side")
