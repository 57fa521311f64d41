package tiles

import "github.com/pkg/errors"

var (
	ErrOutOfBounds       = errors.New("out of grid bounds")
	ErrInvalidTile       = errors.New("invalid tile")
	ErrCodecUnderflow    = errors.New("tile data does not fill the grid")
	ErrCodecOverflow     = errors.New("tile data exceeds the grid")
	ErrMalformedTileData = errors.New("malformed tile data")
)
