package util

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis aligned box given by its center and full size per axis.
type Bounds struct {
	center  mgl32.Vec3
	extents mgl32.Vec3
	empty   bool
}

// EmptyBounds contains nothing until the first point is added.
func EmptyBounds() Bounds {
	return Bounds{empty: true}
}

func NewBoundsFromMin(min, extents mgl32.Vec3) Bounds {
	return Bounds{
		center:  min.Add(extents.Mul(0.5)),
		extents: extents,
	}
}

func (b Bounds) IsEmpty() bool {
	return b.empty
}

func (b Bounds) Min() mgl32.Vec3 {
	return b.center.Sub(b.extents.Mul(0.5))
}

func (b Bounds) Max() mgl32.Vec3 {
	return b.center.Add(b.extents.Mul(0.5))
}

func (b Bounds) Center() mgl32.Vec3 {
	return b.center
}

func (b Bounds) Size() mgl32.Vec3 {
	return b.extents
}

// Extend grows b so it also contains point.
func (b Bounds) Extend(point mgl32.Vec3) Bounds {
	if b.empty {
		return NewBoundsFromMin(point, mgl32.Vec3{})
	}
	minVal, maxVal := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		minVal[i] = float32(math.Min(float64(minVal[i]), float64(point[i])))
		maxVal[i] = float32(math.Max(float64(maxVal[i]), float64(point[i])))
	}
	return NewBoundsFromMin(minVal, maxVal.Sub(minVal))
}

func (b Bounds) Contains(point mgl32.Vec3) bool {
	if b.empty {
		return false
	}
	minVal := b.Min()
	maxVal := b.Max()
	return point.X() >= minVal.X() && point.X() <= maxVal.X() &&
		point.Y() >= minVal.Y() && point.Y() <= maxVal.Y() &&
		point.Z() >= minVal.Z() && point.Z() <= maxVal.Z()
}

func (b Bounds) String() string {
	if b.empty {
		return "(empty)"
	}
	minVal, maxVal := b.Min(), b.Max()
	return fmt.Sprintf("(%.2f, %.2f, %.2f) - (%.2f, %.2f, %.2f)", minVal.X(), minVal.Y(), minVal.Z(), maxVal.X(), maxVal.Y(), maxVal.Z())
}
