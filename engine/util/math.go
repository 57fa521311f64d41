package util

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

func ApproxEqual(a, b, epsilon float32) bool {
	return Abs(a-b) <= epsilon
}

func ApproxEqualVec3(a, b mgl32.Vec3, epsilon float32) bool {
	return ApproxEqual(a.X(), b.X(), epsilon) && ApproxEqual(a.Y(), b.Y(), epsilon) && ApproxEqual(a.Z(), b.Z(), epsilon)
}

// Plane is the set of points p with Normal.Dot(p) == Distance.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// TrianglePlane returns the plane through a, b and c with the normal given by the winding order.
// Degenerate triangles yield a zero normal.
func TrianglePlane(a, b, c mgl32.Vec3) Plane {
	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length == 0 {
		return Plane{}
	}
	normal = normal.Mul(1 / length)
	return Plane{Normal: normal, Distance: normal.Dot(a)}
}

// AxisDirection reports the world axis (0=X, 1=Y, 2=Z) and sign a unit normal points along,
// ok is false if the normal is not aligned with one of the six axis directions.
func AxisDirection(normal mgl32.Vec3, epsilon float32) (axis int, sign int32, ok bool) {
	for i := 0; i < 3; i++ {
		if ApproxEqual(Abs(normal[i]), 1, epsilon) {
			j, k := (i+1)%3, (i+2)%3
			if !ApproxEqual(normal[j], 0, epsilon) || !ApproxEqual(normal[k], 0, epsilon) {
				return 0, 0, false
			}
			if normal[i] > 0 {
				return i, 1, true
			}
			return i, -1, true
		}
	}
	return 0, 0, false
}
