package util

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TileRotation rotates by pitch degrees about the local X axis first, then by yaw degrees about Y.
func TileRotation(pitchDegrees, yawDegrees int32) mgl32.Mat4 {
	return rotateY(yawDegrees).Mul4(rotateX(pitchDegrees))
}

// PlacementMatrix rotates first and translates afterwards.
func PlacementMatrix(position mgl32.Vec3, pitchDegrees, yawDegrees int32) mgl32.Mat4 {
	translation := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	return translation.Mul4(TileRotation(pitchDegrees, yawDegrees))
}

// RotationPart returns m with its translation zeroed.
func RotationPart(m mgl32.Mat4) mgl32.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}

func TranslationPart(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

func rotateX(degrees int32) mgl32.Mat4 {
	return snapQuarterTurn(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(degrees))), degrees)
}

func rotateY(degrees int32) mgl32.Mat4 {
	return snapQuarterTurn(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(degrees))), degrees)
}

// snapQuarterTurn rounds a rotation by a multiple of 90 degrees to exact -1, 0 and 1 entries.
// float32 sin and cos leave residues like -4.371139e-08 that push vertices off the grid.
func snapQuarterTurn(m mgl32.Mat4, degrees int32) mgl32.Mat4 {
	if degrees%90 != 0 {
		return m
	}
	for i := range m {
		m[i] = float32(math.Round(float64(m[i])))
	}
	return m
}
