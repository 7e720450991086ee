// Package rotation samples random 3D rotations for mesh rendering.
//
// A sample is composed of independent rotations about the x, y and z axes:
// x and y are drawn uniformly from [-pi/4, pi/4], z from [0, 2*pi). The
// composition order is z∘y∘x (x applied first), expressed as a 4x4
// homogeneous transform.
package rotation

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// maxTilt bounds the x and y rotation angles.
const maxTilt = math.Pi / 4

// Random samples a rotation from rng and returns it as a 4x4 homogeneous
// transform. The result is always a proper rotation (orthogonal 3x3 block,
// determinant 1).
func Random(rng *rand.Rand) *mat.Dense {
	angleX := rng.Float64()*2*maxTilt - maxTilt
	angleY := rng.Float64()*2*maxTilt - maxTilt
	angleZ := rng.Float64() * 2 * math.Pi
	return Compose(angleX, angleY, angleZ)
}

// Compose builds the z∘y∘x rotation for the given axis angles.
func Compose(angleX, angleY, angleZ float64) *mat.Dense {
	var zy, zyx mat.Dense
	zy.Mul(AboutZ(angleZ), AboutY(angleY))
	zyx.Mul(&zy, AboutX(angleX))
	return &zyx
}

// AboutX returns the homogeneous rotation about the x axis.
func AboutX(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// AboutY returns the homogeneous rotation about the y axis.
func AboutY(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(4, 4, []float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// AboutZ returns the homogeneous rotation about the z axis.
func AboutZ(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}
