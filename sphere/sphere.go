// Public domain.

// Package sphere provides spherical geometry primitives for polar wander
// computations:  conversion between geographic and cartesian coordinates,
// z-y-z Euler rotation matrices, and rotation of a point about an
// arbitrary pole.
//
// Longitudes returned from this package are normalized to [0°, 360°).
// That is the longitude convention held throughout the module; any
// shifting for presentation is left to callers.
package sphere

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// Cartesian converts a geographic direction and norm to a cartesian
// vector, with z toward the north pole and x toward the prime meridian.
//
// Latitude must be in [-90°, 90°] and norm must be non-negative.
func Cartesian(lon, lat unit.Angle, norm float64) (coord.Cart, error) {
	// slack of a nanodegree forgives round trips through radians
	if d := lat.Deg(); d < -90-1e-9 || d > 90+1e-9 {
		return coord.Cart{}, fmt.Errorf("sphere: latitude %.6g out of range", d)
	}
	if norm < 0 {
		return coord.Cart{}, fmt.Errorf("sphere: negative norm %.6g", norm)
	}
	colat := math.Pi/2 - lat.Rad()
	sc, cc := math.Sincos(colat)
	sl, cl := math.Sincos(lon.Rad())
	return coord.Cart{
		X: norm * sc * cl,
		Y: norm * sc * sl,
		Z: norm * cc,
	}, nil
}

// Spherical is the inverse of Cartesian.  Longitude is in [0°, 360°).
// The zero vector has no direction and is rejected.
func Spherical(c *coord.Cart) (lon, lat unit.Angle, norm float64, err error) {
	norm = math.Sqrt(c.Square())
	if norm == 0 {
		err = fmt.Errorf("sphere: zero vector has no spherical direction")
		return
	}
	lon = ClampLon(unit.Angle(math.Atan2(c.Y, c.X)))
	lat = unit.Angle(math.Pi/2 - math.Acos(c.Z/norm))
	return
}

// ClampLon normalizes an angle into [0°, 360°).
func ClampLon(lon unit.Angle) unit.Angle {
	return lon.Mod1()
}

// rotY builds the elemental rotation about the y axis.
func rotY(theta unit.Angle) coord.M3 {
	s, c := math.Sincos(theta.Rad())
	return coord.M3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// rotZ builds the elemental rotation about the z axis.
func rotZ(theta unit.Angle) coord.M3 {
	s, c := math.Sincos(theta.Rad())
	return coord.M3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// mult3 computes the matrix product a·b.  (Package coord multiplies
// matrices into vectors but has no matrix-matrix product.)
func mult3(a, b *coord.M3) coord.M3 {
	var m coord.M3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i*3+j] = a[i*3]*b[j] + a[i*3+1]*b[3+j] + a[i*3+2]*b[6+j]
		}
	}
	return m
}

// RotationMatrix builds the rigid body rotation composed of alpha about
// the z axis, then beta about the y axis, then gamma about the z axis
// again, combined as gamma∘beta∘alpha.
func RotationMatrix(alpha, beta, gamma unit.Angle) coord.M3 {
	ra := rotZ(alpha)
	rb := rotY(beta)
	rg := rotZ(gamma)
	m := mult3(&rb, &ra)
	return mult3(&rg, &m)
}

// RotatePoint rotates p by angle about the axis through pole, per the
// right-hand rule.  The frame is first rotated so the pole sits at
// coordinate north (undoing its longitude, then its colatitude), a pure
// z rotation by angle is applied, and the frame rotation is undone.
func RotatePoint(p, pole *coord.Cart, angle unit.Angle) (coord.Cart, error) {
	lon, lat, _, err := Spherical(pole)
	if err != nil {
		return coord.Cart{}, fmt.Errorf("sphere: rotation pole: %v", err)
	}
	colat := unit.Angle(math.Pi/2) - lat
	m1 := RotationMatrix(-lon, -colat, angle)
	m2 := RotationMatrix(0, colat, lon)
	m := mult3(&m2, &m1)
	var r coord.Cart
	r.Mult3(&m, p)
	return r, nil
}
