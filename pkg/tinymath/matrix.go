package tinymath

import "math"

// Matrix4d is a row-major 4x4 matrix. Element (row, col) lives at
// index row*4+col. Composition and point transform follow USD's
// row-vector, post-multiply convention: p' = p·M, and concatenating
// xformOpOrder = [A,B,C] yields M = A·B·C (§4.8).
type Matrix4d [16]float64

func (m Matrix4d) at(r, c int) float64  { return m[r*4+c] }
func (m *Matrix4d) set(r, c int, v float64) { m[r*4+c] = v }

// Identity4d returns the 4x4 identity matrix.
func Identity4d() Matrix4d {
	var m Matrix4d
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// NewMatrix4dRows builds a matrix from 16 values given row by row.
func NewMatrix4dRows(v [16]float64) Matrix4d { return Matrix4d(v) }

// Mul returns m·other (this matrix applied first under the row-vector
// convention: a point transforms as p·m·other).
func (m Matrix4d) Mul(other Matrix4d) Matrix4d {
	var out Matrix4d
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m.at(r, k) * other.at(k, c)
			}
			out.set(r, c, sum)
		}
	}
	return out
}

// ConcatXformOps multiplies a list of per-op matrices in xformOpOrder,
// left to right, per §4.8: M = ops[0]·ops[1]·...·ops[n-1].
func ConcatXformOps(ops []Matrix4d) Matrix4d {
	m := Identity4d()
	for _, op := range ops {
		m = m.Mul(op)
	}
	return m
}

// TransformPoint applies m to a point (w=1) as a row vector: p' = p·m.
func (m Matrix4d) TransformPoint(p Vec3d) Vec3d {
	x := p[0]*m.at(0, 0) + p[1]*m.at(1, 0) + p[2]*m.at(2, 0) + m.at(3, 0)
	y := p[0]*m.at(0, 1) + p[1]*m.at(1, 1) + p[2]*m.at(2, 1) + m.at(3, 1)
	z := p[0]*m.at(0, 2) + p[1]*m.at(1, 2) + p[2]*m.at(2, 2) + m.at(3, 2)
	return Vec3d{x, y, z}
}

// TransformVector applies the upper 3x3 of m to a direction vector
// (ignores translation).
func (m Matrix4d) TransformVector(v Vec3d) Vec3d {
	x := v[0]*m.at(0, 0) + v[1]*m.at(1, 0) + v[2]*m.at(2, 0)
	y := v[0]*m.at(0, 1) + v[1]*m.at(1, 1) + v[2]*m.at(2, 1)
	z := v[0]*m.at(0, 2) + v[1]*m.at(1, 2) + v[2]*m.at(2, 2)
	return Vec3d{x, y, z}
}

// Transpose returns the transposed matrix.
func (m Matrix4d) Transpose() Matrix4d {
	var out Matrix4d
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.set(c, r, m.at(r, c))
		}
	}
	return out
}

// Determinant computes the 4x4 determinant via cofactor expansion.
func (m Matrix4d) Determinant() float64 {
	n11, n12, n13, n14 := m.at(0, 0), m.at(0, 1), m.at(0, 2), m.at(0, 3)
	n21, n22, n23, n24 := m.at(1, 0), m.at(1, 1), m.at(1, 2), m.at(1, 3)
	n31, n32, n33, n34 := m.at(2, 0), m.at(2, 1), m.at(2, 2), m.at(2, 3)
	n41, n42, n43, n44 := m.at(3, 0), m.at(3, 1), m.at(3, 2), m.at(3, 3)

	return n41*(+n14*n23*n32-n13*n24*n32-n14*n22*n33+n12*n24*n33+n13*n22*n34-n12*n23*n34) +
		n42*(+n11*n23*n34-n11*n24*n33+n14*n21*n33-n13*n21*n34+n13*n24*n31-n14*n23*n31) +
		n43*(+n11*n24*n32-n11*n22*n34-n14*n21*n32+n12*n21*n34+n14*n22*n31-n12*n24*n31) +
		n44*(-n13*n22*n31-n11*n23*n32+n11*n22*n33+n13*n21*n32-n12*n21*n33+n12*n23*n31)
}

// Inverse returns the inverse of m and true, or the zero matrix and
// false if |det(m)| < 1e-9 per §4.8 / §8.
func (m Matrix4d) Inverse() (Matrix4d, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-9 {
		return Matrix4d{}, false
	}

	n11, n12, n13, n14 := m.at(0, 0), m.at(0, 1), m.at(0, 2), m.at(0, 3)
	n21, n22, n23, n24 := m.at(1, 0), m.at(1, 1), m.at(1, 2), m.at(1, 3)
	n31, n32, n33, n34 := m.at(2, 0), m.at(2, 1), m.at(2, 2), m.at(2, 3)
	n41, n42, n43, n44 := m.at(3, 0), m.at(3, 1), m.at(3, 2), m.at(3, 3)

	// Adjugate via cofactor matrix, transposed, then scaled by 1/det.
	var adj Matrix4d
	cof := func(a, b, c, d, e, f, g, h, i float64) float64 {
		return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	}
	adj.set(0, 0, cof(n22, n23, n24, n32, n33, n34, n42, n43, n44))
	adj.set(1, 0, -cof(n21, n23, n24, n31, n33, n34, n41, n43, n44))
	adj.set(2, 0, cof(n21, n22, n24, n31, n32, n34, n41, n42, n44))
	adj.set(3, 0, -cof(n21, n22, n23, n31, n32, n33, n41, n42, n43))

	adj.set(0, 1, -cof(n12, n13, n14, n32, n33, n34, n42, n43, n44))
	adj.set(1, 1, cof(n11, n13, n14, n31, n33, n34, n41, n43, n44))
	adj.set(2, 1, -cof(n11, n12, n14, n31, n32, n34, n41, n42, n44))
	adj.set(3, 1, cof(n11, n12, n13, n31, n32, n33, n41, n42, n43))

	adj.set(0, 2, cof(n12, n13, n14, n22, n23, n24, n42, n43, n44))
	adj.set(1, 2, -cof(n11, n13, n14, n21, n23, n24, n41, n43, n44))
	adj.set(2, 2, cof(n11, n12, n14, n21, n22, n24, n41, n42, n44))
	adj.set(3, 2, -cof(n11, n12, n13, n21, n22, n23, n41, n42, n43))

	adj.set(0, 3, -cof(n12, n13, n14, n22, n23, n24, n32, n33, n34))
	adj.set(1, 3, cof(n11, n13, n14, n21, n23, n24, n31, n33, n34))
	adj.set(2, 3, -cof(n11, n12, n14, n21, n22, n24, n31, n32, n34))
	adj.set(3, 3, cof(n11, n12, n13, n21, n22, n23, n31, n32, n33))

	invDet := 1.0 / det
	var out Matrix4d
	for i := range adj {
		out[i] = adj[i] * invDet
	}
	return out, true
}

// NewTranslate builds a translation matrix (row-vector convention:
// translation lives in the fourth row).
func NewTranslate(v Vec3d) Matrix4d {
	m := Identity4d()
	m.set(3, 0, v[0])
	m.set(3, 1, v[1])
	m.set(3, 2, v[2])
	return m
}

// NewScale builds a scale matrix.
func NewScale(v Vec3d) Matrix4d {
	m := Identity4d()
	m.set(0, 0, v[0])
	m.set(1, 1, v[1])
	m.set(2, 2, v[2])
	return m
}

// NewRotateX/Y/Z build single-axis rotation matrices (radians),
// row-vector convention.
func NewRotateX(rad float64) Matrix4d {
	c, s := math.Cos(rad), math.Sin(rad)
	m := Identity4d()
	m.set(1, 1, c)
	m.set(1, 2, s)
	m.set(2, 1, -s)
	m.set(2, 2, c)
	return m
}

func NewRotateY(rad float64) Matrix4d {
	c, s := math.Cos(rad), math.Sin(rad)
	m := Identity4d()
	m.set(0, 0, c)
	m.set(0, 2, -s)
	m.set(2, 0, s)
	m.set(2, 2, c)
	return m
}

func NewRotateZ(rad float64) Matrix4d {
	c, s := math.Cos(rad), math.Sin(rad)
	m := Identity4d()
	m.set(0, 0, c)
	m.set(0, 1, s)
	m.set(1, 0, -s)
	m.set(1, 1, c)
	return m
}

// NewRotateEuler builds a composite rotation matrix from per-axis
// radian angles (x, y, z) using the named axis order, e.g. order
// "XYZ" composes Rx·Ry·Rz left to right. If invert is true the angles
// are negated and the axis order reversed, per the `!invert!` xformOp
// rule in §9.
func NewRotateEuler(order string, angles Vec3d, invert bool) Matrix4d {
	axisMat := map[byte]func(float64) Matrix4d{
		'X': NewRotateX,
		'Y': NewRotateY,
		'Z': NewRotateZ,
	}
	axisAngle := map[byte]float64{'X': angles[0], 'Y': angles[1], 'Z': angles[2]}

	seq := []byte(order)
	if invert {
		for k := range axisAngle {
			axisAngle[k] = -axisAngle[k]
		}
		for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}

	m := Identity4d()
	for _, ax := range seq {
		m = m.Mul(axisMat[ax](axisAngle[ax]))
	}
	return m
}

// Matrix4dFromQuat builds a rotation matrix from a unit quaternion,
// row-vector convention.
func Matrix4dFromQuat(q Quatd) Matrix4d {
	q = q.Normalized()
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m := Identity4d()
	m.set(0, 0, 1-2*(y*y+z*z))
	m.set(0, 1, 2*(x*y+z*w))
	m.set(0, 2, 2*(x*z-y*w))
	m.set(1, 0, 2*(x*y-z*w))
	m.set(1, 1, 1-2*(x*x+z*z))
	m.set(1, 2, 2*(y*z+x*w))
	m.set(2, 0, 2*(x*z+y*w))
	m.set(2, 1, 2*(y*z-x*w))
	m.set(2, 2, 1-2*(x*x+y*y))
	return m
}

// Matrix3d is a row-major 3x3 matrix used for UsdTransform2d's texcoord
// transform S·R·T.
type Matrix3d [9]float64

func Identity3d() Matrix3d {
	var m Matrix3d
	m[0], m[4], m[8] = 1, 1, 1
	return m
}

func (m Matrix3d) at(r, c int) float64      { return m[r*3+c] }
func (m *Matrix3d) set(r, c int, v float64) { m[r*3+c] = v }

func (m Matrix3d) Mul(other Matrix3d) Matrix3d {
	var out Matrix3d
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m.at(r, k) * other.at(k, c)
			}
			out.set(r, c, sum)
		}
	}
	return out
}

// NewTexcoordTransform builds S·R·T (scale, then rotate, then
// translate, row-vector convention) for UsdTransform2d.
func NewTexcoordTransform(scale Vec2d, rotationDeg float64, translation Vec2d) Matrix3d {
	s := Identity3d()
	s.set(0, 0, scale[0])
	s.set(1, 1, scale[1])

	rad := rotationDeg * math.Pi / 180.0
	c, sn := math.Cos(rad), math.Sin(rad)
	r := Identity3d()
	r.set(0, 0, c)
	r.set(0, 1, sn)
	r.set(1, 0, -sn)
	r.set(1, 1, c)

	t := Identity3d()
	t.set(2, 0, translation[0])
	t.set(2, 1, translation[1])

	return s.Mul(r).Mul(t)
}

func (m Matrix3d) TransformPoint2(p Vec2d) Vec2d {
	x := p[0]*m.at(0, 0) + p[1]*m.at(1, 0) + m.at(2, 0)
	y := p[0]*m.at(0, 1) + p[1]*m.at(1, 1) + m.at(2, 1)
	return Vec2d{x, y}
}
