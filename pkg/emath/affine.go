package emath

// 2D planar transforms: the 2x3 affine form that x/image/draw wants, and full
// 3x3 homogeneous matrices for the warp families

import(
	"fmt"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// Use a local type so we can hang methods off it
type Aff3 f64.Aff3

// Homogeneous 3x3 matrices, row major
type Vec3 f64.Vec3
type Mat3 f64.Mat3

func Mat3Identity() Mat3 {
	return Mat3{1,0,0,  0,1,0,  0,0,1}
}

func (a Mat3)Mult(b Mat3) Mat3 {
	return Mat3{
		a[3*0+0]*b[3*0+0] + a[3*0+1]*b[3*1+0] + a[3*0+2]*b[3*2+0],
		a[3*0+0]*b[3*0+1] + a[3*0+1]*b[3*1+1] + a[3*0+2]*b[3*2+1],
		a[3*0+0]*b[3*0+2] + a[3*0+1]*b[3*1+2] + a[3*0+2]*b[3*2+2],

		a[3*1+0]*b[3*0+0] + a[3*1+1]*b[3*1+0] + a[3*1+2]*b[3*2+0],
		a[3*1+0]*b[3*0+1] + a[3*1+1]*b[3*1+1] + a[3*1+2]*b[3*2+1],
		a[3*1+0]*b[3*0+2] + a[3*1+1]*b[3*1+2] + a[3*1+2]*b[3*2+2],

		a[3*2+0]*b[3*0+0] + a[3*2+1]*b[3*1+0] + a[3*2+2]*b[3*2+0],
		a[3*2+0]*b[3*0+1] + a[3*2+1]*b[3*1+1] + a[3*2+2]*b[3*2+1],
		a[3*2+0]*b[3*0+2] + a[3*2+1]*b[3*1+2] + a[3*2+2]*b[3*2+2],
	}
}

func (m Mat3)Apply(v Vec3) Vec3 {
	return Vec3{
		(m[3*0+0]*v[0] + m[3*0+1]*v[1] + m[3*0+2]*v[2]),
		(m[3*1+0]*v[0] + m[3*1+1]*v[1] + m[3*1+2]*v[2]),
		(m[3*2+0]*v[0] + m[3*2+1]*v[1] + m[3*2+2]*v[2]),
	}
}

// Project maps the 2D point (x,y) through the matrix, dividing out the
// homogeneous coordinate.
func (m Mat3)Project(x, y float64) (float64, float64) {
	v := m.Apply(Vec3{x, y, 1})
	return v[0]/v[2], v[1]/v[2]
}

// IsAffine is true when the bottom row is [0 0 1].
func (m Mat3)IsAffine() bool {
	return m[6] == 0 && m[7] == 0 && m[8] == 1
}

// Aff3 drops the bottom row; only meaningful when IsAffine().
func (m Mat3)Aff3() Aff3 {
	return Aff3{m[0], m[1], m[2],  m[3], m[4], m[5]}
}

func (m Mat3)Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{m[0],m[1],m[2], m[3],m[4],m[5], m[6],m[7],m[8]})
}

// Inverse returns the matrix inverse. Singular (or numerically hopeless)
// matrices produce an error.
func (m Mat3)Inverse() (Mat3, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return Mat3{}, fmt.Errorf("inverting matrix: %v", err)
	}
	out := Mat3{}
	for r:=0; r<3; r++ {
		for c:=0; c<3; c++ {
			out[3*r+c] = inv.At(r, c)
		}
	}
	return out, nil
}

func (m Mat3)String() string {
	str := fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*0+0], m[3*0+1], m[3*0+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*1+0], m[3*1+1], m[3*1+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*2+0], m[3*2+1], m[3*2+2])
	return str
}
func (v Vec3)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}
