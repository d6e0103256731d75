// Package warp holds the parametric motion models that the aligner solves for.
//
// A warp maps template coordinates into target coordinates. Every family is
// parameterised so that all-zero parameters is the identity, which is what
// the additive update in the aligner expects.
package warp

import(
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

var(
	ErrParameterCount = errors.New("wrong number of warp parameters")
	ErrNotInvertible  = errors.New("warp is not invertible")
	ErrUnknownKind    = errors.New("unknown warp kind")
)

type Kind int

const(
	Translation Kind = iota
	Euclidean
	Similarity
	Affine
	Projective
)

var kindNames = []string{"translation", "euclidean", "similarity", "affine", "projective"}
var kindParams = []int{2, 3, 4, 6, 8}

func (k Kind)String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind)NumParameters() int {
	if k < 0 || int(k) >= len(kindParams) {
		return 0
	}
	return kindParams[k]
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return Translation, fmt.Errorf("%w: '%s'", ErrUnknownKind, s)
}

func (k Kind)MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *Kind)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	kind, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Point is a location in continuous image coordinates; pixel (i,j) has its
// center at (i+0.5, j+0.5).
type Point struct {
	X, Y float64
}

func (p Point)String() string { return fmt.Sprintf("(%.3f,%.3f)", p.X, p.Y) }

// Warp is a parametric 2D motion model.
type Warp interface {
	Kind() Kind
	NumParameters() int

	// SetIdentity zeroes the parameters.
	SetIdentity()

	// Parameters returns a copy of the parameter vector.
	Parameters() *mat.VecDense

	// SetParameters overwrites the parameters; the vector length must match
	// NumParameters, else ErrParameterCount.
	SetParameters(p mat.Vector) error

	// Apply maps a template point into the target.
	Apply(p Point) Point

	// Jacobian fills dst (2 x NumParameters) with the partial derivatives of
	// Apply(p) with respect to each parameter, evaluated at the current
	// parameters. If dst is nil or the wrong shape, a new matrix is allocated.
	Jacobian(p Point, dst *mat.Dense) *mat.Dense

	// ConstantJacobian is true if the Jacobian is the same at every point,
	// so callers may evaluate it once.
	ConstantJacobian() bool

	// Matrix is the homogeneous 3x3 form of the warp.
	Matrix() emath.Mat3
}

// New returns an identity warp of the given kind.
func New(kind Kind) Warp {
	switch kind {
	case Translation: return NewTranslation()
	case Euclidean:   return NewEuclidean()
	case Similarity:  return NewSimilarity()
	case Affine:      return NewAffine()
	case Projective:  return NewProjective()
	}
	panic(fmt.Sprintf("warp.New: %v", kind))
}

// NewWithParameters builds a warp and sets its parameters from a plain slice.
func NewWithParameters(kind Kind, params []float64) (Warp, error) {
	if kind.NumParameters() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	w := New(kind)
	if len(params) == 0 {
		return w, nil
	}
	if err := w.SetParameters(mat.NewVecDense(len(params), append([]float64{}, params...))); err != nil {
		return nil, err
	}
	return w, nil
}

func Clone(w Warp) Warp {
	w2 := New(w.Kind())
	w2.SetParameters(w.Parameters())
	return w2
}

// Invert returns the matrix of the inverse mapping, target to template.
func Invert(w Warp) (emath.Mat3, error) {
	inv, err := w.Matrix().Inverse()
	if err != nil {
		return emath.Mat3{}, fmt.Errorf("%w: %s: %v", ErrNotInvertible, Format(w), err)
	}
	return inv, nil
}

// ParamSlice copies the parameters out into a plain slice, e.g. for yaml.
func ParamSlice(w Warp) []float64 {
	p := w.Parameters()
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = p.AtVec(i)
	}
	return out
}

func Format(w Warp) string {
	strs := []string{}
	for _, v := range ParamSlice(w) {
		strs = append(strs, fmt.Sprintf("%.5f", v))
	}
	return fmt.Sprintf("%s[%s]", w.Kind(), strings.Join(strs, ", "))
}
