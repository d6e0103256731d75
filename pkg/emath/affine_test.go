package emath

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat3Inverse(t *testing.T) {
	m := Mat3{1.1, -0.2, 4,   0.3, 0.9, -2,   0.001, 0.002, 1}
	inv, err := m.Inverse()
	require.NoError(t, err)

	id := m.Mult(inv)
	want := Mat3Identity()
	for i := range id {
		assert.InDelta(t, want[i], id[i], 1e-9)
	}

	x, y := m.Project(10, 20)
	bx, by := inv.Project(x, y)
	assert.InDelta(t, 10.0, bx, 1e-9)
	assert.InDelta(t, 20.0, by, 1e-9)
}

func TestMat3Singular(t *testing.T) {
	m := Mat3{1, 2, 3,   2, 4, 6,   0, 0, 1}
	_, err := m.Inverse()
	assert.Error(t, err)
}

func TestMat3Aff3(t *testing.T) {
	m := Mat3{1, 0, 5,   0, 1, -3,   0, 0, 1}
	assert.True(t, m.IsAffine())
	assert.Equal(t, Aff3{1, 0, 5,   0, 1, -3}, m.Aff3())

	p := Mat3{1, 0, 0,   0, 1, 0,   0.01, 0, 1}
	assert.False(t, p.IsAffine())
}
