package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-5

func TestVec3Ops(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), a.Add(b))
	assert.Equal(t, NewVec3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, NewVec3(2, 4, 6), a.Scale(2))
	assert.InDelta(t, 32.0, float64(a.Dot(b)), epsilon)
}

func TestVec3Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := x.Cross(y)
	assert.InDelta(t, 0, float64(z.X), epsilon)
	assert.InDelta(t, 0, float64(z.Y), epsilon)
	assert.InDelta(t, 1, float64(z.Z), epsilon)
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	assert.InDelta(t, 1.0, float64(v.Length()), epsilon)
	assert.InDelta(t, 0.6, float64(v.X), epsilon)
	assert.InDelta(t, 0.8, float64(v.Z), epsilon)

	zero := NewVec3Zero().Normalized()
	assert.Equal(t, NewVec3Zero(), zero)
}

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Translation(NewVec3(1, 2, 3))

	assert.Equal(t, m, id.Mul(m))
	assert.Equal(t, m, m.Mul(id))
}

func TestMat4TranslationCompose(t *testing.T) {
	a := NewMat4Translation(NewVec3(1, 0, 0))
	b := NewMat4Translation(NewVec3(0, 2, 0))
	c := a.Mul(b)

	assert.InDelta(t, 1.0, float64(c.Data[12]), epsilon)
	assert.InDelta(t, 2.0, float64(c.Data[13]), epsilon)
	assert.InDelta(t, 0.0, float64(c.Data[14]), epsilon)
}

func TestMat4EulerYRotatesQuarterTurn(t *testing.T) {
	m := NewMat4EulerY(Pi / 2)
	assert.InDelta(t, 0.0, float64(m.Data[0]), epsilon)
	assert.InDelta(t, -1.0, float64(m.Data[2]), epsilon)
	assert.InDelta(t, 1.0, float64(m.Data[8]), epsilon)
}

func TestMat4Perspective(t *testing.T) {
	m := NewMat4Perspective(Pi/2, 16.0/9.0, 0.1, 100.0)
	// w term carries -z through for the divide.
	assert.InDelta(t, -1.0, float64(m.Data[11]), epsilon)
	assert.InDelta(t, 0.0, float64(m.Data[15]), epsilon)
	// fov of 90 degrees puts 1/tan(fov/2) at 1 on the y scale.
	assert.InDelta(t, 1.0, float64(m.Data[5]), epsilon)
}

func TestMat4LookAtOrigin(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := NewMat4LookAt(eye, NewVec3Zero(), NewVec3(0, 1, 0))

	// Looking down -z from +z: forward is -z.
	fwd := m.Forward()
	assert.InDelta(t, 0.0, float64(fwd.X), epsilon)
	assert.InDelta(t, 0.0, float64(fwd.Y), epsilon)
	assert.InDelta(t, -1.0, float64(fwd.Z), epsilon)
}
