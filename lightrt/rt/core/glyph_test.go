package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	assert.Equal(t, float32(30), r.Width())
	assert.Equal(t, float32(40), r.Height())
	assert.Equal(t, mgl32.Vec2{25, 40}, r.Center())
	assert.False(t, r.Empty())
	assert.True(t, NewRect(0, 0, 0, 5).Empty())

	assert.True(t, r.Contains(mgl32.Vec2{10, 20}), "edges are inclusive")
	assert.True(t, r.Contains(mgl32.Vec2{40, 60}))
	assert.False(t, r.Contains(mgl32.Vec2{41, 60}))

	e := r.Expand(2)
	assert.Equal(t, mgl32.Vec2{8, 18}, e.Min)
	assert.Equal(t, mgl32.Vec2{42, 62}, e.Max)
	assert.True(t, e.Contains(mgl32.Vec2{41, 60}))
}
