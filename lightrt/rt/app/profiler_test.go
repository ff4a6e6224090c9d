package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler() (*Profiler, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler()
	p.now = clock.now
	p.Reset()
	return p, clock
}

func TestProfiler_ScopesAverageOverFrames(t *testing.T) {
	p, clock := newTestProfiler()

	for i := 0; i < 4; i++ {
		end := p.Scope("render")
		clock.advance(2 * time.Millisecond)
		end()
		p.FrameDone(time.Second)
	}

	assert.Equal(t, 8*time.Millisecond, p.totals["render"])
	assert.Contains(t, p.Stats(), "render       2.000 ms")
	assert.InDelta(t, 500.0, p.FPS(), 1e-6)
}

func TestProfiler_FrameDoneReportsWindow(t *testing.T) {
	p, clock := newTestProfiler()

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.FrameDone(time.Second))
	clock.advance(500 * time.Millisecond)
	assert.True(t, p.FrameDone(time.Second))

	p.Reset()
	assert.Equal(t, 0, p.frames)
	assert.Zero(t, p.FPS())
}

func TestProfiler_KeepsScopeOrderAcrossReset(t *testing.T) {
	p, _ := newTestProfiler()
	p.Scope("update")()
	p.Scope("render")()
	p.Reset()
	p.Scope("render")()

	assert.Equal(t, []string{"update", "render"}, p.order)
}

func TestProfiler_EndWithoutBegin(t *testing.T) {
	p, _ := newTestProfiler()
	p.EndScope("missing")
	p.SetCount("lights", 3)
	assert.NotContains(t, p.Stats(), "missing")
	assert.Contains(t, p.Stats(), "lights")
}
