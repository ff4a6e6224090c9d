package preview

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// ballFill is the share of the image width covered by the sphere.
const ballFill = 0.95

type BallOptions struct {
	Size       int
	Material   core.Material
	Opacity    float32
	ShadowMaps [core.MaxShadowCasters]shading.ShadowMap
	Sampler    shading.Sampler
}

func DefaultBallOptions(size int) BallOptions {
	return BallOptions{
		Size:     size,
		Material: core.DefaultMaterial(),
		Opacity:  1,
		Sampler:  shading.DefaultSampler(),
	}
}

// BallRenderer shades a unit sphere facing the viewer, one row per pool task.
// The pool is reused across renders.
type BallRenderer struct {
	pool   worker.DynamicWorkerPool
	mu     sync.Mutex
	nextID int
}

// NewBallRenderer starts a pool of n workers; n <= 0 uses GOMAXPROCS.
func NewBallRenderer(n int) *BallRenderer {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &BallRenderer{pool: worker.NewDynamicWorkerPool(n, 256, 1*time.Second)}
}

// Render evaluates shading.Composite for every pixel inside the sphere. Pixels outside
// stay fully transparent. Each task reads only u and opts, so the result does not depend
// on scheduling.
func (r *BallRenderer) Render(u core.LightUniform, opts BallOptions) *image.NRGBA {
	size := opts.Size
	if size < 1 {
		size = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	frag := shading.NewFragment(opts.Material, mgl32.Vec3{0, 0, 1})
	frag.Opacity = opts.Opacity

	r.mu.Lock()
	defer r.mu.Unlock()

	var wg sync.WaitGroup
	for y := 0; y < size; y++ {
		wg.Add(1)
		row := y
		id := r.nextID
		r.nextID++
		r.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				shadeRow(img, row, size, frag, u, opts)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return img
}

func shadeRow(img *image.NRGBA, y, size int, frag shading.Fragment, u core.LightUniform, opts BallOptions) {
	c := float32(size) / 2
	radius := c * ballFill
	white := mgl32.Vec4{1, 1, 1, 1}

	for x := 0; x < size; x++ {
		dx := (float32(x) + 0.5 - c) / radius
		dy := (float32(y) + 0.5 - c) / radius
		r2 := dx*dx + dy*dy
		if r2 > 1 {
			continue
		}
		// Image y grows downwards.
		n := mgl32.Vec3{dx, -dy, float32(math.Sqrt(float64(1 - r2)))}

		f := frag
		for i := 0; i < core.MaxShadowCasters; i++ {
			f.ShadowPosition[i] = shading.LightSpacePosition(n, u.Lights[i].Direction, 1)
		}
		out := shading.Composite(f, n, u, white, opts.ShadowMaps, opts.Sampler)
		img.SetNRGBA(x, y, color.NRGBA{
			R: unit8(out.X()),
			G: unit8(out.Y()),
			B: unit8(out.Z()),
			A: unit8(out.W()),
		})
	}
}
