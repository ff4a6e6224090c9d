package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ShadowSampleGrid is the side of the PCF sample grid; ShadowSampleGrid^2 samples per query.
	ShadowSampleGrid = 4
	// MaxBiasSlope caps the slope-scaled bias on grazing surfaces.
	MaxBiasSlope float32 = 10
	// MaxPenumbraScale caps how far PCSS widens the kernel past the base radius.
	MaxPenumbraScale float32 = 8
)

// ShadowMap is a depth texture rendered from a shadow-casting light.
type ShadowMap interface {
	Size() (w, h int)
	// Depth fetches the texel at integer coordinates already inside [0,w)x[0,h).
	Depth(x, y int) float32
}

type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

type AddressMode int

const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
	// AddressClampToBorder reads outside texels as depth 1, i.e. never occluding.
	AddressClampToBorder
)

// Sampler configures how a shadow map is read.
type Sampler struct {
	Filter  FilterMode
	Address AddressMode
}

// DefaultSampler matches the GPU shadow sampler: linear filtering clamped to the edge.
func DefaultSampler() Sampler {
	return Sampler{Filter: FilterLinear, Address: AddressClampToEdge}
}

// Sample reads the depth at uv (0..1, y down) through the sampler.
// A map without texels reads as the far plane.
func (s Sampler) Sample(m ShadowMap, uv mgl32.Vec2) float32 {
	if m == nil {
		return 1
	}
	w, h := m.Size()
	if w <= 0 || h <= 0 {
		return 1
	}
	x := uv.X()*float32(w) - 0.5
	y := uv.Y()*float32(h) - 0.5

	if s.Filter == FilterNearest {
		return s.fetch(m, int(math.Floor(float64(x+0.5))), int(math.Floor(float64(y+0.5))), w, h)
	}

	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	d00 := s.fetch(m, x0, y0, w, h)
	d10 := s.fetch(m, x0+1, y0, w, h)
	d01 := s.fetch(m, x0, y0+1, w, h)
	d11 := s.fetch(m, x0+1, y0+1, w, h)

	top := d00 + (d10-d00)*fx
	bottom := d01 + (d11-d01)*fx
	return top + (bottom-top)*fy
}

func (s Sampler) fetch(m ShadowMap, x, y, w, h int) float32 {
	switch s.Address {
	case AddressRepeat:
		x = ((x % w) + w) % w
		y = ((y % h) + h) % h
	case AddressClampToBorder:
		if x < 0 || y < 0 || x >= w || y >= h {
			return 1
		}
	default:
		x = clampInt(x, 0, w-1)
		y = clampInt(y, 0, h-1)
	}
	return m.Depth(x, y)
}

// ShadowQuery is one fragment's shadow lookup against a single caster.
type ShadowQuery struct {
	// Position is the fragment in the caster's clip space.
	Position mgl32.Vec4
	// BiasFactor is the constant depth bias before slope scaling.
	BiasFactor float32
	// SurfaceAngle is the cosine between the surface normal and the caster direction.
	SurfaceAngle float32
	// SoftenFactor scales the jitter radius; 0 gives a hard edge.
	SoftenFactor float32
	// SampleRadius is the base jitter radius in texels.
	SampleRadius float32
	// PCSS scales the radius by the penumbra estimated from a blocker search over the
	// base kernel: receivers close to their blocker get hard edges, distant ones soft.
	PCSS bool
}

// ShadowCoverage returns the fraction of PCF samples occluded for q: 0 fully lit, 1 fully
// shadowed. A nil or empty map, or a fragment outside the caster's frustum, is fully lit.
func ShadowCoverage(q ShadowQuery, m ShadowMap, s Sampler) float32 {
	if m == nil {
		return 0
	}
	w, h := m.Size()
	if w <= 0 || h <= 0 {
		return 0
	}
	if !(q.Position.W() > 0) {
		return 0
	}

	ndc := q.Position.Vec3().Mul(1 / q.Position.W())
	uv := mgl32.Vec2{ndc.X()*0.5 + 0.5, 0.5 - ndc.Y()*0.5}
	depth := ndc.Z()
	if uv.X() < 0 || uv.X() > 1 || uv.Y() < 0 || uv.Y() > 1 || depth < 0 || depth > 1 {
		return 0
	}

	bias := slopeScaledBias(max32(q.BiasFactor, 0), q.SurfaceAngle)
	radius := max32(q.SampleRadius, 0) * max32(q.SoftenFactor, 0)
	texel := mgl32.Vec2{1 / float32(w), 1 / float32(h)}

	if q.PCSS {
		blocker, ok := averageBlockerDepth(m, s, uv, depth-bias, max32(radius, 1), texel)
		if !ok {
			return 0
		}
		radius *= penumbraScale(depth, blocker)
	}

	occluded := 0
	const n = ShadowSampleGrid
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			stored := s.Sample(m, uv.Add(kernelOffset(uv, i, j, radius, texel)))
			if depth-bias > stored {
				occluded++
			}
		}
	}
	return float32(occluded) / float32(n*n)
}

// kernelOffset is the uv offset of sample (i, j): its grid cell in [-1,1] plus a jitter
// inside the cell, scaled to radius texels.
func kernelOffset(uv mgl32.Vec2, i, j int, radius float32, texel mgl32.Vec2) mgl32.Vec2 {
	const n = ShadowSampleGrid
	seed := uv.Add(mgl32.Vec2{float32(i), float32(j)})
	jx := (float32(i)+Rand(seed))/n*2 - 1
	jy := (float32(j)+Rand(mgl32.Vec2{seed.Y(), seed.X()}))/n*2 - 1
	return mgl32.Vec2{jx * radius * texel.X(), jy * radius * texel.Y()}
}

// averageBlockerDepth averages the stored depths in the search kernel that lie in front of
// receiver. It reports false when nothing blocks.
func averageBlockerDepth(m ShadowMap, s Sampler, uv mgl32.Vec2, receiver, radius float32, texel mgl32.Vec2) (float32, bool) {
	var sum float32
	found := 0
	for i := 0; i < ShadowSampleGrid; i++ {
		for j := 0; j < ShadowSampleGrid; j++ {
			stored := s.Sample(m, uv.Add(kernelOffset(uv, i, j, radius, texel)))
			if stored < receiver {
				sum += stored
				found++
			}
		}
	}
	if found == 0 {
		return 0, false
	}
	return sum / float32(found), true
}

// penumbraScale is the similar-triangles penumbra width (receiver - blocker) / blocker.
func penumbraScale(receiver, blocker float32) float32 {
	if blocker <= 0 {
		return MaxPenumbraScale
	}
	scale := (receiver - blocker) / blocker
	if scale < 0 {
		return 0
	}
	if scale > MaxPenumbraScale {
		return MaxPenumbraScale
	}
	return scale
}

func slopeScaledBias(bias, cosTheta float32) float32 {
	c := clamp01(cosTheta)
	if c == 0 {
		return bias * (1 + MaxBiasSlope)
	}
	slope := float32(math.Sqrt(float64(1-c*c))) / c
	if slope > MaxBiasSlope {
		slope = MaxBiasSlope
	}
	return bias * (1 + slope)
}

// DepthMap is a CPU-side float depth texture.
type DepthMap struct {
	W, H   int
	Values []float32
}

// NewDepthMap returns a w x h map cleared to the far plane.
func NewDepthMap(w, h int) *DepthMap {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m := &DepthMap{W: w, H: h, Values: make([]float32, w*h)}
	m.Fill(1)
	return m
}

// Size reports 0, 0 for a map whose Values do not cover W x H, so such a map reads as
// absent instead of indexing past the end.
func (m *DepthMap) Size() (int, int) {
	if m == nil || m.W <= 0 || m.H <= 0 || len(m.Values) < m.W*m.H {
		return 0, 0
	}
	return m.W, m.H
}

func (m *DepthMap) Depth(x, y int) float32 { return m.Values[y*m.W+x] }

func (m *DepthMap) Set(x, y int, d float32) { m.Values[y*m.W+x] = d }

func (m *DepthMap) Fill(d float32) {
	for i := range m.Values {
		m.Values[i] = d
	}
}

// FillRect writes d into the texels of [x0,x1)x[y0,y1), clipped to the map.
func (m *DepthMap) FillRect(x0, y0, x1, y1 int, d float32) {
	w, h := m.Size()
	x0, x1 = clampInt(x0, 0, w), clampInt(x1, 0, w)
	y0, y1 = clampInt(y0, 0, h), clampInt(y1, 0, h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Values[y*w+x] = d
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
