package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
)

const (
	BallParamsSize = 80
	ScreenDataSize = 16
)

// BallParams places the lighting ball on screen and carries its material.
//
//	struct BallParams {
//	  viewport: vec4<f32>;  -- 0   center.xy, radius
//	  ambient: vec4<f32>;   -- 16  w = opacity
//	  diffuse: vec4<f32>;   -- 32
//	  specular: vec4<f32>;  -- 48  w = power
//	  flags: vec4<u32>;     -- 64  x = physical reflection
//	} -> 80 bytes
type BallParams struct {
	Center   [2]float32
	Radius   float32
	Material core.Material
	Opacity  float32
}

func (b BallParams) Marshal() []byte {
	buf := make([]byte, BallParamsSize)
	putF := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putV := func(off int, v [3]float32, w float32) {
		putF(off, v[0])
		putF(off+4, v[1])
		putF(off+8, v[2])
		putF(off+12, w)
	}

	putF(0, b.Center[0])
	putF(4, b.Center[1])
	putF(8, b.Radius)
	putV(16, b.Material.AmbientColor, b.Opacity)
	putV(32, b.Material.DiffuseColor, 0)
	putV(48, b.Material.SpecularColor, b.Material.SpecularPower)
	if b.Material.PhysicalReflection {
		binary.LittleEndian.PutUint32(buf[64:], 1)
	}
	return buf
}

// UniformManager owns the uniform buffers shared by the lit and overlay passes.
type UniformManager struct {
	Device *wgpu.Device

	LightBuf  *wgpu.Buffer
	BallBuf   *wgpu.Buffer
	ScreenBuf *wgpu.Buffer
}

func NewUniformManager(device *wgpu.Device) *UniformManager {
	return &UniformManager{Device: device}
}

// ensureBuffer creates buf on first use, or regrows it, then uploads data.
// It reports whether the buffer was (re)created, in which case bind groups are stale.
func (m *UniformManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	neededSize := uint64(len(data))
	if neededSize%16 != 0 {
		neededSize += 16 - (neededSize % 16)
	}

	created := false
	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}
		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return false, fmt.Errorf("create %s: %w", name, err)
		}
		*buf = newBuf
		created = true
	}

	if len(data) > 0 {
		if err := m.Device.GetQueue().WriteBuffer(*buf, 0, data); err != nil {
			return created, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return created, nil
}

// UpdateLighting uploads the frame's light snapshot.
func (m *UniformManager) UpdateLighting(u core.LightUniform) (bool, error) {
	return m.ensureBuffer("LightUB", &m.LightBuf, u.Marshal(), wgpu.BufferUsageUniform)
}

func (m *UniformManager) UpdateBall(b BallParams) (bool, error) {
	return m.ensureBuffer("BallUB", &m.BallBuf, b.Marshal(), wgpu.BufferUsageUniform)
}

// UpdateScreen uploads the surface size used to map pixels to NDC.
func (m *UniformManager) UpdateScreen(width, height uint32) (bool, error) {
	buf := make([]byte, ScreenDataSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(height)))
	return m.ensureBuffer("ScreenUB", &m.ScreenBuf, buf, wgpu.BufferUsageUniform)
}

func (m *UniformManager) Release() {
	for _, b := range []**wgpu.Buffer{&m.LightBuf, &m.BallBuf, &m.ScreenBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}
