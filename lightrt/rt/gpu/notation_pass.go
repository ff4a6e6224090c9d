package gpu

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// NotationShape indexes the unit line shapes of the overlay.
type NotationShape int

const (
	ShapeSegment NotationShape = iota
	ShapeArrowHead
	ShapeRing
	ShapeFrame
	shapeCount
)

const (
	ringSteps       = 32
	densityBarInset = 0.1
	arrowHeadLength = 0.25
)

// NotationVertex matches the WGSL VertexInput.
type NotationVertex struct {
	Pos [2]float32
}

// NotationInstance places a unit shape: p = Origin + x*AxisX + y*AxisY, in pixels.
type NotationInstance struct {
	Origin [2]float32
	AxisX  [2]float32
	AxisY  [2]float32
	_      [2]float32
	Color  [4]float32
}

type NotationRenderPass struct {
	Pipeline       *wgpu.RenderPipeline
	BindGroup      *wgpu.BindGroup
	VertexBuffer   *wgpu.Buffer
	ShapeOffsets   [shapeCount]uint32
	ShapeCounts    [shapeCount]uint32
	InstanceBuffer *wgpu.Buffer
	InstanceCap    uint32
	Instances      [shapeCount][]NotationInstance
	Device         *wgpu.Device
}

func NewNotationRenderPass(device *wgpu.Device, format wgpu.TextureFormat) (*NotationRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "NotationShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.NotationWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("notation shader: %w", err)
	}

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "NotationScreenBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: ScreenDataSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "NotationPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(NotationVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(NotationInstance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &NotationRenderPass{
		Pipeline: pipeline,
		Device:   device,
	}

	vertices := p.buildUnitShapes()
	vSize := uint64(len(vertices) * int(unsafe.Sizeof(NotationVertex{})))
	p.VertexBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "NotationUnitVertexBuffer",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if err := device.GetQueue().WriteBuffer(p.VertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize)); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *NotationRenderPass) buildUnitShapes() []NotationVertex {
	var vertices []NotationVertex
	add := func(s NotationShape, pts [][2]float32) {
		p.ShapeOffsets[s] = uint32(len(vertices))
		p.ShapeCounts[s] = uint32(len(pts))
		for _, pt := range pts {
			vertices = append(vertices, NotationVertex{Pos: pt})
		}
	}

	add(ShapeSegment, [][2]float32{{0, 0}, {1, 0}})

	// Two barbs ending at (1,0), the tip of a unit segment.
	back := float32(1 - arrowHeadLength)
	add(ShapeArrowHead, [][2]float32{
		{back, arrowHeadLength / 2}, {1, 0},
		{back, -arrowHeadLength / 2}, {1, 0},
	})

	var ring [][2]float32
	step := 2 * math.Pi / float64(ringSteps)
	for i := 0; i < ringSteps; i++ {
		a1, a2 := float64(i)*step, float64(i+1)*step
		ring = append(ring,
			[2]float32{float32(math.Cos(a1)), float32(math.Sin(a1))},
			[2]float32{float32(math.Cos(a2)), float32(math.Sin(a2))})
	}
	add(ShapeRing, ring)

	add(ShapeFrame, [][2]float32{
		{0, 0}, {1, 0},
		{1, 0}, {1, 1},
		{1, 1}, {0, 1},
		{0, 1}, {0, 0},
	})
	return vertices
}

// BuildNotationInstances turns the overlay layout into shape instances: a ring and a
// direction arrow per glyph, a density bar under it and a frame around the selected one.
func BuildNotationInstances(glyphs []core.Glyph) [shapeCount][]NotationInstance {
	var out [shapeCount][]NotationInstance
	for _, g := range glyphs {
		out[ShapeRing] = append(out[ShapeRing], NotationInstance{
			Origin: g.Center,
			AxisX:  [2]float32{g.Radius, 0},
			AxisY:  [2]float32{0, g.Radius},
			Color:  g.Color,
		})

		arrow := g.ArrowTip.Sub(g.Center)
		if arrow.Len() > 1e-4 {
			perp := mgl32.Vec2{-arrow.Y(), arrow.X()}
			inst := NotationInstance{Origin: g.Center, AxisX: arrow, AxisY: perp, Color: g.Color}
			out[ShapeSegment] = append(out[ShapeSegment], inst)
			out[ShapeArrowHead] = append(out[ShapeArrowHead], inst)
		}

		if bar := densityBarLength(g); bar > 0 {
			inset := g.Bounds.Width() * densityBarInset
			out[ShapeSegment] = append(out[ShapeSegment], NotationInstance{
				Origin: [2]float32{g.Bounds.Min.X() + inset, g.Bounds.Max.Y() - inset/2},
				AxisX:  [2]float32{bar, 0},
				Color:  g.Color,
			})
		}

		if g.Selected {
			out[ShapeFrame] = append(out[ShapeFrame], NotationInstance{
				Origin: g.Bounds.Min,
				AxisX:  [2]float32{g.Bounds.Width(), 0},
				AxisY:  [2]float32{0, g.Bounds.Height()},
				Color:  core.GlyphSelectedColor,
			})
		}
	}
	return out
}

func densityBarLength(g core.Glyph) float32 {
	usable := g.Bounds.Width() * (1 - 2*densityBarInset)
	return usable * mgl32.Clamp(g.Density/core.MaxDensity, 0, 1)
}

func (p *NotationRenderPass) Update(queue *wgpu.Queue, glyphs []core.Glyph) error {
	p.Instances = BuildNotationInstances(glyphs)

	var all []NotationInstance
	for s := NotationShape(0); s < shapeCount; s++ {
		all = append(all, p.Instances[s]...)
	}
	if len(all) == 0 {
		return nil
	}

	count := uint32(len(all))
	stride := uint64(unsafe.Sizeof(NotationInstance{}))
	if p.InstanceBuffer == nil || p.InstanceCap < count {
		if p.InstanceBuffer != nil {
			p.InstanceBuffer.Release()
		}
		p.InstanceCap = count + 32
		buf, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "NotationInstanceBuffer",
			Size:  uint64(p.InstanceCap) * stride,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.InstanceBuffer = nil
			return fmt.Errorf("notation instances: %w", err)
		}
		p.InstanceBuffer = buf
	}
	return queue.WriteBuffer(p.InstanceBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&all[0])), uint64(count)*stride))
}

func (p *NotationRenderPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.InstanceBuffer == nil || p.BindGroup == nil {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.SetVertexBuffer(1, p.InstanceBuffer, 0, p.InstanceBuffer.GetSize())

	var instanceOffset uint32
	for s := NotationShape(0); s < shapeCount; s++ {
		count := uint32(len(p.Instances[s]))
		if count > 0 {
			pass.Draw(p.ShapeCounts[s], count, p.ShapeOffsets[s], instanceOffset)
		}
		instanceOffset += count
	}
}

// CreateBindGroup binds the screen uniform; call again whenever the buffer is recreated.
func (p *NotationRenderPass) CreateBindGroup(screenBuffer *wgpu.Buffer) error {
	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "NotationScreenBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: screenBuffer, Size: ScreenDataSize},
		},
	})
	if err != nil {
		return err
	}
	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	p.BindGroup = bg
	return nil
}

func (p *NotationRenderPass) Release() {
	if p.InstanceBuffer != nil {
		p.InstanceBuffer.Release()
		p.InstanceBuffer = nil
	}
	if p.VertexBuffer != nil {
		p.VertexBuffer.Release()
		p.VertexBuffer = nil
	}
	if p.BindGroup != nil {
		p.BindGroup.Release()
		p.BindGroup = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
}
