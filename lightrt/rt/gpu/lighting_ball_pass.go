package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightnotation/lightrt/rt/core"
	"github.com/gekko3d/lightnotation/lightrt/rt/shaders"
)

// LightingBallPass draws a lit unit sphere from the light uniform so every manipulator
// edit is visible on the next frame. Shadow maps are r32float textures read with
// textureLoad; until a caster pass provides them, 1x1 far-plane placeholders are bound.
type LightingBallPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.RenderPipeline

	UniformBindGroup *wgpu.BindGroup
	ShadowBindGroup  *wgpu.BindGroup

	placeholders [core.MaxShadowCasters]*wgpu.Texture
	shadowViews  [core.MaxShadowCasters]*wgpu.TextureView
}

func NewLightingBallPass(device *wgpu.Device, format wgpu.TextureFormat) (*LightingBallPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "LightingBallShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.LightingWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("lighting shader: %w", err)
	}

	uniformBgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "LightingUniformBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.LightUniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: BallParamsSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var shadowEntries []wgpu.BindGroupLayoutEntry
	for i := 0; i < core.MaxShadowCasters; i++ {
		shadowEntries = append(shadowEntries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	shadowBgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "LightingShadowBGL",
		Entries: shadowEntries,
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{uniformBgl, shadowBgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "LightingBallPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
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
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &LightingBallPass{Device: device, Pipeline: pipeline}
	if err := p.createPlaceholders(); err != nil {
		return nil, err
	}
	if err := p.SetShadowMaps(p.shadowViews[0], p.shadowViews[1]); err != nil {
		return nil, err
	}
	return p, nil
}

// createPlaceholders uploads 1x1 depth-1 textures; a fragment is never behind the far plane,
// so they leave every light unshadowed.
func (p *LightingBallPass) createPlaceholders() error {
	far := make([]byte, 4)
	binary.LittleEndian.PutUint32(far, math.Float32bits(1))
	extent := wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1}

	for i := range p.placeholders {
		tex, err := p.Device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         fmt.Sprintf("ShadowPlaceholder%d", i),
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatR32Float,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("shadow placeholder %d: %w", i, err)
		}
		if err := p.Device.GetQueue().WriteTexture(tex.AsImageCopy(), far, &wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4,
			RowsPerImage: 1,
		}, &extent); err != nil {
			return fmt.Errorf("shadow placeholder %d: %w", i, err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			return fmt.Errorf("shadow placeholder %d: %w", i, err)
		}
		p.placeholders[i] = tex
		p.shadowViews[i] = view
	}
	return nil
}

// SetShadowMaps binds r32float depth views for the two shadow casters. A nil view keeps
// the far-plane placeholder.
func (p *LightingBallPass) SetShadowMaps(first, second *wgpu.TextureView) error {
	views := [core.MaxShadowCasters]*wgpu.TextureView{first, second}
	entries := make([]wgpu.BindGroupEntry, 0, core.MaxShadowCasters)
	for i, v := range views {
		if v == nil {
			v = p.shadowViews[i]
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i), TextureView: v})
	}
	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "LightingShadowBG",
		Layout:  p.Pipeline.GetBindGroupLayout(1),
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if p.ShadowBindGroup != nil {
		p.ShadowBindGroup.Release()
	}
	p.ShadowBindGroup = bg
	return nil
}

// CreateBindGroup binds the light and ball uniforms; call again whenever either buffer
// is recreated.
func (p *LightingBallPass) CreateBindGroup(lightBuffer, ballBuffer *wgpu.Buffer) error {
	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "LightingUniformBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: lightBuffer, Size: core.LightUniformSize},
			{Binding: 1, Buffer: ballBuffer, Size: BallParamsSize},
		},
	})
	if err != nil {
		return err
	}
	if p.UniformBindGroup != nil {
		p.UniformBindGroup.Release()
	}
	p.UniformBindGroup = bg
	return nil
}

func (p *LightingBallPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.UniformBindGroup == nil || p.ShadowBindGroup == nil {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.UniformBindGroup, nil)
	pass.SetBindGroup(1, p.ShadowBindGroup, nil)
	pass.Draw(3, 1, 0, 0)
}

func (p *LightingBallPass) Release() {
	for _, bg := range []**wgpu.BindGroup{&p.UniformBindGroup, &p.ShadowBindGroup} {
		if *bg != nil {
			(*bg).Release()
			*bg = nil
		}
	}
	for i := range p.placeholders {
		if p.shadowViews[i] != nil {
			p.shadowViews[i].Release()
			p.shadowViews[i] = nil
		}
		if p.placeholders[i] != nil {
			p.placeholders[i].Release()
			p.placeholders[i] = nil
		}
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
}
