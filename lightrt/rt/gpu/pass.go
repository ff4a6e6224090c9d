package gpu

import "github.com/cogentcore/webgpu/wgpu"

// Pass is a render pass the frame loop can record and tear down. Per-frame data arrives
// before Draw, through the UniformManager or the pass's own Update.
type Pass interface {
	Draw(pass *wgpu.RenderPassEncoder)
	Release()
}

var (
	_ Pass = (*NotationRenderPass)(nil)
	_ Pass = (*LightingBallPass)(nil)
)
