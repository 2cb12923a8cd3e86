package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Shader entry point names required of every user program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Pipeline is a compiled shader bound into a render pipeline together
// with its per-frame uniform buffer and bind group. A pipeline is
// replaced wholesale on each successful shader run; it is never
// patched in place.
type Pipeline struct {
	device hal.Device
	queue  hal.Queue

	module     hal.ShaderModule
	uniformBuf hal.Buffer
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	bindGroup  hal.BindGroup
	pipeline   hal.RenderPipeline
}

// NewPipeline builds a render pipeline for the given SPIR-V shader
// targeting the surface format. The shader must expose vs_main and
// fs_main entry points; the color target uses replace blending and the
// full write mask. No vertex buffers are bound — the draw covers three
// vertices of one instance (a full-screen triangle).
//
// On any error all partially created resources are released.
func NewPipeline(device hal.Device, queue hal.Queue, spirv []uint32, format gputypes.TextureFormat) (*Pipeline, error) {
	p := &Pipeline{device: device, queue: queue}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "shade_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	p.module = module

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "shade_uniform",
		Size:  UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "shade_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "shade_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "shade_bind",
		Layout: bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: UniformSize,
			}},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup

	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "shade_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: VertexEntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// WriteUniform uploads the per-frame uniform to the GPU buffer.
func (p *Pipeline) WriteUniform(u Uniform) {
	p.queue.WriteBuffer(p.uniformBuf, 0, u.Pack())
}

// Destroy releases all GPU resources in reverse creation order.
// Safe to call repeatedly and on a partially constructed pipeline.
func (p *Pipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
