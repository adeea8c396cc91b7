package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type RenderPass struct {
	Handle     vk.RenderPass
	X, Y, W, H float32
	R, G, B, A float32
	Depth      float32
	Stencil    uint32

	HasDepth bool
}

// RenderPassCreate builds a single-subpass render pass clearing to the
// given color. When hasDepth is set a depth attachment matching the
// device's detected depth format is added.
func RenderPassCreate(context *Context, x, y, w, h, r, g, b, a, depth float32, stencil uint32, hasDepth bool) (*RenderPass, error) {
	out := &RenderPass{
		X: x, Y: y, W: w, H: h,
		R: r, G: g, B: b, A: a,
		Depth:    depth,
		Stencil:  stencil,
		HasDepth: hasDepth,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics,
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         context.Swapchain.ImageFormat.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	attachmentDescriptions := []vk.AttachmentDescription{colorAttachment}

	subpass.ColorAttachmentCount = 1
	subpass.PColorAttachments = []vk.AttachmentReference{
		{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		},
	}

	if hasDepth {
		depthAttachment := vk.AttachmentDescription{
			Format:         context.Device.DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		attachmentDescriptions = append(attachmentDescriptions, depthAttachment)

		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}
	if hasDepth {
		dependency.SrcStageMask |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		dependency.DstStageMask |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
		dependency.DstAccessMask |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}

	renderPassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderPassCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateRenderPass failed with %s", resultString(res))
	}
	out.Handle = handle
	return out, nil
}

func (rp *RenderPass) Destroy(context *Context) {
	if rp.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, rp.Handle, context.Allocator)
		rp.Handle = vk.NullRenderPass
	}
}

// Begin starts the pass on the given framebuffer, clearing color (and
// depth when configured) to the stored values.
func (rp *RenderPass) Begin(commandBuffer *CommandBuffer, framebuffer vk.Framebuffer) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp.Handle,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(rp.X),
				Y: int32(rp.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(rp.W),
				Height: uint32(rp.H),
			},
		},
	}

	clearValues := make([]vk.ClearValue, 1, 2)
	clearValues[0].SetColor([]float32{rp.R, rp.G, rp.B, rp.A})
	if rp.HasDepth {
		var depthClear vk.ClearValue
		depthClear.SetDepthStencil(rp.Depth, rp.Stencil)
		clearValues = append(clearValues, depthClear)
	}

	beginInfo.ClearValueCount = uint32(len(clearValues))
	beginInfo.PClearValues = clearValues

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = CommandBufferStateInRenderPass
}

func (rp *RenderPass) End(commandBuffer *CommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = CommandBufferStateRecording
}

// SetClearColor updates the color the pass clears to on its next Begin.
func (rp *RenderPass) SetClearColor(r, g, b, a float32) {
	rp.R, rp.G, rp.B, rp.A = r, g, b, a
}
