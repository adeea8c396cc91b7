package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type Framebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	RenderPass  *RenderPass
}

func FramebufferCreate(context *Context, renderPass *RenderPass, width, height uint32, attachments []vk.ImageView) (*Framebuffer, error) {
	out := &Framebuffer{
		Attachments: make([]vk.ImageView, len(attachments)),
		RenderPass:  renderPass,
	}
	copy(out.Attachments, attachments)

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.Handle,
		AttachmentCount: uint32(len(out.Attachments)),
		PAttachments:    out.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("%w: vkCreateFramebuffer returned %s", ErrRenderTargetCreation, resultString(res))
	}
	out.Handle = handle
	return out, nil
}

func (fb *Framebuffer) Destroy(context *Context) {
	if fb.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, fb.Handle, context.Allocator)
		fb.Handle = vk.NullFramebuffer
	}
	fb.Attachments = nil
	fb.RenderPass = nil
}
