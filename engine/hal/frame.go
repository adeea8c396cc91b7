package hal

import (
	"errors"
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
)

// RecordFunc records draw commands for one frame. It runs inside the
// main render pass with viewport and scissor already set; imageIndex
// identifies the swapchain image (and command buffer) being recorded.
type RecordFunc func(cb *CommandBuffer, imageIndex uint32)

// Resized notes a new framebuffer size. The swapchain is rebuilt
// lazily at the start of the next frame.
func (s *State) Resized(width, height uint32) {
	s.cachedFramebufferWidth = width
	s.cachedFramebufferHeight = height
	s.context.SizeGeneration++
	core.LogDebug("Framebuffer resize noted: %dx%d (gen %d).", width, height, s.context.SizeGeneration)
}

// DrawClearFrame renders a frame consisting only of the render pass
// clear.
func (s *State) DrawClearFrame() error {
	return s.DrawFrame(nil)
}

// DrawFrame runs one full frame: wait on the slot fence, acquire an
// image, record through the callback, submit and present. A frame
// skipped for swapchain recreation returns nil; the caller just tries
// again next tick.
func (s *State) DrawFrame(record RecordFunc) error {
	ctx := s.context
	device := ctx.Device

	if ctx.RecreatingSwapchain {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); res != vk.Success {
			return fmt.Errorf("vkDeviceWaitIdle failed with %s", resultString(res))
		}
		core.LogInfo("Recreating swapchain, booting.")
		return nil
	}

	// A resize since the last frame invalidates the swapchain. Rebuild
	// and skip this frame.
	if ctx.SizeGeneration != ctx.LastSizeGeneration {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); res != vk.Success {
			return fmt.Errorf("vkDeviceWaitIdle failed with %s", resultString(res))
		}
		if err := s.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("Resized, booting.")
		return nil
	}

	// Advance the slot before any fallible step so an aborted frame
	// never reuses the previous slot's semaphores.
	ctx.CurrentFrame = NextFrameSlot(ctx.CurrentFrame, ctx.FramesInFlight)
	slotFence := ctx.InFlightFences[ctx.CurrentFrame]

	if !slotFence.Wait(ctx, math.MaxUint64) {
		return fmt.Errorf("in-flight fence wait failure")
	}

	imageIndex, err := ctx.Swapchain.AcquireNextImageIndex(ctx, math.MaxUint64, ctx.ImageAvailableSemaphores[ctx.CurrentFrame], vk.NullFence)
	if err != nil {
		if errors.Is(err, ErrSwapchainOutOfDate) {
			return s.recreateSwapchain()
		}
		return err
	}
	ctx.ImageIndex = imageIndex

	commandBuffer := ctx.GraphicsCommandBuffers[imageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(ctx.FramebufferWidth),
		Height:   float32(ctx.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{
			Width:  ctx.FramebufferWidth,
			Height: ctx.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	ctx.RenderPass.W = float32(ctx.FramebufferWidth)
	ctx.RenderPass.H = float32(ctx.FramebufferHeight)
	ctx.RenderPass.Begin(commandBuffer, ctx.Swapchain.Framebuffers[imageIndex].Handle)

	if record != nil {
		record(commandBuffer, imageIndex)
	}

	ctx.RenderPass.End(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure a previous frame is no longer using this image.
	if ctx.ImagesInFlight[imageIndex] != nil {
		ctx.ImagesInFlight[imageIndex].Wait(ctx, math.MaxUint64)
	}
	ctx.ImagesInFlight[imageIndex] = slotFence

	if err := slotFence.Reset(ctx); err != nil {
		return err
	}

	// Color attachment writes hold until the image is actually
	// available; completion signals both the per-slot semaphore and
	// the slot fence.
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
	}

	if res := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, slotFence.Handle); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with %s", resultString(res))
	}
	commandBuffer.UpdateSubmitted()

	if err := ctx.Swapchain.Present(ctx, device.PresentQueue, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], imageIndex); err != nil {
		if errors.Is(err, ErrSwapchainOutOfDate) {
			return s.recreateSwapchain()
		}
		return err
	}

	s.FrameNumber++
	return nil
}

// SetClearColor updates the color subsequent frames clear to.
func (s *State) SetClearColor(r, g, b, a float32) {
	s.context.RenderPass.SetClearColor(r, g, b, a)
}

func (s *State) recreateSwapchain() error {
	ctx := s.context

	if ctx.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called while already recreating, booting.")
		return nil
	}

	width := s.cachedFramebufferWidth
	height := s.cachedFramebufferHeight
	if width == 0 && height == 0 {
		// Recreation triggered by acquire/present rather than a
		// resize; current dimensions still stand.
		width = ctx.FramebufferWidth
		height = ctx.FramebufferHeight
	}
	if width == 0 || height == 0 {
		// Minimized; try again when the window has area.
		core.LogDebug("recreateSwapchain with a zero dimension, booting.")
		return nil
	}

	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	if res := vk.DeviceWaitIdle(ctx.Device.LogicalDevice); res != vk.Success {
		return fmt.Errorf("vkDeviceWaitIdle failed with %s", resultString(res))
	}

	for i := range ctx.ImagesInFlight {
		ctx.ImagesInFlight[i] = nil
	}

	s.destroyFramebuffers()

	sc, err := ctx.Swapchain.Recreate(ctx, width, height)
	if err != nil {
		return err
	}
	ctx.Swapchain = sc

	ctx.FramebufferWidth = sc.Extent.Width
	ctx.FramebufferHeight = sc.Extent.Height
	ctx.RenderPass.X = 0
	ctx.RenderPass.Y = 0
	ctx.RenderPass.W = float32(ctx.FramebufferWidth)
	ctx.RenderPass.H = float32(ctx.FramebufferHeight)
	s.cachedFramebufferWidth = 0
	s.cachedFramebufferHeight = 0
	ctx.LastSizeGeneration = ctx.SizeGeneration

	ctx.Swapchain.Framebuffers = make([]*Framebuffer, ctx.Swapchain.ImageCount)
	if err := s.regenerateFramebuffers(); err != nil {
		return err
	}
	if err := s.createCommandBuffers(); err != nil {
		return err
	}

	ctx.ImagesInFlight = make([]*Fence, ctx.Swapchain.ImageCount)

	core.LogInfo("Swapchain recreated at %dx%d.", ctx.FramebufferWidth, ctx.FramebufferHeight)
	return nil
}
