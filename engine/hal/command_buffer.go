package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type CommandBufferState int

const (
	CommandBufferStateReady CommandBufferState = iota
	CommandBufferStateRecording
	CommandBufferStateInRenderPass
	CommandBufferStateRecordingEnded
	CommandBufferStateSubmitted
	CommandBufferStateNotAllocated
)

type CommandBuffer struct {
	Handle vk.CommandBuffer
	State  CommandBufferState
}

func NewCommandBuffer(context *Context, pool vk.CommandPool, isPrimary bool) (*CommandBuffer, error) {
	commandBuffer := &CommandBuffer{
		State: CommandBufferStateNotAllocated,
	}

	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		return nil, fmt.Errorf("vkAllocateCommandBuffers failed with %s", resultString(res))
	}
	commandBuffer.Handle = handles[0]
	commandBuffer.State = CommandBufferStateReady

	return commandBuffer, nil
}

func (cb *CommandBuffer) Free(context *Context, pool vk.CommandPool) {
	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{cb.Handle})
	cb.Handle = nil
	cb.State = CommandBufferStateNotAllocated
}

func (cb *CommandBuffer) Begin(isSingleUse, isRenderPassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderPassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(cb.Handle, &beginInfo); res != vk.Success {
		return fmt.Errorf("vkBeginCommandBuffer failed with %s", resultString(res))
	}
	cb.State = CommandBufferStateRecording
	return nil
}

func (cb *CommandBuffer) End() error {
	if res := vk.EndCommandBuffer(cb.Handle); res != vk.Success {
		return fmt.Errorf("vkEndCommandBuffer failed with %s", resultString(res))
	}
	cb.State = CommandBufferStateRecordingEnded
	return nil
}

func (cb *CommandBuffer) UpdateSubmitted() {
	cb.State = CommandBufferStateSubmitted
}

func (cb *CommandBuffer) Reset() {
	cb.State = CommandBufferStateReady
}

// AllocateAndBeginSingleUse allocates a primary command buffer and
// starts recording it for one-shot submission.
func AllocateAndBeginSingleUse(context *Context, pool vk.CommandPool) (*CommandBuffer, error) {
	cb, err := NewCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	if err := cb.Begin(true, false, false); err != nil {
		cb.Free(context, pool)
		return nil, err
	}
	return cb, nil
}

// EndSingleUse ends recording, submits the buffer gated on a dedicated
// fence, blocks until it signals and frees the buffer.
func (cb *CommandBuffer) EndSingleUse(context *Context, pool vk.CommandPool, queue vk.Queue) error {
	defer cb.Free(context, pool)

	if err := cb.End(); err != nil {
		return err
	}

	fence, err := NewFence(context, false)
	if err != nil {
		return err
	}
	defer fence.Destroy(context)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with %s", resultString(res))
	}
	cb.UpdateSubmitted()

	if !fence.Wait(context, ^uint64(0)) {
		return fmt.Errorf("single use command buffer fence wait failed")
	}
	return nil
}
