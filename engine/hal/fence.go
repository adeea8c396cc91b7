package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
)

// Fence wraps a vk.Fence together with its signaled-state bookkeeping.
// Wait is a no-op on a fence already observed signaled, and Reset is a
// no-op on a fence already observed unsignaled, so a frame slot cycles
// through exactly one wait and one reset per frame.
type Fence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *Context, createSignaled bool) (*Fence, error) {
	fence := &Fence{
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateFence failed with %s", resultString(res))
	}
	fence.Handle = handle
	return fence, nil
}

func (f *Fence) Destroy(context *Context) {
	if f.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, f.Handle, context.Allocator)
		f.Handle = vk.NullFence
	}
	f.IsSignaled = false
}

// Wait blocks until the fence signals or the timeout elapses. Returns
// true when the fence is known signaled.
func (f *Fence) Wait(context *Context, timeoutNs uint64) bool {
	if f.IsSignaled {
		return true
	}

	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		f.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("fence wait timed out")
	default:
		core.LogError("fence wait failed with %s", resultString(result))
	}
	return false
}

func (f *Fence) Reset(context *Context) error {
	if !f.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}); res != vk.Success {
		return fmt.Errorf("vkResetFences failed with %s", resultString(res))
	}
	f.IsSignaled = false
	return nil
}
