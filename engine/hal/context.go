package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Context carries the handles shared by every backend object: the
// instance, surface and device, plus the live swapchain-sized state.
type Context struct {
	FramebufferWidth  uint32
	FramebufferHeight uint32

	// Bumped on every resize notification; compared against
	// lastSizeGeneration by the frame scheduler to decide when the
	// swapchain must be rebuilt.
	SizeGeneration     uint64
	LastSizeGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *Device

	Swapchain  *Swapchain
	RenderPass *RenderPass

	// One recorded command buffer per swapchain image.
	GraphicsCommandBuffers []*CommandBuffer

	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*Fence

	// Fences borrowed per swapchain image; owned by InFlightFences.
	ImagesInFlight []*Fence

	ImageIndex   uint32
	CurrentFrame uint32

	FramesInFlight uint32

	// VSync prefers FIFO presentation over mailbox.
	VSync bool

	// DepthEnabled adds a depth attachment to the swapchain and the
	// main render pass.
	DepthEnabled bool

	RecreatingSwapchain bool
}

// FindMemoryIndex resolves a device memory type for the given filter
// and property flags.
func (c *Context) FindMemoryIndex(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(c.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	types := make([]vk.MemoryType, memoryProperties.MemoryTypeCount)
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		types[i] = memoryProperties.MemoryTypes[i]
	}

	index := FindMemoryTypeIndex(types, typeFilter, properties)
	if index < 0 {
		return 0, fmt.Errorf("%w: filter 0x%x properties 0x%x", ErrNoCompatibleMemoryType, typeFilter, properties)
	}
	return uint32(index), nil
}
