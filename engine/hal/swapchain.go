package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
)

type Swapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	PresentMode vk.PresentMode
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *Image

	// Framebuffers used for on-screen rendering, one per image.
	Framebuffers []*Framebuffer
}

func SwapchainCreate(context *Context, width, height uint32) (*Swapchain, error) {
	return createSwapchain(context, width, height)
}

// Recreate tears the swapchain down and builds a replacement against
// the current surface state.
func (s *Swapchain) Recreate(context *Context, width, height uint32) (*Swapchain, error) {
	s.destroySwapchain(context)
	return createSwapchain(context, width, height)
}

func (s *Swapchain) Destroy(context *Context) {
	s.destroySwapchain(context)
}

// AcquireNextImageIndex fetches the index of the next presentable
// image, signaling the given semaphore when it is ready. An
// ErrSwapchainOutOfDate return means the caller must recreate.
func (s *Swapchain) AcquireNextImageIndex(context *Context, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, s.Handle, timeoutNs, imageAvailableSemaphore, fence, &imageIndex)

	switch result {
	case vk.Success, vk.Suboptimal:
		// Suboptimal still acquired an image; present it and let the
		// present path trigger recreation.
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, ErrSwapchainOutOfDate
	default:
		return 0, fmt.Errorf("%w: %s", ErrAcquire, resultString(result))
	}
}

// Present hands the image back to the presentation engine once the
// render-complete semaphore signals.
func (s *Swapchain) Present(context *Context, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return ErrSwapchainOutOfDate
	default:
		return fmt.Errorf("%w: %s", ErrPresent, resultString(result))
	}
}

func createSwapchain(context *Context, width, height uint32) (*Swapchain, error) {
	support := &context.Device.SwapchainSupport
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, support); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSwapchainCreation, err.Error())
	}

	swapchain := &Swapchain{
		ImageFormat: ChooseSurfaceFormat(support.Formats),
		PresentMode: ChoosePresentMode(support.PresentModes, context.VSync),
	}
	swapchain.Extent = ClampExtent(vk.Extent2D{Width: width, Height: height}, support.Capabilities)

	imageCount := ChooseImageCount(
		support.Capabilities.MinImageCount,
		support.Capabilities.MaxImageCount,
		swapchain.PresentMode)
	compositeAlpha := ChooseCompositeAlpha(support.Capabilities.SupportedCompositeAlpha)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("%w: vkCreateSwapchainKHR returned %s", ErrSwapchainCreation, resultString(res))
	}
	swapchain.Handle = handle

	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		swapchain.destroySwapchain(context)
		return nil, fmt.Errorf("%w: failed to get swapchain images", ErrSwapchainCreation)
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		swapchain.destroySwapchain(context)
		return nil, fmt.Errorf("%w: failed to get swapchain images", ErrSwapchainCreation)
	}

	for i := 0; i < int(swapchain.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			swapchain.destroySwapchain(context)
			return nil, fmt.Errorf("%w: failed to create image view", ErrSwapchainCreation)
		}
	}

	if err := swapchain.createDepthAttachment(context); err != nil {
		swapchain.destroySwapchain(context)
		return nil, err
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, present mode %d.",
		swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount, swapchain.PresentMode)

	return swapchain, nil
}

// createDepthAttachment builds the depth image when the state was
// configured for depth testing. Clear-only scenes skip the attachment
// and never query a depth format.
func (s *Swapchain) createDepthAttachment(context *Context) error {
	if !context.DepthEnabled {
		return nil
	}

	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		return fmt.Errorf("%w: failed to find a supported depth format", ErrRenderTargetCreation)
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		s.Extent.Width,
		s.Extent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRenderTargetCreation, err.Error())
	}
	s.DepthAttachment = depthAttachment
	return nil
}

func (s *Swapchain) destroySwapchain(context *Context) {
	// Running again over an already-released swapchain is a no-op, so
	// the registered cleanup stays safe after a failed recreation.
	if s.Handle == vk.NullSwapchain && len(s.Views) == 0 && s.DepthAttachment == nil {
		return
	}

	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	if s.DepthAttachment != nil {
		s.DepthAttachment.Destroy(context)
		s.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by
	// the swapchain. A view may still be null when creation failed
	// partway through the set.
	for i := range s.Views {
		if s.Views[i] != vk.NullImageView {
			vk.DestroyImageView(context.Device.LogicalDevice, s.Views[i], context.Allocator)
		}
	}
	s.Views = nil
	s.Images = nil
	s.ImageCount = 0

	if s.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullSwapchain
	}
}
