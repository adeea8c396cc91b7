package hal

import (
	"fmt"
	"image"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
)

type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
}

// ImageCreate builds a device-local image, allocates and binds its
// memory and optionally creates a view over the given aspect.
func ImageCreate(
	context *Context,
	imageType vk.ImageType,
	width, height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	createView bool,
	viewAspectFlags vk.ImageAspectFlags,
) (*Image, error) {
	out := &Image{
		Width:  width,
		Height: height,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: imageType,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var handle vk.Image
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateImage failed with %s", resultString(res))
	}
	out.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, out.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		out.Destroy(context)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		out.Destroy(context)
		return nil, fmt.Errorf("vkAllocateMemory failed with %s", resultString(res))
	}
	out.Memory = memory

	if res := vk.BindImageMemory(context.Device.LogicalDevice, out.Handle, out.Memory, 0); res != vk.Success {
		out.Destroy(context)
		return nil, fmt.Errorf("vkBindImageMemory failed with %s", resultString(res))
	}

	if createView {
		if err := out.ViewCreate(context, format, viewAspectFlags); err != nil {
			out.Destroy(context)
			return nil, err
		}
	}
	return out, nil
}

func (i *Image) ViewCreate(context *Context, format vk.Format, aspectFlags vk.ImageAspectFlags) error {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectFlags,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &view); res != vk.Success {
		return fmt.Errorf("vkCreateImageView failed with %s", resultString(res))
	}
	i.View = view
	return nil
}

func (i *Image) Destroy(context *Context) {
	if i.View != vk.NullImageView {
		vk.DestroyImageView(context.Device.LogicalDevice, i.View, context.Allocator)
		i.View = vk.NullImageView
	}
	if i.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, i.Memory, context.Allocator)
		i.Memory = vk.NullDeviceMemory
	}
	if i.Handle != vk.NullImage {
		vk.DestroyImage(context.Device.LogicalDevice, i.Handle, context.Allocator)
		i.Handle = vk.NullImage
	}
}

// transitionLayout records a pipeline barrier moving the image between
// layouts on a single-use command buffer.
func (i *Image) transitionLayout(context *Context, cb *CommandBuffer, oldLayout, newLayout vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               i.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		return fmt.Errorf("unsupported image layout transition %d -> %d", oldLayout, newLayout)
	}

	vk.CmdPipelineBarrier(cb.Handle, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// Texture is a sampled image plus its sampler.
type Texture struct {
	Image   *Image
	Sampler vk.Sampler
}

// UploadTexture copies tightly packed RGBA pixels into a device-local
// sampled image through a host-visible staging buffer. Each row is
// placed at the device's optimal copy row pitch. The call blocks until
// the upload command completes.
func UploadTexture(context *Context, src *image.RGBA) (*Texture, error) {
	width := uint32(src.Rect.Dx())
	height := uint32(src.Rect.Dy())

	context.Device.Properties.Limits.Deref()
	alignment := uint64(context.Device.Properties.Limits.OptimalBufferCopyRowPitchAlignment)
	rowBytes := uint64(width) * 4
	rowPitch := AlignRowPitch(rowBytes, alignment)
	stagingSize := vk.DeviceSize(rowPitch * uint64(height))

	staging, err := NewBuffer(
		context,
		stagingSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	// Repack row by row so each row starts on the aligned pitch.
	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, staging.Memory, 0, stagingSize, 0, &mapped); res != vk.Success {
		return nil, fmt.Errorf("vkMapMemory failed with %s", resultString(res))
	}
	packed := make([]byte, uint64(stagingSize))
	for y := uint64(0); y < uint64(height); y++ {
		srcRow := src.Pix[y*uint64(src.Stride) : y*uint64(src.Stride)+rowBytes]
		copy(packed[y*rowPitch:y*rowPitch+rowBytes], srcRow)
	}
	vk.Memcopy(mapped, packed)
	vk.UnmapMemory(context.Device.LogicalDevice, staging.Memory)

	img, err := ImageCreate(
		context,
		vk.ImageType2d,
		width, height,
		vk.FormatR8g8b8a8Srgb,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	cb, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		img.Destroy(context)
		return nil, err
	}

	if err := img.transitionLayout(context, cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		img.Destroy(context)
		return nil, err
	}

	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   uint32(rowPitch / 4),
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
	}
	vk.CmdCopyBufferToImage(cb.Handle, staging.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

	if err := img.transitionLayout(context, cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		img.Destroy(context)
		return nil, err
	}

	if err := cb.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		img.Destroy(context)
		return nil, err
	}

	sampler, err := createSampler(context)
	if err != nil {
		img.Destroy(context)
		return nil, err
	}

	core.LogInfo("Uploaded %dx%d texture (row pitch %d bytes).", width, height, rowPitch)

	return &Texture{Image: img, Sampler: sampler}, nil
}

func (t *Texture) Destroy(context *Context) {
	if t.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = vk.NullSampler
	}
	if t.Image != nil {
		t.Image.Destroy(context)
		t.Image = nil
	}
}

func createSampler(context *Context) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		return vk.NullSampler, fmt.Errorf("vkCreateSampler failed with %s", resultString(res))
	}
	return sampler, nil
}
