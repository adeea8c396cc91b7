package hal

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// NewBuffer creates a buffer, allocates memory with the requested
// properties and binds it.
func NewBuffer(context *Context, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*Buffer, error) {
	out := &Buffer{Size: size}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateBuffer failed with %s", resultString(res))
	}
	out.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, out.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, out.Handle, context.Allocator)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, out.Handle, context.Allocator)
		return nil, fmt.Errorf("vkAllocateMemory failed with %s", resultString(res))
	}
	out.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, out.Handle, out.Memory, 0); res != vk.Success {
		out.Destroy(context)
		return nil, fmt.Errorf("vkBindBufferMemory failed with %s", resultString(res))
	}

	return out, nil
}

func (b *Buffer) Destroy(context *Context) {
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	b.Size = 0
}

// LoadData maps the buffer's memory and copies data into it. Only
// valid on host-visible memory; host-coherent memory needs no flush.
func (b *Buffer) LoadData(context *Context, offset vk.DeviceSize, data []byte) error {
	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, offset, vk.DeviceSize(len(data)), 0, &mapped); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed with %s", resultString(res))
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

// CopyTo records and submits a one-shot transfer from b into dst.
func (b *Buffer) CopyTo(context *Context, dst *Buffer, size vk.DeviceSize) error {
	cb, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}
	vk.CmdCopyBuffer(cb.Handle, b.Handle, dst.Handle, 1, []vk.BufferCopy{region})

	return cb.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue)
}

// NewDeviceLocalBuffer uploads data into device-local memory through a
// transient staging buffer.
func NewDeviceLocalBuffer(context *Context, data []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := NewBuffer(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}

	out, err := NewBuffer(
		context,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	if err := staging.CopyTo(context, out, size); err != nil {
		out.Destroy(context)
		return nil, err
	}
	return out, nil
}
