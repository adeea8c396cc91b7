package hal

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormatPrefersSRGB(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := ChooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := ChooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatR5g6b5UnormPack16, got.Format)
}

func TestChoosePresentModeRanking(t *testing.T) {
	cases := []struct {
		name      string
		available []vk.PresentMode
		vsync     bool
		want      vk.PresentMode
	}{
		{"mailbox wins", []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}, false, vk.PresentModeMailbox},
		{"fifo over relaxed", []vk.PresentMode{vk.PresentModeFifoRelaxed, vk.PresentModeFifo}, false, vk.PresentModeFifo},
		{"relaxed over immediate", []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}, false, vk.PresentModeFifoRelaxed},
		{"immediate only", []vk.PresentMode{vk.PresentModeImmediate}, false, vk.PresentModeImmediate},
		{"nothing advertised falls back to fifo", nil, false, vk.PresentModeFifo},
		{"vsync picks fifo over mailbox", []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeFifo}, true, vk.PresentModeFifo},
		{"vsync still takes mailbox when fifo absent", []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate}, true, vk.PresentModeMailbox},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChoosePresentMode(tc.available, tc.vsync))
		})
	}
}

func TestChooseCompositeAlphaRanking(t *testing.T) {
	all := vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit | vk.CompositeAlphaInheritBit |
		vk.CompositeAlphaPreMultipliedBit | vk.CompositeAlphaPostMultipliedBit)
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, ChooseCompositeAlpha(all))

	noOpaque := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaPreMultipliedBit)
	assert.Equal(t, vk.CompositeAlphaInheritBit, ChooseCompositeAlpha(noOpaque))

	premulOnly := vk.CompositeAlphaFlags(vk.CompositeAlphaPreMultipliedBit)
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, ChooseCompositeAlpha(premulOnly))
}

func TestChooseImageCount(t *testing.T) {
	// Mailbox asks for triple buffering.
	assert.Equal(t, uint32(3), ChooseImageCount(2, 8, vk.PresentModeMailbox))
	// Fifo is fine double buffered.
	assert.Equal(t, uint32(2), ChooseImageCount(2, 8, vk.PresentModeFifo))
	// Clamped to the surface maximum.
	assert.Equal(t, uint32(2), ChooseImageCount(2, 2, vk.PresentModeMailbox))
	// Raised to the surface minimum.
	assert.Equal(t, uint32(4), ChooseImageCount(4, 8, vk.PresentModeFifo))
	// Zero maximum means unbounded.
	assert.Equal(t, uint32(3), ChooseImageCount(2, 0, vk.PresentModeMailbox))
}

func TestClampExtentUsesFixedCurrentExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	got := ClampExtent(vk.Extent2D{Width: 640, Height: 480}, caps)
	assert.Equal(t, uint32(1024), got.Width)
	assert.Equal(t, uint32(768), got.Height)
}

func TestClampExtentClampsFlexibleSurface(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 0xFFFFFFFF, Height: 0xFFFFFFFF},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	got := ClampExtent(vk.Extent2D{Width: 8000, Height: 16}, caps)
	assert.Equal(t, uint32(1920), got.Width)
	assert.Equal(t, uint32(64), got.Height)
}

func TestAlignRowPitch(t *testing.T) {
	assert.Equal(t, uint64(1024), AlignRowPitch(1024, 256))
	assert.Equal(t, uint64(1280), AlignRowPitch(1025, 256))
	assert.Equal(t, uint64(4), AlignRowPitch(1, 4))
	// No alignment requirement leaves the pitch untouched.
	assert.Equal(t, uint64(123), AlignRowPitch(123, 0))
	assert.Equal(t, uint64(123), AlignRowPitch(123, 1))
}

func TestFindMemoryTypeIndex(t *testing.T) {
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	types := []vk.MemoryType{
		{PropertyFlags: deviceLocal},
		{PropertyFlags: hostVisible},
		{PropertyFlags: deviceLocal | hostVisible},
	}

	assert.Equal(t, int32(0), FindMemoryTypeIndex(types, 0b111, deviceLocal))
	assert.Equal(t, int32(1), FindMemoryTypeIndex(types, 0b111, hostVisible))
	// Type filter excludes the first matching index.
	assert.Equal(t, int32(2), FindMemoryTypeIndex(types, 0b100, deviceLocal))
	// Nothing carries both flags within the filter.
	assert.Equal(t, int32(-1), FindMemoryTypeIndex(types, 0b001, hostVisible))
	assert.Equal(t, int32(-1), FindMemoryTypeIndex(types, 0, deviceLocal))
}

func TestNextFrameSlotCycles(t *testing.T) {
	for _, framesInFlight := range []uint32{2, 3} {
		slot := uint32(0)
		seen := map[uint32]int{}
		for i := 0; i < int(framesInFlight)*4; i++ {
			slot = NextFrameSlot(slot, framesInFlight)
			assert.Less(t, slot, framesInFlight)
			seen[slot]++
		}
		// Every slot is visited the same number of times.
		for i := uint32(0); i < framesInFlight; i++ {
			assert.Equal(t, 4, seen[i])
		}
	}
}
