package hal

import (
	"math"

	vk "github.com/goki/vulkan"
)

// Surface/swapchain selection policy. These are pure functions over
// the queried support data so the choices can be exercised without a
// device.

// ChooseSurfaceFormat prefers an sRGB format with a nonlinear sRGB
// color space, falling back to the first advertised format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if (format.Format == vk.FormatB8g8r8a8Srgb || format.Format == vk.FormatR8g8b8a8Srgb) &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// ChoosePresentMode ranks Mailbox over Fifo over FifoRelaxed over
// Immediate. With vsync set, Fifo outranks Mailbox. Fifo is the
// guaranteed fallback either way.
func ChoosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	ranked := []vk.PresentMode{
		vk.PresentModeMailbox,
		vk.PresentModeFifo,
		vk.PresentModeFifoRelaxed,
		vk.PresentModeImmediate,
	}
	if vsync {
		ranked = []vk.PresentMode{
			vk.PresentModeFifo,
			vk.PresentModeFifoRelaxed,
			vk.PresentModeMailbox,
			vk.PresentModeImmediate,
		}
	}
	for _, want := range ranked {
		for _, mode := range modes {
			if mode == want {
				return mode
			}
		}
	}
	return vk.PresentModeFifo
}

// ChooseCompositeAlpha ranks Opaque over Inherit over PreMultiplied
// over PostMultiplied among the supported bits.
func ChooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	ranked := []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaInheritBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
	}
	for _, bit := range ranked {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// ChooseImageCount picks the swapchain length: triple buffered under
// mailbox, double buffered otherwise, clamped to the surface bounds. A
// maxImages of zero means the surface imposes no upper bound.
func ChooseImageCount(minImages, maxImages uint32, presentMode vk.PresentMode) uint32 {
	var want uint32 = 2
	if presentMode == vk.PresentModeMailbox {
		want = 3
	}
	if want < minImages {
		want = minImages
	}
	if maxImages > 0 && want > maxImages {
		want = maxImages
	}
	return want
}

// ClampExtent resolves the swapchain extent. When the surface reports
// a fixed current extent it wins; otherwise the requested size is
// clamped to the supported range.
func ClampExtent(requested vk.Extent2D, caps vk.SurfaceCapabilities) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	out := requested
	out.Width = clampUint32(out.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	out.Height = clampUint32(out.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	return out
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AlignRowPitch rounds a tightly packed row size up to the device's
// optimal buffer copy row pitch alignment. An alignment of zero or one
// leaves the pitch unchanged.
func AlignRowPitch(rowBytes, alignment uint64) uint64 {
	if alignment <= 1 {
		return rowBytes
	}
	return (rowBytes + alignment - 1) / alignment * alignment
}

// FindMemoryTypeIndex scans the memory types for one that is allowed
// by typeFilter and carries all requested property flags. Returns -1
// when nothing matches.
func FindMemoryTypeIndex(types []vk.MemoryType, typeFilter uint32, properties vk.MemoryPropertyFlags) int32 {
	for i := range types {
		if typeFilter&(1<<uint32(i)) == 0 {
			continue
		}
		if types[i].PropertyFlags&properties == properties {
			return int32(i)
		}
	}
	return -1
}

// NextFrameSlot advances the frame-in-flight cursor. The slot moves
// forward before any fallible per-frame work so an aborted frame never
// reuses the previous slot's sync objects.
func NextFrameSlot(current, framesInFlight uint32) uint32 {
	return (current + 1) % framesInFlight
}
