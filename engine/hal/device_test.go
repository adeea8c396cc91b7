package hal

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestPickQueueFamiliesFirstMatch(t *testing.T) {
	graphics := vk.QueueFlags(vk.QueueGraphicsBit)
	compute := vk.QueueFlags(vk.QueueComputeBit)

	got := pickQueueFamilies(
		[]vk.QueueFlags{compute, graphics, graphics},
		[]bool{false, false, true},
	)
	// The second graphics-capable family is never considered.
	assert.Equal(t, int32(1), got.GraphicsFamilyIndex)
	assert.Equal(t, int32(2), got.PresentFamilyIndex)
}

func TestPickQueueFamiliesSharedFamily(t *testing.T) {
	graphics := vk.QueueFlags(vk.QueueGraphicsBit)

	got := pickQueueFamilies([]vk.QueueFlags{graphics}, []bool{true})
	assert.Equal(t, int32(0), got.GraphicsFamilyIndex)
	assert.Equal(t, int32(0), got.PresentFamilyIndex)
}

func TestPickQueueFamiliesWithoutTransferFlagQualifies(t *testing.T) {
	// A family advertising graphics but no explicit transfer flag must
	// still be selectable; uploads go through the graphics queue.
	graphics := vk.QueueFlags(vk.QueueGraphicsBit)

	got := pickQueueFamilies([]vk.QueueFlags{graphics}, []bool{true})
	assert.Equal(t, int32(0), got.GraphicsFamilyIndex)
	assert.Equal(t, int32(0), got.PresentFamilyIndex)
}

func TestPickQueueFamiliesNoneSuitable(t *testing.T) {
	compute := vk.QueueFlags(vk.QueueComputeBit)

	got := pickQueueFamilies([]vk.QueueFlags{compute}, []bool{false})
	assert.Equal(t, int32(-1), got.GraphicsFamilyIndex)
	assert.Equal(t, int32(-1), got.PresentFamilyIndex)
}
