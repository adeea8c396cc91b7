package hal

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These run against released or not-yet-built swapchains, so no device
// call is reached on the paths under test.

func TestDestroySwapchainOnReleasedSwapchainIsNoOp(t *testing.T) {
	// After a failed recreation the registered cleanup still runs over
	// the old, already-released swapchain; it must return before
	// touching the device.
	s := &Swapchain{}
	ctx := &Context{Device: &Device{}}

	s.destroySwapchain(ctx)

	assert.Equal(t, vk.NullSwapchain, s.Handle)
	assert.Nil(t, s.Views)
	assert.Nil(t, s.Images)
	assert.Zero(t, s.ImageCount)
	assert.Nil(t, s.DepthAttachment)
}

func TestDepthAttachmentSkippedWhenDepthDisabled(t *testing.T) {
	// Clear-only scenes must neither allocate a depth image nor query
	// a depth format.
	s := &Swapchain{}
	ctx := &Context{Device: &Device{}}

	require.NoError(t, s.createDepthAttachment(ctx))
	assert.Nil(t, s.DepthAttachment)
	assert.Equal(t, vk.FormatUndefined, ctx.Device.DepthFormat)
}
