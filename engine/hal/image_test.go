package hal

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestImageDestroyToleratesPartialConstruction(t *testing.T) {
	// Failed construction unwinds through Destroy, which must skip
	// every handle that was never created.
	ctx := &Context{Device: &Device{}}

	img := &Image{}
	img.Destroy(ctx)
	assert.Equal(t, vk.NullImageView, img.View)
	assert.Equal(t, vk.NullDeviceMemory, img.Memory)
	assert.Equal(t, vk.NullImage, img.Handle)

	tex := &Texture{}
	tex.Destroy(ctx)
	assert.Nil(t, tex.Image)
	assert.Equal(t, vk.NullSampler, tex.Sampler)
}
