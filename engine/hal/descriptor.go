package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// TextureBinding owns the layout, pool and set exposing a single
// combined image sampler to the fragment stage at binding 0.
type TextureBinding struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
	Set    vk.DescriptorSet
}

func NewTextureBinding(context *Context, texture *Texture) (*TextureBinding, error) {
	out := &TextureBinding{}

	samplerLayoutBinding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{samplerLayoutBinding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", resultString(res))
	}
	out.Layout = layout

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		out.Destroy(context)
		return nil, fmt.Errorf("vkCreateDescriptorPool failed with %s", resultString(res))
	}
	out.Pool = pool

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     out.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{out.Layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		out.Destroy(context)
		return nil, fmt.Errorf("vkAllocateDescriptorSets failed with %s", resultString(res))
	}
	out.Set = sets[0]

	imageInfo := vk.DescriptorImageInfo{
		Sampler:     texture.Sampler,
		ImageView:   texture.Image.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          out.Set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)

	return out, nil
}

func (tb *TextureBinding) Destroy(context *Context) {
	// Sets are returned with the pool.
	if tb.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, tb.Pool, context.Allocator)
		tb.Pool = vk.NullDescriptorPool
	}
	if tb.Layout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, tb.Layout, context.Allocator)
		tb.Layout = vk.NullDescriptorSetLayout
	}
	tb.Set = vk.NullDescriptorSet
}
