package hal

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// ShaderModule wraps a compiled SPIR-V module together with its stage.
type ShaderModule struct {
	Handle vk.ShaderModule
	Stage  vk.ShaderStageFlagBits
}

// NewShaderModule creates a module from a SPIR-V byte stream. The blob
// length must be a multiple of four.
func NewShaderModule(context *Context, code []byte, stage vk.ShaderStageFlagBits) (*ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: blob is not a SPIR-V word stream (%d bytes)", ErrShaderCompilation, len(code))
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    bytesToWords(code),
	}

	var handle vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("%w: vkCreateShaderModule returned %s", ErrShaderCompilation, resultString(res))
	}
	return &ShaderModule{Handle: handle, Stage: stage}, nil
}

func (sm *ShaderModule) Destroy(context *Context) {
	if sm.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, sm.Handle, context.Allocator)
		sm.Handle = vk.NullShaderModule
	}
}

// StageCreateInfo builds the pipeline stage description for this
// module with a "main" entry point.
func (sm *ShaderModule) StageCreateInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  sm.Stage,
		Module: sm.Handle,
		PName:  safeString("main"),
	}
}
