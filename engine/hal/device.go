package hal

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
)

type Device struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport SwapchainSupportInfo

	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type SwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type deviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
}

type queueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

// DeviceCreate selects an adapter, builds the logical device, fetches
// the queues and creates the graphics command pool.
func DeviceCreate(context *Context) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// Do not create an additional queue when present shares the
	// graphics family.
	indices := []uint32{uint32(context.Device.GraphicsQueueIndex)}
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		indices = append(indices, uint32(context.Device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilitySubsetPresent(context.Device.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: safeStrings(extensionNames),
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed with %s", resultString(res))
	}
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(context.Device.LogicalDevice, uint32(context.Device.GraphicsQueueIndex), 0, &context.Device.GraphicsQueue)
	vk.GetDeviceQueue(context.Device.LogicalDevice, uint32(context.Device.PresentQueueIndex), 0, &context.Device.PresentQueue)

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed with %s", resultString(res))
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *Context) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(context.Device.LogicalDevice, context.Device.GraphicsCommandPool, context.Allocator)
	context.Device.GraphicsCommandPool = vk.NullCommandPool

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.SwapchainSupport = SwapchainSupportInfo{}
	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
}

// DeviceQuerySwapchainSupport refreshes surface capabilities, formats
// and present modes for the given adapter.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *SwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return fmt.Errorf("failed to query surface capabilities: %s", resultString(res))
	}
	supportInfo.Capabilities.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return fmt.Errorf("failed to query surface formats: %s", resultString(res))
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return fmt.Errorf("failed to query surface formats: %s", resultString(res))
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return fmt.Errorf("failed to query present modes: %s", resultString(res))
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return fmt.Errorf("failed to query present modes: %s", resultString(res))
		}
	}
	return nil
}

// DeviceDetectDepthFormat picks the first depth format usable as a
// depth/stencil attachment, preferring the higher precision ones.
func DeviceDetectDepthFormat(device *Device) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if properties.LinearTilingFeatures&flags == flags || properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

func selectPhysicalDevice(context *Context) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("vkEnumeratePhysicalDevices failed with %s", resultString(res))
	}
	if physicalDeviceCount == 0 {
		return fmt.Errorf("%w: no devices which support Vulkan were found", ErrNoSuitableAdapter)
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("vkEnumeratePhysicalDevices failed with %s", resultString(res))
	}

	requirements := deviceRequirements{
		Graphics:             true,
		Present:              true,
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}

	// First adapter satisfying the requirements wins. Queue family
	// selection below is greedy in the same spirit.
	for i := range physicalDevices {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)
		features.Deref()

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)
		memory.Deref()

		queueInfo := queueFamilyInfo{}
		ok, err := deviceMeetsRequirements(
			physicalDevices[i],
			context.Surface,
			&requirements,
			&queueInfo,
			&context.Device.SwapchainSupport)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		default:
			core.LogInfo("GPU type is Unknown.")
		}
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version(properties.ApiVersion).Major(),
			vk.Version(properties.ApiVersion).Minor(),
			vk.Version(properties.ApiVersion).Patch(),
		)

		context.Device.PhysicalDevice = physicalDevices[i]
		context.Device.GraphicsQueueIndex = queueInfo.GraphicsFamilyIndex
		context.Device.PresentQueueIndex = queueInfo.PresentFamilyIndex
		context.Device.Properties = properties
		context.Device.Features = features
		context.Device.Memory = memory
		break
	}

	if context.Device.PhysicalDevice == nil {
		return fmt.Errorf("%w: no physical device meets the requirements", ErrNoSuitableAdapter)
	}

	core.LogInfo("Physical device selected.")
	return nil
}

// pickQueueFamilies greedily selects the first family supporting
// graphics and the first able to present, which may be the same
// family. First-match rather than best-match; a known simplification.
// One-shot uploads submit on the graphics queue, so no transfer flag
// is required of any family.
func pickQueueFamilies(queueFlags []vk.QueueFlags, presentSupport []bool) queueFamilyInfo {
	out := queueFamilyInfo{
		GraphicsFamilyIndex: -1,
		PresentFamilyIndex:  -1,
	}
	for i := range queueFlags {
		if out.GraphicsFamilyIndex == -1 && queueFlags[i]&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			out.GraphicsFamilyIndex = int32(i)
		}
		if out.PresentFamilyIndex == -1 && i < len(presentSupport) && presentSupport[i] {
			out.PresentFamilyIndex = int32(i)
		}
	}
	return out
}

func deviceMeetsRequirements(
	device vk.PhysicalDevice,
	surface vk.Surface,
	requirements *deviceRequirements,
	outQueueInfo *queueFamilyInfo,
	outSwapchainSupport *SwapchainSupportInfo,
) (bool, error) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	queueFlags := make([]vk.QueueFlags, queueFamilyCount)
	presentSupport := make([]bool, queueFamilyCount)
	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()
		queueFlags[i] = queueFamilies[i].QueueFlags

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false, fmt.Errorf("failed to query surface support: %s", resultString(res))
		}
		presentSupport[i] = supportsPresent == vk.True
	}

	*outQueueInfo = pickQueueFamilies(queueFlags, presentSupport)

	if requirements.Graphics && outQueueInfo.GraphicsFamilyIndex == -1 {
		return false, nil
	}
	if requirements.Present && outQueueInfo.PresentFamilyIndex == -1 {
		return false, nil
	}
	if !deviceExtensionsSupported(device, requirements.DeviceExtensionNames) {
		return false, nil
	}

	if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
		return false, err
	}
	if len(outSwapchainSupport.Formats) < 1 || len(outSwapchainSupport.PresentModes) < 1 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return false, nil
	}

	core.LogDebug("Graphics Family Index: %d", outQueueInfo.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", outQueueInfo.PresentFamilyIndex)

	return true, nil
}

func deviceExtensionsSupported(device vk.PhysicalDevice, required []string) bool {
	var availableCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableCount, nil); res != vk.Success {
		return false
	}
	available := make([]vk.ExtensionProperties, availableCount)
	if availableCount > 0 {
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableCount, available); res != vk.Success {
			return false
		}
	}

	for _, want := range required {
		found := false
		for i := range available {
			available[i].Deref()
			if vk.ToString(available[i].ExtensionName[:]) == want {
				found = true
				break
			}
		}
		if !found {
			core.LogInfo("Required device extension '%s' not found, skipping device.", want)
			return false
		}
	}
	return true
}

func portabilitySubsetPresent(device vk.PhysicalDevice) bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	return deviceExtensionsSupported(device, []string{"VK_KHR_portability_subset"})
}
