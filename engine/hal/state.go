package hal

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/glimmerhal/glimmer/engine/core"
	"github.com/glimmerhal/glimmer/engine/platform"
)

// StateConfig selects the fixed properties of a backend State.
type StateConfig struct {
	AppName        string
	Width          uint32
	Height         uint32
	FramesInFlight uint32
	Validation     bool
	// VSync prefers FIFO presentation over mailbox.
	VSync bool
	// DepthEnabled adds a depth attachment to the main render pass and
	// framebuffers.
	DepthEnabled bool
	ClearColor   [4]float32
}

// State owns the full backend object graph for one window: instance,
// surface, device, swapchain, render pass, per-image command buffers
// and per-slot sync objects. Construction failures unwind everything
// created so far; Destroy tears down in reverse creation order.
type State struct {
	context  *Context
	platform *platform.Platform
	config   StateConfig
	cleanup  *CleanupRegistry

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	FrameNumber uint64
}

func NewState(p *platform.Platform, config StateConfig) (*State, error) {
	if config.FramesInFlight == 0 {
		config.FramesInFlight = 2
	}

	s := &State{
		platform: p,
		config:   config,
		cleanup:  NewCleanupRegistry(),
		context: &Context{
			FramebufferWidth:  config.Width,
			FramebufferHeight: config.Height,
			FramesInFlight:    config.FramesInFlight,
			VSync:             config.VSync,
			DepthEnabled:      config.DepthEnabled,
			Device:            &Device{},
		},
	}

	if err := s.initialize(); err != nil {
		// Unwind whatever was created before the failure.
		s.cleanup.Run()
		return nil, err
	}
	return s, nil
}

func (s *State) Context() *Context {
	return s.context
}

// WaitIdle blocks until the device has finished all submitted work.
// Callers destroying their own GPU resources must idle first.
func (s *State) WaitIdle() {
	if s.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(s.context.Device.LogicalDevice)
	}
}

// Destroy waits for the device to idle and releases every object in
// reverse creation order.
func (s *State) Destroy() {
	if s.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(s.context.Device.LogicalDevice)
	}
	s.cleanup.Run()
	core.LogInfo("Backend state destroyed.")
}

func (s *State) initialize() error {
	ctx := s.context

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("vulkan loader not available")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan bindings: %w", err)
	}

	// Instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(s.config.AppName),
		PEngineName:        safeString("Glimmer"),
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, s.platform.GetRequiredExtensionNames()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if s.config.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredExtensions),
	}
	if runtime.GOOS == "darwin" {
		createInfo.Flags |= 1 // VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	}

	var validationLayers []string
	if s.config.Validation {
		validationLayers = availableValidationLayers()
	}
	createInfo.EnabledLayerCount = uint32(len(validationLayers))
	createInfo.PpEnabledLayerNames = safeStrings(validationLayers)

	if res := vk.CreateInstance(&createInfo, ctx.Allocator, &ctx.Instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed with %s", resultString(res))
	}
	if err := vk.InitInstance(ctx.Instance); err != nil {
		return fmt.Errorf("failed to load instance procs: %w", err)
	}
	s.cleanup.Register("instance", func() {
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	})
	core.LogInfo("Vulkan instance created.")

	// Debug reporting.
	if s.config.Validation && len(validationLayers) > 0 {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: debugReportCallback,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(ctx.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			core.LogWarn("failed to create debug report callback: %s", resultString(res))
		} else {
			ctx.debugMessenger = dbg
			s.cleanup.Register("debug messenger", func() {
				vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, nil)
			})
			core.LogDebug("Vulkan debug reporting enabled.")
		}
	}

	// Surface.
	surfacePtr, err := s.platform.Window.CreateWindowSurface(ctx.Instance, nil)
	if err != nil {
		return fmt.Errorf("failed to create window surface: %w", err)
	}
	ctx.Surface = vk.SurfaceFromPointer(surfacePtr)
	s.cleanup.Register("surface", func() {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
	})
	core.LogDebug("Vulkan surface created.")

	// Device.
	if err := DeviceCreate(ctx); err != nil {
		return err
	}
	s.cleanup.Register("device", func() {
		DeviceDestroy(ctx)
	})

	// Swapchain.
	sc, err := SwapchainCreate(ctx, ctx.FramebufferWidth, ctx.FramebufferHeight)
	if err != nil {
		return err
	}
	ctx.Swapchain = sc
	ctx.FramebufferWidth = sc.Extent.Width
	ctx.FramebufferHeight = sc.Extent.Height
	s.cleanup.Register("swapchain", func() {
		ctx.Swapchain.Destroy(ctx)
	})

	// Main render pass.
	cc := s.config.ClearColor
	rp, err := RenderPassCreate(
		ctx,
		0, 0, float32(ctx.FramebufferWidth), float32(ctx.FramebufferHeight),
		cc[0], cc[1], cc[2], cc[3],
		1.0, 0,
		s.config.DepthEnabled)
	if err != nil {
		return err
	}
	ctx.RenderPass = rp
	s.cleanup.Register("render pass", func() {
		ctx.RenderPass.Destroy(ctx)
	})

	// Swapchain framebuffers.
	ctx.Swapchain.Framebuffers = make([]*Framebuffer, ctx.Swapchain.ImageCount)
	if err := s.regenerateFramebuffers(); err != nil {
		return err
	}
	s.cleanup.Register("framebuffers", func() {
		s.destroyFramebuffers()
	})

	// Command buffers, one per swapchain image.
	if err := s.createCommandBuffers(); err != nil {
		return err
	}
	s.cleanup.Register("command buffers", func() {
		s.destroyCommandBuffers()
	})

	// Sync objects, one set per frame in flight.
	ctx.ImageAvailableSemaphores = make([]vk.Semaphore, ctx.FramesInFlight)
	ctx.QueueCompleteSemaphores = make([]vk.Semaphore, ctx.FramesInFlight)
	ctx.InFlightFences = make([]*Fence, ctx.FramesInFlight)

	for i := 0; i < int(ctx.FramesInFlight); i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create image available semaphore: %s", resultString(res))
		}
		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create queue complete semaphore: %s", resultString(res))
		}

		// Created signaled so the first frame does not wait on a fence
		// that will never fire.
		fence, err := NewFence(ctx, true)
		if err != nil {
			return err
		}
		ctx.InFlightFences[i] = fence
	}
	s.cleanup.Register("sync objects", func() {
		s.destroySyncObjects()
	})

	// Per-image borrowed fences; nil means the image is not in flight.
	ctx.ImagesInFlight = make([]*Fence, ctx.Swapchain.ImageCount)

	core.LogInfo("Backend state initialized (%d frames in flight).", ctx.FramesInFlight)
	return nil
}

func (s *State) createCommandBuffers() error {
	ctx := s.context
	if len(ctx.GraphicsCommandBuffers) != int(ctx.Swapchain.ImageCount) {
		s.destroyCommandBuffers()
		ctx.GraphicsCommandBuffers = make([]*CommandBuffer, ctx.Swapchain.ImageCount)
	}
	for i := 0; i < int(ctx.Swapchain.ImageCount); i++ {
		if ctx.GraphicsCommandBuffers[i] != nil && ctx.GraphicsCommandBuffers[i].Handle != nil {
			ctx.GraphicsCommandBuffers[i].Free(ctx, ctx.Device.GraphicsCommandPool)
		}
		cb, err := NewCommandBuffer(ctx, ctx.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		ctx.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Graphics command buffers created.")
	return nil
}

func (s *State) destroyCommandBuffers() {
	ctx := s.context
	for i := range ctx.GraphicsCommandBuffers {
		if ctx.GraphicsCommandBuffers[i] != nil && ctx.GraphicsCommandBuffers[i].Handle != nil {
			ctx.GraphicsCommandBuffers[i].Free(ctx, ctx.Device.GraphicsCommandPool)
		}
	}
	ctx.GraphicsCommandBuffers = nil
}

func (s *State) regenerateFramebuffers() error {
	ctx := s.context
	for i := 0; i < int(ctx.Swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{ctx.Swapchain.Views[i]}
		if s.config.DepthEnabled {
			attachments = append(attachments, ctx.Swapchain.DepthAttachment.View)
		}
		fb, err := FramebufferCreate(ctx, ctx.RenderPass, ctx.FramebufferWidth, ctx.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		ctx.Swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (s *State) destroyFramebuffers() {
	ctx := s.context
	for i := range ctx.Swapchain.Framebuffers {
		if ctx.Swapchain.Framebuffers[i] != nil {
			ctx.Swapchain.Framebuffers[i].Destroy(ctx)
		}
	}
}

func (s *State) destroySyncObjects() {
	ctx := s.context
	for i := 0; i < int(ctx.FramesInFlight); i++ {
		if ctx.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.ImageAvailableSemaphores[i], ctx.Allocator)
			ctx.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if ctx.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.QueueCompleteSemaphores[i], ctx.Allocator)
			ctx.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		ctx.InFlightFences[i].Destroy(ctx)
	}
	ctx.ImageAvailableSemaphores = nil
	ctx.QueueCompleteSemaphores = nil
	ctx.InFlightFences = nil
	ctx.ImagesInFlight = nil
}

func availableValidationLayers() []string {
	required := []string{"VK_LAYER_KHRONOS_validation"}

	var availableCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&availableCount, nil); res != vk.Success {
		return nil
	}
	available := make([]vk.LayerProperties, availableCount)
	if res := vk.EnumerateInstanceLayerProperties(&availableCount, available); res != vk.Success {
		return nil
	}

	out := []string{}
	for _, want := range required {
		for i := range available {
			available[i].Deref()
			if vk.ToString(available[i].LayerName[:]) == want {
				out = append(out, want)
				break
			}
		}
	}
	if len(out) < len(required) {
		core.LogWarn("Not all requested validation layers are present; continuing without the missing ones.")
	}
	return out
}

func debugReportCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint64, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 {
		core.LogError("[%s] %s", pLayerPrefix, pMessage)
	} else {
		core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
	}
	return vk.False
}
