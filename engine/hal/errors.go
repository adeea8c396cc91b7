package hal

import "errors"

// Failure classes surfaced by the backend. Callers match these with
// errors.Is; the wrapped message carries the VkResult detail.
var (
	// ErrNoSuitableAdapter is returned when no physical device exposes
	// the required queue families and surface support.
	ErrNoSuitableAdapter = errors.New("no suitable graphics adapter found")

	// ErrNoCompatibleMemoryType is returned when an allocation cannot
	// be placed in any memory type matching the requested properties.
	ErrNoCompatibleMemoryType = errors.New("no compatible memory type")

	// ErrSwapchainCreation is returned when the swapchain or its image
	// views cannot be created.
	ErrSwapchainCreation = errors.New("swapchain creation failed")

	// ErrRenderTargetCreation is returned when depth or framebuffer
	// resources cannot be created.
	ErrRenderTargetCreation = errors.New("render target creation failed")

	// ErrShaderCompilation is returned when a SPIR-V module is rejected
	// by the device.
	ErrShaderCompilation = errors.New("shader module creation failed")

	// ErrPipelineCreation is returned when pipeline layout or pipeline
	// construction fails.
	ErrPipelineCreation = errors.New("pipeline creation failed")

	// ErrSwapchainOutOfDate signals that the swapchain no longer
	// matches the surface and must be recreated before the next frame.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")

	// ErrAcquire is returned for acquisition failures other than an
	// out-of-date swapchain.
	ErrAcquire = errors.New("failed to acquire swapchain image")

	// ErrPresent is returned for presentation failures other than an
	// out-of-date swapchain.
	ErrPresent = errors.New("failed to present swapchain image")
)
