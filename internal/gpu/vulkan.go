//go:build !nogpu

package gpu

// Import the Vulkan backend so it registers with the HAL via init().
// Building with -tags nogpu leaves only the noop backend available.
import _ "github.com/gogpu/wgpu/hal/vulkan"
