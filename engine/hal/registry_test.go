package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupRegistryRunsInReverseOrder(t *testing.T) {
	r := NewCleanupRegistry()

	var order []string
	for _, label := range []string{"instance", "surface", "device", "swapchain"} {
		label := label
		r.Register(label, func() {
			order = append(order, label)
		})
	}

	r.Run()
	assert.Equal(t, []string{"swapchain", "device", "surface", "instance"}, order)
	assert.Equal(t, 0, r.Len())
}

func TestCleanupRegistryRelease(t *testing.T) {
	r := NewCleanupRegistry()

	var ran []string
	r.Register("keep-a", func() { ran = append(ran, "keep-a") })
	id := r.Register("drop", func() { ran = append(ran, "drop") })
	r.Register("keep-b", func() { ran = append(ran, "keep-b") })

	assert.True(t, r.Release(id))
	// A released handle cannot be released twice.
	assert.False(t, r.Release(id))

	r.Run()
	assert.Equal(t, []string{"keep-b", "keep-a"}, ran)
}

func TestCleanupRegistryTeardownOrderWithOptionalDepth(t *testing.T) {
	// The backend registers resources in creation order; teardown must
	// visit every dependency edge in reverse whether or not the
	// optional depth attachment exists.
	creationOrder := []string{
		"instance", "surface", "device", "swapchain",
		"render pass", "framebuffers", "command buffers", "sync objects",
	}
	dependsOn := map[string]string{
		"surface":         "instance",
		"device":          "surface",
		"swapchain":       "device",
		"depth image":     "swapchain",
		"render pass":     "swapchain",
		"framebuffers":    "render pass",
		"command buffers": "device",
		"sync objects":    "device",
	}

	for _, withDepth := range []bool{false, true} {
		labels := creationOrder
		if withDepth {
			labels = append(append([]string{}, creationOrder[:4]...), "depth image")
			labels = append(labels, creationOrder[4:]...)
		}

		r := NewCleanupRegistry()
		var destroyed []string
		for _, label := range labels {
			label := label
			r.Register(label, func() {
				destroyed = append(destroyed, label)
			})
		}
		r.Run()

		index := map[string]int{}
		for i, label := range destroyed {
			index[label] = i
		}
		for child, parent := range dependsOn {
			ci, ok := index[child]
			if !ok {
				continue
			}
			assert.Less(t, ci, index[parent],
				"%s must be destroyed before %s (depth=%v)", child, parent, withDepth)
		}
	}
}

func TestCleanupRegistryRunIsIdempotent(t *testing.T) {
	r := NewCleanupRegistry()

	count := 0
	r.Register("once", func() { count++ })

	r.Run()
	r.Run()
	assert.Equal(t, 1, count)
}
