package assets

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/glimmerhal/glimmer/engine/core"
	xdraw "golang.org/x/image/draw"
)

// Manager resolves shader binaries and textures below an assets
// directory and watches it for changes, so a running example can react
// to a recompiled shader without restarting.
type Manager struct {
	dir     string
	watcher *fsnotify.Watcher

	mutex   sync.Mutex
	changed map[string]time.Time

	done chan struct{}
}

func NewManager(dir string) (*Manager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		dir:     dir,
		watcher: fsWatch,
		changed: make(map[string]time.Time),
		done:    make(chan struct{}),
	}

	if err := m.watchRecursive(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go m.start()

	return m, nil
}

func (m *Manager) Close() error {
	close(m.done)
	return nil
}

// ShaderBinary reads a compiled SPIR-V blob from <dir>/shaders.
// Compilation itself happens offline (mage build:shaders).
func (m *Manager) ShaderBinary(name string) ([]byte, error) {
	path := filepath.Join(m.dir, "shaders", name+".spv")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shader binary %s: %w", path, err)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("shader binary %s is not a SPIR-V word stream (%d bytes)", path, len(data))
	}
	return data, nil
}

// Texture decodes a PNG from <dir>/textures into tightly packed RGBA,
// which is what the GPU upload path consumes.
func (m *Manager) Texture(name string) (*image.RGBA, error) {
	path := filepath.Join(m.dir, "textures", name+".png")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}

	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(src.Bounds())
	xdraw.Copy(rgba, image.Point{}, src, src.Bounds(), xdraw.Src, nil)
	return rgba, nil
}

// TakeChanged drains and returns the paths (relative to the assets
// dir) written or created since the previous call.
func (m *Manager) TakeChanged() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(m.changed))
	for p := range m.changed {
		out = append(out, p)
	}
	m.changed = make(map[string]time.Time)
	return out
}

func (m *Manager) start() {
	for {
		select {
		case e := <-m.watcher.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					m.watchRecursive(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				m.recordChange(e.Name)
			}

		case e := <-m.watcher.Errors:
			if e != nil {
				core.LogError("asset watcher: %s", e.Error())
			}

		case <-m.done:
			m.watcher.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (m *Manager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if err := m.watcher.Add(walkPath); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Manager) recordChange(path string) {
	rel, err := filepath.Rel(m.dir, path)
	if err != nil {
		rel = path
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.changed[rel] = time.Now()
}
