// Package mapper turns a polygonal mesh into GPU buffers, shader programs
// and draw calls.
//
// Each mapper keeps one slot per primitive class (verts, lines, polys,
// strips). A slot owns its index buffer, vertex array and the program it
// last built, and rebuilds that program only when something that feeds the
// shader text changed after the slot's last build.
package mapper

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/shader"
	"github.com/Faultbox/meshgl/internal/engine/shadercache"
	"github.com/Faultbox/meshgl/internal/engine/texunit"
)

// ErrNotReady is returned when a mapper could not draw all of its slots.
var ErrNotReady = errors.New("mapper not ready")

// Context is the per-graphics-context state shared by every mapper that
// draws into it. Like the cache it owns, it is single-threaded.
type Context struct {
	Device  gpu.Device
	Shaders *shadercache.Cache
	Units   *texunit.Manager

	log     *zap.Logger
	dumpDir string
	dumped  map[string]bool
}

// NewContext creates the shared state for dev. A nil logger disables logging.
func NewContext(dev gpu.Device, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		Device:  dev,
		Shaders: shadercache.New(dev, log.Named("shadercache")),
		Units:   texunit.New(dev),
		log:     log,
		dumped:  make(map[string]bool),
	}
}

// SetShaderDumpDir makes the context write every newly built program
// source into dir. An empty dir disables dumping.
func (c *Context) SetShaderDumpDir(dir string) {
	c.dumpDir = dir
}

func (c *Context) dump(p *shadercache.Program) {
	if c.dumpDir == "" || c.dumped[p.Hash] {
		return
	}
	c.dumped[p.Hash] = true
	if err := os.MkdirAll(c.dumpDir, 0o755); err != nil {
		c.log.Warn("shader dump failed", zap.Error(err))
		return
	}
	base := filepath.Join(c.dumpDir, p.Hash[:12])
	files := map[string]string{
		".vert": p.Source.Vertex,
		".frag": p.Source.Fragment,
		".geom": p.Source.Geometry,
	}
	for ext, src := range files {
		if src == "" {
			continue
		}
		if err := os.WriteFile(base+ext, []byte(src), 0o644); err != nil {
			c.log.Warn("shader dump failed", zap.String("file", base+ext), zap.Error(err))
		}
	}
	c.log.Debug("shader source dumped", zap.String("prefix", base))
}

// Build builds and readies the program for features.
func (c *Context) Build(features shader.FeatureState) (*shadercache.Program, error) {
	p, err := c.Shaders.Ready(shader.Build(features))
	if err != nil {
		return nil, err
	}
	c.dump(p)
	return p, nil
}

// Release frees every cached program. Mappers must be released first.
func (c *Context) Release() {
	c.Shaders.Release()
	c.Units.ReleaseAll()
}
