// Package shadercache deduplicates compiled shader programs by source.
//
// Programs are keyed by a digest of their stage sources, so two callers
// that build the same text share one GPU program. The cache also tracks
// which program is currently bound and skips redundant binds.
//
// A Cache belongs to one render context and must only be used from the
// goroutine that owns that context.
package shadercache

import (
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/shader"
)

var (
	// ErrCompile is returned when a stage fails to compile.
	ErrCompile = errors.New("shader compile failed")
	// ErrLink is returned when compiled stages fail to link.
	ErrLink = errors.New("shader link failed")
)

// Program is one cached program and the stages linked into it.
type Program struct {
	Source   shader.Source
	Hash     string
	Handle   uint32
	Compiled bool

	stages []uint32
}

// Cache owns every program it compiles.
type Cache struct {
	dev       gpu.ShaderDevice
	log       *zap.Logger
	programs  map[string]*Program
	lastBound *Program
}

// New creates an empty cache. A nil logger disables logging.
func New(dev gpu.ShaderDevice, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		dev:      dev,
		log:      log,
		programs: make(map[string]*Program),
	}
}

// Hash digests the three stage sources. Each stage is terminated by a zero
// byte so moving text across a stage boundary changes the digest.
func Hash(src shader.Source) string {
	h, _ := blake2b.New256(nil)
	for _, s := range []string{src.Vertex, src.Fragment, src.Geometry} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached program for src, compiling it on first use.
// It does not bind the program.
func (c *Cache) Get(src shader.Source) (*Program, error) {
	key := Hash(src)
	p, ok := c.programs[key]
	if !ok {
		p = &Program{Source: src, Hash: key}
		c.programs[key] = p
	}
	if err := c.compile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Ready returns the program for src compiled and bound.
func (c *Cache) Ready(src shader.Source) (*Program, error) {
	p, err := c.Get(src)
	if err != nil {
		return nil, err
	}
	c.Bind(p)
	return p, nil
}

// ReadyProgram compiles p if needed and binds it.
func (c *Cache) ReadyProgram(p *Program) error {
	if err := c.compile(p); err != nil {
		return err
	}
	c.Bind(p)
	return nil
}

// Bind makes p current unless it already is.
func (c *Cache) Bind(p *Program) {
	if c.lastBound == p {
		return
	}
	if c.lastBound != nil {
		c.dev.UseProgram(0)
	}
	c.dev.UseProgram(p.Handle)
	c.lastBound = p
}

// Unbind releases the current program.
func (c *Cache) Unbind() {
	if c.lastBound == nil {
		return
	}
	c.dev.UseProgram(0)
	c.lastBound = nil
}

// Bound returns the program currently bound through the cache.
func (c *Cache) Bound() *Program { return c.lastBound }

// Len returns the number of cached programs.
func (c *Cache) Len() int { return len(c.programs) }

func (c *Cache) compile(p *Program) error {
	if p.Compiled {
		return nil
	}

	type stage struct {
		kind gpu.Stage
		src  string
	}
	stages := []stage{
		{gpu.VertexStage, p.Source.Vertex},
		{gpu.FragmentStage, p.Source.Fragment},
	}
	if p.Source.Geometry != "" {
		stages = append(stages, stage{gpu.GeometryStage, p.Source.Geometry})
	}

	handles := make([]uint32, 0, len(stages))
	for _, s := range stages {
		h, err := c.dev.CompileShader(s.kind, s.src)
		if err != nil {
			c.deleteShaders(handles)
			c.log.Error("shader compile failed",
				zap.String("hash", p.Hash[:12]),
				zap.Stringer("stage", s.kind),
				zap.Error(err))
			return fmt.Errorf("%w: %s: %w", ErrCompile, s.kind, err)
		}
		handles = append(handles, h)
	}

	prog, err := c.dev.LinkProgram(handles...)
	if err != nil {
		c.deleteShaders(handles)
		c.log.Error("shader link failed", zap.String("hash", p.Hash[:12]), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrLink, err)
	}

	p.stages = handles
	p.Handle = prog
	p.Compiled = true
	c.log.Debug("shader program compiled",
		zap.String("hash", p.Hash[:12]),
		zap.Uint32("handle", prog),
		zap.Int("cached", len(c.programs)))
	return nil
}

func (c *Cache) deleteShaders(handles []uint32) {
	for _, h := range handles {
		c.dev.DeleteShader(h)
	}
}

// ReleaseProgram frees the GPU objects of one program. The entry stays in
// the cache and recompiles on next use.
func (c *Cache) ReleaseProgram(p *Program) {
	if !p.Compiled {
		return
	}
	if c.lastBound == p {
		c.Unbind()
	}
	c.deleteShaders(p.stages)
	c.dev.DeleteProgram(p.Handle)
	p.stages = nil
	p.Handle = 0
	p.Compiled = false
}

// Release frees every program and empties the cache.
func (c *Cache) Release() {
	for key, p := range c.programs {
		c.ReleaseProgram(p)
		delete(c.programs, key)
	}
}
