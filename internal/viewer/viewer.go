// Package viewer implements the interactive mesh viewer loop.
package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/config"
	"github.com/Faultbox/meshgl/internal/engine/camera"
	"github.com/Faultbox/meshgl/internal/engine/framebuffer"
	"github.com/Faultbox/meshgl/internal/engine/gpu/glgpu"
	"github.com/Faultbox/meshgl/internal/engine/input"
	"github.com/Faultbox/meshgl/internal/engine/mapper"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/scene"
	"github.com/Faultbox/meshgl/internal/engine/texture"
	"github.com/Faultbox/meshgl/internal/engine/window"
	"github.com/Faultbox/meshgl/internal/logger"
)

const maxTextureSize = 2048

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	device   *glgpu.Device
	ctx      *mapper.Context
	scene    *scene.Scene
	camera   *camera.Orbit
	input    *input.Input
	picker   *framebuffer.Framebuffer
	controls *controls
	texture  uint32

	lastErr string
}

// New opens the window and builds the demo scene.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{cfg: cfg, log: logger.Named("viewer")}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height))

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.device = glgpu.New(logger.Named("gpu"))
	v.device.LimitTextureUnits(cfg.Render.MaxTextureUnits)
	v.ctx = mapper.NewContext(v.device, logger.Named("mapper"))
	v.ctx.SetShaderDumpDir(cfg.Render.ShaderDumpDir)
	v.log.Info("texture units", zap.Int("count", v.ctx.Units.Count()))

	w, h := v.window.Size()
	v.picker, err = framebuffer.New(int32(w), int32(h))
	if err != nil {
		v.Close()
		return nil, err
	}

	v.texture = v.loadTexture(cfg.Render.Texture)
	v.scene = scene.New(v.ctx, logger.Named("scene"))
	if err := v.populate(cfg.Render); err != nil {
		v.Close()
		return nil, err
	}
	v.controls = newControls(v.scene, v.texture, cfg.Render.ScalarVisibility, v.coincident())

	v.camera = camera.NewOrbit()
	v.resetCamera()
	v.input = input.New()

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	v.log.Info("viewer initialized", zap.Int("actors", len(v.scene.Actors)))
	return v, nil
}

func (v *Viewer) coincident() mapper.Coincident {
	c, _ := mapper.ParseCoincident(v.cfg.Render.ResolveCoincidentTopology)
	return c
}

func (v *Viewer) loadTexture(path string) uint32 {
	img := texture.Checker(256, 8,
		color.RGBA{R: 40, G: 40, B: 40, A: 255},
		color.RGBA{R: 220, G: 220, B: 220, A: 255})
	if path != "" {
		loaded, err := texture.Load(path)
		if err != nil {
			v.log.Warn("texture load failed, using checkerboard", zap.String("path", path), zap.Error(err))
		} else {
			img = texture.Fit(loaded, maxTextureSize)
		}
	}
	return v.device.UploadTexture(img)
}

// populate adds the demo meshes and applies the render settings to each mapper.
func (v *Viewer) populate(rc config.RenderConfig) error {
	edged := material.Default()
	edged.EdgeVisibility = true
	edged.EdgeColor = [3]float32{0.1, 0.1, 0.1}
	edged.Modified()

	shiny := material.Default()
	shiny.Specular = 0.6
	shiny.SpecularPower = 20
	shiny.Ambient = 0.1
	shiny.Modified()

	arrow := material.Default()
	arrow.DiffuseColor = [3]float32{0.9, 0.7, 0.2}
	arrow.PointSize = 6
	arrow.LineWidth = 2
	arrow.Modified()

	v.scene.Add("grid", scene.Grid(8, 8, 2), edged, mgl32.Translate3D(-2.5, 0, 0))
	v.scene.Add("ribbon", scene.Ribbon(48), shiny, mgl32.Ident4())
	v.scene.Add("arrow", scene.Arrow(), arrow, mgl32.Translate3D(2.5, 0, 0))

	coincident, ok := mapper.ParseCoincident(rc.ResolveCoincidentTopology)
	if !ok {
		return fmt.Errorf("unknown coincident topology %q", rc.ResolveCoincidentTopology)
	}
	for _, a := range v.scene.Actors {
		a.Mapper.SetMaterialMode(material.ParseMode(rc.MaterialMode))
		a.Mapper.SetScalarVisibility(rc.ScalarVisibility)
		a.Mapper.SetScalarMode(material.ParseScalarMode(rc.ScalarMode))
		a.Mapper.SetResolveCoincidentTopology(coincident)
		a.Mapper.SetPolygonOffset(rc.PolygonOffsetFactor, rc.PolygonOffsetUnits)
	}
	return nil
}

func (v *Viewer) resetCamera() {
	if lo, hi, ok := v.scene.Bounds(); ok {
		v.camera.FitToBounds(lo, hi)
	}
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Int("programs", v.ctx.Shaders.Len()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, ev := range v.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := v.window.Size()
			gl.Viewport(0, 0, int32(w), int32(h))
			v.picker.Resize(int32(w), int32(h))

		case input.EventKeyDown:
			switch ev.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_R:
				v.resetCamera()
			default:
				if msg, ok := v.controls.handleKey(ev.Key); ok {
					v.log.Info(msg)
					v.window.SetTitle(v.cfg.Window.Title + " - " + msg)
				}
			}

		case input.EventDrag:
			v.camera.HandleDrag(ev.DX, ev.DY)

		case input.EventWheel:
			v.camera.HandleZoom(ev.Wheel)

		case input.EventClick:
			v.pick(ev.X, ev.Y)
		}
	}
}

func (v *Viewer) matrices() (view, proj mgl32.Mat4) {
	return v.camera.View(), v.camera.Projection(v.window.Aspect())
}

func (v *Viewer) pick(x, y int) {
	// Mouse coordinates are in window points; the picker is in pixels.
	ww, _ := v.window.WindowSize()
	pw, _ := v.picker.Size()
	scale := float32(pw) / float32(max(ww, 1))
	px, py := int32(float32(x)*scale), int32(float32(y)*scale)

	view, proj := v.matrices()
	hit, ok, err := v.scene.Pick(v.picker, view, proj, px, py)
	if err != nil {
		v.log.Warn("pick failed", zap.Error(err))
		return
	}
	if !ok {
		v.window.SetTitle(v.cfg.Window.Title)
		return
	}
	msg := fmt.Sprintf("%s, primitive %d", hit.Actor.Name, hit.Primitive)
	v.log.Info("picked", zap.String("actor", hit.Actor.Name), zap.Int("primitive", hit.Primitive))
	v.window.SetTitle(v.cfg.Window.Title + " - " + msg)
}

func (v *Viewer) render() {
	gl.ClearColor(0.32, 0.34, 0.43, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view, proj := v.matrices()
	if _, err := v.scene.Render(view, proj); err != nil {
		// Log each distinct failure once rather than every frame.
		if msg := err.Error(); msg != v.lastErr {
			v.lastErr = msg
			v.log.Warn("render incomplete", zap.Error(err))
		}
		return
	}
	v.lastErr = ""
}

// Close releases every resource in reverse creation order.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.scene != nil {
		v.scene.Release()
	}
	if v.ctx != nil {
		v.ctx.Release()
	}
	if v.texture != 0 {
		v.device.DeleteTexture(v.texture)
	}
	if v.picker != nil {
		v.picker.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
