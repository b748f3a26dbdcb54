package mapper

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/shader"
)

func scale(c [3]float32, k float32) [3]float32 {
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}

func (m *Mapper) setUniforms(program uint32, fs shader.FeatureState, f *Frame) error {
	m.setMaterialUniforms(program, fs, f)
	m.setCameraUniforms(program, fs, f.Camera)
	m.setLightUniforms(program, fs, f)
	return m.setMapperUniforms(program, fs, f)
}

func (m *Mapper) setMaterialUniforms(program uint32, fs shader.FeatureState, f *Frame) {
	dev := m.ctx.Device
	mat := f.Material
	dev.Uniform1f(program, "opacityUniform", mat.Opacity)
	dev.Uniform3f(program, "ambientColorUniform", scale(mat.AmbientColor, mat.Ambient))
	dev.Uniform3f(program, "diffuseColorUniform", scale(mat.DiffuseColor, mat.Diffuse))
	if fs.Lighting >= lighting.Headlight {
		dev.Uniform3f(program, "specularColor", scale(mat.SpecularColor, mat.Specular))
		dev.Uniform1f(program, "specularPower", mat.SpecularPower)
	}
}

func (m *Mapper) setCameraUniforms(program uint32, fs shader.FeatureState, cam Camera) {
	dev := m.ctx.Device
	mcvc := cam.View.Mul4(cam.model())
	dev.UniformMatrix4(program, "MCVCMatrix", mcvc)
	dev.UniformMatrix4(program, "VCDCMatrix", cam.Projection)
	if fs.Lighting > lighting.NoLighting {
		dev.UniformMatrix3(program, "normalMatrix", mcvc.Mat3().Inv().Transpose())
	}
}

// lightDirectionVC returns the light direction in view coordinates.
// Headlights always point down the view axis and camera lights are
// already expressed in view coordinates.
func lightDirectionVC(l lighting.Light, view mgl32.Mat4) [3]float32 {
	switch l.Kind {
	case lighting.KindHeadlight:
		return [3]float32{0, 0, -1}
	case lighting.KindCamera:
		return l.Direction()
	}
	d := l.Direction()
	v := view.Mat3().Mul3x1(mgl32.Vec3(d)).Normalize()
	return [3]float32(v)
}

func lightPositionVC(l lighting.Light, view mgl32.Mat4) [3]float32 {
	switch l.Kind {
	case lighting.KindHeadlight:
		return [3]float32{}
	case lighting.KindCamera:
		return l.Position
	}
	return [3]float32(view.Mul4x1(mgl32.Vec3(l.Position).Vec4(1)).Vec3())
}

func (m *Mapper) setLightUniforms(program uint32, fs shader.FeatureState, f *Frame) {
	if fs.Lighting < lighting.LightKit {
		return
	}
	dev := m.ctx.Device
	lights := lighting.Active(f.Lights)
	colors := make([][3]float32, len(lights))
	dirs := make([][3]float32, len(lights))
	for i, l := range lights {
		colors[i] = l.ScaledColor()
		dirs[i] = lightDirectionVC(l, f.Camera.View)
	}
	dev.Uniform1i(program, "numberOfLights", int32(len(lights)))
	dev.Uniform3fv(program, "lightColor", colors)
	dev.Uniform3fv(program, "lightDirectionVC", dirs)

	if fs.Lighting < lighting.Positional {
		return
	}
	positions := make([][3]float32, len(lights))
	atten := make([][3]float32, len(lights))
	cones := make([]float32, len(lights))
	exps := make([]float32, len(lights))
	positional := make([]int32, len(lights))
	for i, l := range lights {
		positions[i] = lightPositionVC(l, f.Camera.View)
		atten[i] = l.Attenuation
		cones[i] = l.ConeAngle
		exps[i] = l.Exponent
		if l.Positional {
			positional[i] = 1
		}
	}
	dev.Uniform3fv(program, "lightPositionVC", positions)
	dev.Uniform3fv(program, "lightAttenuation", atten)
	dev.Uniform1fv(program, "lightConeAngle", cones)
	dev.Uniform1fv(program, "lightExponent", exps)
	dev.Uniform1iv(program, "lightPositional", positional)
}

func (m *Mapper) setMapperUniforms(program uint32, fs shader.FeatureState, f *Frame) error {
	dev := m.ctx.Device
	if fs.HasTCoord1D || fs.HasTCoord2D {
		u, err := m.ctx.Units.UnitFor(f.Material.Texture)
		if err != nil {
			m.log.Warn("texture unit exhausted")
			return err
		}
		dev.Uniform1i(program, "texture1", int32(u))
	}
	if fs.DepthPeeling {
		for _, t := range []struct {
			name string
			tex  uint32
		}{
			{"opaqueZTexture", f.DepthPeeling.OpaqueZ},
			{"translucentZTexture", f.DepthPeeling.TranslucentZ},
		} {
			u, err := m.ctx.Units.UnitFor(t.tex)
			if err != nil {
				m.log.Warn("texture unit exhausted")
				return err
			}
			dev.Uniform1i(program, t.name, int32(u))
		}
	}
	if fs.Picking {
		dev.Uniform3f(program, "mapperIndex", f.Selection.MapperIndex())
	}
	return nil
}
