// Package templates provides the embedded GLSL templates the shader
// builder specializes.
package templates

import _ "embed"

// VertexNoLighting is the vertex template for unlit primitives.
//
//go:embed nolighting.vert
var VertexNoLighting string

// VertexFragmentLit is the vertex template for per-fragment lighting.
//
//go:embed fragmentlit.vert
var VertexFragmentLit string

// FragmentUnlit is the fragment template for unlit primitives.
//
//go:embed unlit.frag
var FragmentUnlit string

// FragmentHeadlight is the fragment template for a single headlight.
//
//go:embed headlight.frag
var FragmentHeadlight string

// FragmentLightKit is the fragment template for several directional lights.
//
//go:embed lightkit.frag
var FragmentLightKit string

// FragmentPositional is the fragment template for positional lights.
//
//go:embed positional.frag
var FragmentPositional string
