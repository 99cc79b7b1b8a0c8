package render

import (
	"fmt"

	"github.com/pthm-cable/sparkles/vecmath"
)

// Mesh presets selectable by emitters.
const (
	MeshSquare = iota
	MeshCircle
	NumMeshPresets
)

// Texture presets selectable by emitters. TextureBlank draws untextured
// with alpha blending; the light masks blend additively.
const (
	TextureBlank = iota
	TextureBlurryLight
	TextureSharpLight
	TextureSharpestLight
	NumTexturePresets
)

var MeshPresetNames = [NumMeshPresets]string{"Square", "Circle"}

var TexturePresetNames = [NumTexturePresets]string{"Blank", "Blurry light", "Sharp light", "Sharpest light"}

const circleSides = 20

// Light mask parameters of the texture presets.
const (
	LightMaskSize = 64
	LightCutoff   = 0.01
)

var LightSharpness = [NumTexturePresets]float32{0, 1, 5, 10}

// Presets holds the loaded preset resources.
type Presets struct {
	Meshes   [NumMeshPresets]Mesh
	Textures [NumTexturePresets]Texture
	// Blit is a unit quad for drawing render targets to the screen.
	Blit Mesh
}

// LoadPresets creates every preset mesh and texture on b.
func LoadPresets(b Backend) (*Presets, error) {
	p := &Presets{}
	var err error

	v, i := Quad(vecmath.Vec2{-0.5, -0.5}, vecmath.Vec2{0.5, 0.5})
	if p.Meshes[MeshSquare], err = b.CreateMesh(len(v), len(i), v, i); err != nil {
		return nil, fmt.Errorf("square mesh: %w", err)
	}
	if p.Blit, err = b.CreateMesh(len(v), len(i), v, i); err != nil {
		return nil, fmt.Errorf("blit mesh: %w", err)
	}
	v, i = RegularPolygon(circleSides, 0.5)
	if p.Meshes[MeshCircle], err = b.CreateMesh(len(v), len(i), v, i); err != nil {
		return nil, fmt.Errorf("circle mesh: %w", err)
	}

	for t := TextureBlurryLight; t < NumTexturePresets; t++ {
		px := LightMask(LightMaskSize, LightMaskSize, LightCutoff, LightSharpness[t])
		if p.Textures[t], err = b.CreateTexture(FormatRGBA8, LightMaskSize, LightMaskSize, px); err != nil {
			return nil, fmt.Errorf("%s texture: %w", TexturePresetNames[t], err)
		}
	}
	return p, nil
}

// Mesh returns the preset mesh at index, falling back to the square.
func (p *Presets) Mesh(index int) Mesh {
	if index < 0 || index >= NumMeshPresets {
		index = MeshSquare
	}
	return p.Meshes[index]
}

// Texture returns the preset texture at index; blank and out-of-range
// indices return nil.
func (p *Presets) Texture(index int) Texture {
	if index <= TextureBlank || index >= NumTexturePresets {
		return nil
	}
	return p.Textures[index]
}

// BlendFor returns the blend mode for a texture preset.
func BlendFor(textureIndex int, additive bool) BlendMode {
	if additive && textureIndex > TextureBlank && textureIndex < NumTexturePresets {
		return BlendAdditive
	}
	return BlendAlpha
}
