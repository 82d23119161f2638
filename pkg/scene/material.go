package scene

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Material enum errors.
var (
	ErrUnknownSemantic = errors.New("unknown texture semantic")
	ErrUnknownWrapMode = errors.New("unknown wrap mode")
)

// TextureSemantic identifies what a texture slot contributes to the
// material.
type TextureSemantic int

const (
	SemanticDiffuse TextureSemantic = iota
	SemanticSpecular
	SemanticAmbient
	SemanticEmissive
	SemanticNormals
	SemanticHeight
	SemanticShininess
	SemanticOpacity
	SemanticLightmap
	SemanticUnknown
)

// String returns the semantic name used in scene documents.
func (s TextureSemantic) String() string {
	switch s {
	case SemanticDiffuse:
		return "diffuse"
	case SemanticSpecular:
		return "specular"
	case SemanticAmbient:
		return "ambient"
	case SemanticEmissive:
		return "emissive"
	case SemanticNormals:
		return "normals"
	case SemanticHeight:
		return "height"
	case SemanticShininess:
		return "shininess"
	case SemanticOpacity:
		return "opacity"
	case SemanticLightmap:
		return "lightmap"
	default:
		return "unknown"
	}
}

// ParseTextureSemantic parses a semantic name from a scene document.
func ParseTextureSemantic(s string) (TextureSemantic, error) {
	for sem := SemanticDiffuse; sem <= SemanticUnknown; sem++ {
		if sem.String() == s {
			return sem, nil
		}
	}
	return SemanticUnknown, fmt.Errorf("%w: %q", ErrUnknownSemantic, s)
}

// MarshalYAML writes the semantic as its name.
func (s TextureSemantic) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads the semantic from its name.
func (s *TextureSemantic) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	sem, err := ParseTextureSemantic(name)
	if err != nil {
		return err
	}
	*s = sem
	return nil
}

// WrapMode is the sampling behavior at texture edges. It is a per-slot
// sampling property, independent of the coordinate transform.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
	WrapDecal
)

// String returns the wrap mode name used in scene documents.
func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClamp:
		return "clamp"
	case WrapMirror:
		return "mirror"
	case WrapDecal:
		return "decal"
	default:
		return fmt.Sprintf("wrapmode(%d)", int(w))
	}
}

// ParseWrapMode parses a wrap mode name from a scene document.
func ParseWrapMode(s string) (WrapMode, error) {
	for w := WrapRepeat; w <= WrapDecal; w++ {
		if w.String() == s {
			return w, nil
		}
	}
	return WrapRepeat, fmt.Errorf("%w: %q", ErrUnknownWrapMode, s)
}

// MarshalYAML writes the wrap mode as its name.
func (w WrapMode) MarshalYAML() (interface{}, error) {
	return w.String(), nil
}

// UnmarshalYAML reads the wrap mode from its name.
func (w *WrapMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	mode, err := ParseWrapMode(name)
	if err != nil {
		return err
	}
	*w = mode
	return nil
}

// Material is a named set of texture slots.
type Material struct {
	Name  string         `yaml:"name"`
	Slots []*TextureSlot `yaml:"slots,omitempty"`
}

// TextureSlot binds a texture to a material under one semantic, together
// with the coordinate channel it samples and the transform applied to
// that channel.
type TextureSlot struct {
	Semantic  TextureSemantic `yaml:"semantic"`
	Index     int             `yaml:"index"`
	Texture   string          `yaml:"texture,omitempty"`
	UVChannel int             `yaml:"uv_channel"`
	Transform UVTransform     `yaml:"transform"`
	WrapU     WrapMode        `yaml:"wrap_u"`
	WrapV     WrapMode        `yaml:"wrap_v"`
}

// UnmarshalYAML fills absent slot fields with their defaults: identity
// transform, repeat wrapping, channel 0.
func (ts *TextureSlot) UnmarshalYAML(value *yaml.Node) error {
	type plain TextureSlot
	out := plain{Transform: IdentityTransform()}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*ts = TextureSlot(out)
	return nil
}

// Slot returns the slot with the given semantic and index, or nil if the
// material has none.
func (m *Material) Slot(semantic TextureSemantic, index int) *TextureSlot {
	for _, s := range m.Slots {
		if s.Semantic == semantic && s.Index == index {
			return s
		}
	}
	return nil
}
