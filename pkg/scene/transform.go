package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// UVTransform is the scale/rotate/translate transform a texture slot
// applies to its coordinate channel before sampling.
type UVTransform struct {
	Scale       mgl32.Vec2 `yaml:"scale,flow"`
	Rotation    float32    `yaml:"rotation"`
	Translation mgl32.Vec2 `yaml:"translation,flow"`
}

// IdentityTransform returns the transform that leaves coordinates
// untouched: scale (1,1), rotation 0, translation (0,0).
func IdentityTransform() UVTransform {
	return UVTransform{Scale: mgl32.Vec2{1, 1}}
}

// IsIdentity reports whether the transform leaves coordinates untouched.
// Scale and translation are compared exactly; rotation counts as zero
// when its magnitude is below rotTol radians.
func (t UVTransform) IsIdentity(rotTol float32) bool {
	ident := IdentityTransform()
	return t.Scale == ident.Scale &&
		t.Translation == ident.Translation &&
		mgl32.Abs(t.Rotation) < rotTol
}

// UnmarshalYAML fills absent fields with the identity defaults, so a
// document may spell out only the components it changes.
func (t *UVTransform) UnmarshalYAML(value *yaml.Node) error {
	type plain UVTransform
	out := plain(IdentityTransform())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*t = UVTransform(out)
	return nil
}

// ChannelTransform records how a destination channel's coordinates are
// derived: the source channel they come from and the affine matrix
// applied to each coordinate.
type ChannelTransform struct {
	SourceChannel int        `yaml:"source"`
	Matrix        mgl32.Mat3 `yaml:"matrix,flow"`
}
