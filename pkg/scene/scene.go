// Package scene defines the in-memory scene model consumed by the
// post-processing pipeline: meshes carrying indexed texture coordinate
// channels, materials with texture slots, and the per-channel transforms
// the pipeline materializes. Scenes round-trip through a YAML document
// format.
package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxUVChannels is the number of texture coordinate channels a mesh can
// carry. Channel indices are 0-based and must stay below this bound.
const MaxUVChannels = 8

// UV is a single 2D texture coordinate.
type UV = mgl32.Vec2

// Scene is a loaded scene document: meshes plus the material set they
// reference.
type Scene struct {
	Name      string      `yaml:"name"`
	Meshes    []*Mesh     `yaml:"meshes"`
	Materials []*Material `yaml:"materials"`
}

// Mesh holds per-vertex data and the texture coordinate channel set.
// A channel is populated iff it has a non-empty coordinate list.
type Mesh struct {
	Name          string       `yaml:"name"`
	MaterialIndex int          `yaml:"material"`
	Vertices      []mgl32.Vec3 `yaml:"vertices,omitempty,flow"`

	// UV maps a channel index to that channel's coordinate list.
	UV map[int][]UV `yaml:"uv,omitempty,flow"`

	// ChannelTransforms records, per destination channel, the source
	// channel and affine matrix its coordinates are derived from.
	ChannelTransforms map[int]ChannelTransform `yaml:"channel_transforms,omitempty"`
}

// UVChannelPopulated returns true if the channel holds coordinate data.
func (m *Mesh) UVChannelPopulated(ch int) bool {
	return len(m.UV[ch]) > 0
}

// PopulatedUVChannels returns the populated channel indices in ascending
// order.
func (m *Mesh) PopulatedUVChannels() []int {
	var channels []int
	for ch, coords := range m.UV {
		if len(coords) > 0 {
			channels = append(channels, ch)
		}
	}
	sort.Ints(channels)
	return channels
}

// HighestPopulatedUVChannel returns the highest populated channel index,
// or -1 if the mesh has no coordinate data at all.
func (m *Mesh) HighestPopulatedUVChannel() int {
	highest := -1
	for ch, coords := range m.UV {
		if len(coords) > 0 && ch > highest {
			highest = ch
		}
	}
	return highest
}

// MeshesForMaterial returns all meshes referencing the given material
// index, in scene order.
func (s *Scene) MeshesForMaterial(index int) []*Mesh {
	var meshes []*Mesh
	for _, m := range s.Meshes {
		if m.MaterialIndex == index {
			meshes = append(meshes, m)
		}
	}
	return meshes
}

// TotalSlotCount returns the number of texture slots across all materials.
func (s *Scene) TotalSlotCount() int {
	total := 0
	for _, mat := range s.Materials {
		total += len(mat.Slots)
	}
	return total
}
