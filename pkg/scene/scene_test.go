package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// createTestScene builds a small scene with two meshes sharing one
// material plus a second material, for exercising the lookup helpers.
func createTestScene() *Scene {
	return &Scene{
		Name: "test",
		Meshes: []*Mesh{
			{
				Name:          "floor",
				MaterialIndex: 0,
				UV: map[int][]UV{
					0: {{0, 0}, {1, 0}, {1, 1}},
				},
			},
			{
				Name:          "wall",
				MaterialIndex: 0,
				UV: map[int][]UV{
					0: {{0, 0}, {0, 1}},
					2: {{0.5, 0.5}, {0.25, 0.25}},
				},
			},
			{
				Name:          "prop",
				MaterialIndex: 1,
			},
		},
		Materials: []*Material{
			{
				Name: "stone",
				Slots: []*TextureSlot{
					{Semantic: SemanticDiffuse, Index: 0, Texture: "stone_d.png", Transform: IdentityTransform()},
					{Semantic: SemanticSpecular, Index: 0, Texture: "stone_s.png", Transform: IdentityTransform()},
				},
			},
			{
				Name: "wood",
				Slots: []*TextureSlot{
					{Semantic: SemanticDiffuse, Index: 0, Texture: "wood_d.png", Transform: IdentityTransform()},
				},
			},
		},
	}
}

func TestMesh_UVChannelPopulated(t *testing.T) {
	sc := createTestScene()

	if !sc.Meshes[0].UVChannelPopulated(0) {
		t.Error("channel 0 should be populated")
	}
	if sc.Meshes[0].UVChannelPopulated(1) {
		t.Error("channel 1 should not be populated")
	}

	// Nil UV map must behave like an empty channel set.
	empty := &Mesh{}
	if empty.UVChannelPopulated(0) {
		t.Error("mesh without UV data should report no populated channels")
	}
}

func TestMesh_PopulatedUVChannels(t *testing.T) {
	sc := createTestScene()

	channels := sc.Meshes[1].PopulatedUVChannels()
	if len(channels) != 2 {
		t.Fatalf("expected 2 populated channels, got %d", len(channels))
	}
	if channels[0] != 0 || channels[1] != 2 {
		t.Errorf("expected channels [0 2], got %v", channels)
	}

	if got := (&Mesh{}).PopulatedUVChannels(); len(got) != 0 {
		t.Errorf("expected no channels for empty mesh, got %v", got)
	}
}

func TestMesh_PopulatedUVChannels_SkipsEmptySlices(t *testing.T) {
	m := &Mesh{UV: map[int][]UV{
		0: {{0, 0}},
		3: {},
	}}

	channels := m.PopulatedUVChannels()
	if len(channels) != 1 || channels[0] != 0 {
		t.Errorf("expected channels [0], got %v", channels)
	}
}

func TestMesh_HighestPopulatedUVChannel(t *testing.T) {
	tests := []struct {
		name     string
		uv       map[int][]UV
		expected int
	}{
		{"no channels", nil, -1},
		{"single channel", map[int][]UV{0: {{0, 0}}}, 0},
		{"sparse channels", map[int][]UV{0: {{0, 0}}, 4: {{1, 1}}}, 4},
		{"empty slice ignored", map[int][]UV{0: {{0, 0}}, 5: {}}, 0},
	}

	for _, tc := range tests {
		m := &Mesh{UV: tc.uv}
		if got := m.HighestPopulatedUVChannel(); got != tc.expected {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestScene_MeshesForMaterial(t *testing.T) {
	sc := createTestScene()

	meshes := sc.MeshesForMaterial(0)
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes for material 0, got %d", len(meshes))
	}
	if meshes[0].Name != "floor" || meshes[1].Name != "wall" {
		t.Errorf("expected scene order [floor wall], got [%s %s]", meshes[0].Name, meshes[1].Name)
	}

	if got := sc.MeshesForMaterial(1); len(got) != 1 {
		t.Errorf("expected 1 mesh for material 1, got %d", len(got))
	}
	if got := sc.MeshesForMaterial(7); len(got) != 0 {
		t.Errorf("expected no meshes for unused index, got %d", len(got))
	}
}

func TestScene_TotalSlotCount(t *testing.T) {
	sc := createTestScene()
	if got := sc.TotalSlotCount(); got != 3 {
		t.Errorf("expected 3 slots, got %d", got)
	}
}

func TestUVAlias(t *testing.T) {
	// UV must stay assignable to mgl32.Vec2 for the math layer.
	var uv UV = mgl32.Vec2{0.25, 0.75}
	if uv.X() != 0.25 || uv.Y() != 0.75 {
		t.Errorf("unexpected components: (%f, %f)", uv.X(), uv.Y())
	}
}
