package postprocess

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

func TestWithinTolerance(t *testing.T) {
	base := scene.UVTransform{
		Scale:       mgl32.Vec2{2, 2},
		Rotation:    0.5,
		Translation: mgl32.Vec2{0.25, -0.25},
	}

	tests := []struct {
		name string
		a, b scene.UVTransform
		want bool
	}{
		{
			name: "equal transforms",
			a:    base,
			b:    base,
			want: true,
		},
		{
			name: "all components just inside",
			a:    base,
			b: scene.UVTransform{
				Scale:       mgl32.Vec2{2.04, 1.96},
				Rotation:    0.54,
				Translation: mgl32.Vec2{0.29, -0.21},
			},
			want: true,
		},
		{
			name: "scale x beyond tolerance",
			a:    base,
			b: scene.UVTransform{
				Scale:       mgl32.Vec2{2.06, 2},
				Rotation:    0.5,
				Translation: mgl32.Vec2{0.25, -0.25},
			},
			want: false,
		},
		{
			name: "rotation too far",
			a:    base,
			b: scene.UVTransform{
				Scale:       mgl32.Vec2{2, 2},
				Rotation:    0.56,
				Translation: mgl32.Vec2{0.25, -0.25},
			},
			want: false,
		},
		{
			name: "translation y too far",
			a:    base,
			b: scene.UVTransform{
				Scale:       mgl32.Vec2{2, 2},
				Rotation:    0.5,
				Translation: mgl32.Vec2{0.25, -0.31},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinTolerance(tt.a, tt.b, MergeTolerance); got != tt.want {
				t.Errorf("withinTolerance() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The comparison is absolute, not relative to component magnitude.
// Large scales a tenth apart stay distinct while tiny translations a
// thousandth apart collapse, regardless of their relative difference.
func TestWithinToleranceAbsolute(t *testing.T) {
	big := scene.UVTransform{Scale: mgl32.Vec2{2.0, 1}, Translation: mgl32.Vec2{0, 0}}
	bigOff := scene.UVTransform{Scale: mgl32.Vec2{2.1, 1}, Translation: mgl32.Vec2{0, 0}}
	if withinTolerance(big, bigOff, MergeTolerance) {
		t.Error("scales 2.0 and 2.1 differ by more than the tolerance, must not match")
	}

	tiny := scene.UVTransform{Scale: mgl32.Vec2{1, 1}, Translation: mgl32.Vec2{0.001, 0}}
	tinyOff := scene.UVTransform{Scale: mgl32.Vec2{1, 1}, Translation: mgl32.Vec2{0.002, 0}}
	if !withinTolerance(tiny, tinyOff, MergeTolerance) {
		t.Error("translations 0.001 and 0.002 are well within the tolerance, must match")
	}
}

func TestDestState(t *testing.T) {
	var d destState
	if d.kind != destUnresolved {
		t.Errorf("zero destState kind = %v, want destUnresolved", d.kind)
	}

	d = reuseSource()
	if d.kind != destReuseSource {
		t.Errorf("reuseSource() kind = %v, want destReuseSource", d.kind)
	}

	d = assigned(3)
	if d.kind != destAssigned || d.channel != 3 {
		t.Errorf("assigned(3) = %+v, want kind destAssigned channel 3", d)
	}
}

func TestMergeEquivalent(t *testing.T) {
	scaled := scene.UVTransform{Scale: mgl32.Vec2{2, 2}, Translation: mgl32.Vec2{0, 0}}

	t.Run("equal transforms on one channel merge", func(t *testing.T) {
		clusters := mergeEquivalent([]*transformDescriptor{
			{
				sourceChannel: 0,
				transform:     scaled,
				shortcuts:     []shortcutRef{{materialIndex: 0, semantic: scene.SemanticDiffuse}},
			},
			{
				sourceChannel: 0,
				transform:     scaled,
				shortcuts:     []shortcutRef{{materialIndex: 0, semantic: scene.SemanticSpecular}},
			},
		})

		if len(clusters) != 1 {
			t.Fatalf("cluster count = %d, want 1", len(clusters))
		}
		if got := len(clusters[0].shortcuts); got != 2 {
			t.Errorf("merged shortcut count = %d, want 2", got)
		}
	})

	t.Run("different source channels never merge", func(t *testing.T) {
		clusters := mergeEquivalent([]*transformDescriptor{
			{sourceChannel: 0, transform: scaled},
			{sourceChannel: 1, transform: scaled},
		})

		if len(clusters) != 2 {
			t.Fatalf("cluster count = %d, want 2", len(clusters))
		}
	})

	t.Run("transforms outside tolerance never merge", func(t *testing.T) {
		clusters := mergeEquivalent([]*transformDescriptor{
			{sourceChannel: 0, transform: scaled},
			{sourceChannel: 0, transform: scene.UVTransform{Scale: mgl32.Vec2{2.1, 2.1}, Translation: mgl32.Vec2{0, 0}}},
		})

		if len(clusters) != 2 {
			t.Fatalf("cluster count = %d, want 2", len(clusters))
		}
	})

	t.Run("first seen transform represents the cluster", func(t *testing.T) {
		clusters := mergeEquivalent([]*transformDescriptor{
			{sourceChannel: 0, transform: scaled},
			{sourceChannel: 0, transform: scene.UVTransform{Scale: mgl32.Vec2{2.02, 2.02}, Translation: mgl32.Vec2{0, 0}}},
		})

		if len(clusters) != 1 {
			t.Fatalf("cluster count = %d, want 1", len(clusters))
		}
		if clusters[0].transform.Scale != scaled.Scale {
			t.Errorf("representative scale = %v, want %v", clusters[0].transform.Scale, scaled.Scale)
		}
	})

	t.Run("chained near misses stay with the first representative", func(t *testing.T) {
		// 2.00 and 2.04 merge; 2.08 is within tolerance of 2.04 but
		// not of the representative 2.00, so it opens a new cluster.
		clusters := mergeEquivalent([]*transformDescriptor{
			{sourceChannel: 0, transform: scene.UVTransform{Scale: mgl32.Vec2{2.00, 1}, Translation: mgl32.Vec2{0, 0}}},
			{sourceChannel: 0, transform: scene.UVTransform{Scale: mgl32.Vec2{2.04, 1}, Translation: mgl32.Vec2{0, 0}}},
			{sourceChannel: 0, transform: scene.UVTransform{Scale: mgl32.Vec2{2.08, 1}, Translation: mgl32.Vec2{0, 0}}},
		})

		if len(clusters) != 2 {
			t.Fatalf("cluster count = %d, want 2", len(clusters))
		}
	})
}

func TestShortcutRefResolve(t *testing.T) {
	sc := &scene.Scene{
		Materials: []*scene.Material{{
			Name: "mat",
			Slots: []*scene.TextureSlot{
				{Semantic: scene.SemanticDiffuse, Index: 0},
				{Semantic: scene.SemanticDiffuse, Index: 1},
			},
		}},
	}

	t.Run("direct handle wins", func(t *testing.T) {
		slot := sc.Materials[0].Slots[1]
		ref := shortcutRef{materialIndex: 0, semantic: scene.SemanticDiffuse, slotIndex: 1, slot: slot}
		if got := ref.resolve(sc); got != slot {
			t.Errorf("resolve() = %p, want direct handle %p", got, slot)
		}
	})

	t.Run("lookup by key", func(t *testing.T) {
		ref := shortcutRef{materialIndex: 0, semantic: scene.SemanticDiffuse, slotIndex: 1}
		if got := ref.resolve(sc); got != sc.Materials[0].Slots[1] {
			t.Errorf("resolve() returned wrong slot %+v", got)
		}
	})

	t.Run("out of range material", func(t *testing.T) {
		ref := shortcutRef{materialIndex: 5, semantic: scene.SemanticDiffuse}
		if got := ref.resolve(sc); got != nil {
			t.Errorf("resolve() = %+v, want nil", got)
		}
	})

	t.Run("missing slot", func(t *testing.T) {
		ref := shortcutRef{materialIndex: 0, semantic: scene.SemanticLightmap}
		if got := ref.resolve(sc); got != nil {
			t.Errorf("resolve() = %+v, want nil", got)
		}
	})
}
