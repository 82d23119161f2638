package postprocess

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

// Merge tolerances. Two transforms count as equal when every component
// differs by strictly less than MergeTolerance: scale and translation in
// coordinate units, rotation in radians. A transform with default scale
// and translation counts as identity when its rotation magnitude stays
// below RotationIdentityTolerance.
const (
	MergeTolerance            = 0.05
	RotationIdentityTolerance = 0.05
)

// withinTolerance reports whether a and b differ by strictly less than
// tol in every component. The comparison is absolute in each component,
// never relative to the compared magnitudes.
func withinTolerance(a, b scene.UVTransform, tol float32) bool {
	return mgl32.Abs(a.Scale.X()-b.Scale.X()) < tol &&
		mgl32.Abs(a.Scale.Y()-b.Scale.Y()) < tol &&
		mgl32.Abs(a.Translation.X()-b.Translation.X()) < tol &&
		mgl32.Abs(a.Translation.Y()-b.Translation.Y()) < tol &&
		mgl32.Abs(a.Rotation-b.Rotation) < tol
}

// destKind enumerates the resolution states of a cluster's destination.
type destKind int

const (
	destUnresolved destKind = iota
	destReuseSource
	destAssigned
)

// destState is a cluster's destination: still unresolved, reusing the
// source channel as-is, or assigned a fresh channel index.
type destState struct {
	kind    destKind
	channel int // valid only when kind == destAssigned
}

func reuseSource() destState {
	return destState{kind: destReuseSource}
}

func assigned(channel int) destState {
	return destState{kind: destAssigned, channel: channel}
}

// shortcutRef is a backlink from a cluster to one texture slot whose
// channel reference must be patched. The (material, semantic, index)
// key stays valid if the material collection is reallocated; slot is an
// optional direct handle for O(1) rewrite.
type shortcutRef struct {
	materialIndex int
	semantic      scene.TextureSemantic
	slotIndex     int
	slot          *scene.TextureSlot
}

// resolve returns the slot the shortcut points at, preferring the direct
// handle and falling back to the stable key. Returns nil if the slot no
// longer exists.
func (r shortcutRef) resolve(sc *scene.Scene) *scene.TextureSlot {
	if r.slot != nil {
		return r.slot
	}
	if r.materialIndex < 0 || r.materialIndex >= len(sc.Materials) {
		return nil
	}
	return sc.Materials[r.materialIndex].Slot(r.semantic, r.slotIndex)
}

// transformDescriptor is one collected slot transform. After merging,
// the surviving descriptors act as cluster representatives and carry
// the shortcuts of every slot folded into them.
type transformDescriptor struct {
	sourceChannel int
	transform     scene.UVTransform
	wrapU, wrapV  scene.WrapMode // carried for diagnostics, never compared
	dest          destState
	matrix        mgl32.Mat3 // composed for assigned clusters
	shortcuts     []shortcutRef
}

// materialTransforms is the working set for one material: the meshes
// referencing it and its descriptors, reduced to cluster
// representatives once merged.
type materialTransforms struct {
	materialIndex int
	meshes        []*scene.Mesh
	descriptors   []*transformDescriptor
}

// mergeEquivalent reduces a material's descriptors to cluster
// representatives. A descriptor within MergeTolerance of an earlier one
// with the same source channel folds its shortcuts into that cluster;
// otherwise it becomes a new representative. The first descriptor seen
// stays the representative, and input order is preserved so the output
// is deterministic.
func mergeEquivalent(descriptors []*transformDescriptor) []*transformDescriptor {
	var clusters []*transformDescriptor
	for _, d := range descriptors {
		merged := false
		for _, rep := range clusters {
			if rep.sourceChannel != d.sourceChannel {
				continue
			}
			if withinTolerance(rep.transform, d.transform, MergeTolerance) {
				rep.shortcuts = append(rep.shortcuts, d.shortcuts...)
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, d)
		}
	}
	return clusters
}
