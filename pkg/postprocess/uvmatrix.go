package postprocess

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

// composeMatrix builds the affine matrix for a transform as the product
// scale * rotation * translation, assembled by right-multiplication
// starting from identity. Components at their default are skipped, so
// an all-default transform yields the exact identity matrix. The order
// is fixed: reordering changes results whenever scale or rotation
// combine with a non-zero translation.
func composeMatrix(t scene.UVTransform) mgl32.Mat3 {
	m := mgl32.Ident3()
	if t.Scale != (mgl32.Vec2{1, 1}) {
		m = mgl32.Scale2D(t.Scale.X(), t.Scale.Y())
	}
	if t.Rotation != 0 {
		m = m.Mul3(mgl32.HomogRotate2D(t.Rotation))
	}
	if t.Translation != (mgl32.Vec2{0, 0}) {
		m = m.Mul3(mgl32.Translate2D(t.Translation.X(), t.Translation.Y()))
	}
	return m
}

// buildMatrices composes the matrix for every cluster that was assigned
// a destination channel. Reused source channels carry no matrix;
// consumers treat its absence as identity.
func buildMatrices(ws []*materialTransforms) {
	for _, mt := range ws {
		for _, c := range mt.descriptors {
			if c.dest.kind == destAssigned {
				c.matrix = composeMatrix(c.transform)
			}
		}
	}
}
