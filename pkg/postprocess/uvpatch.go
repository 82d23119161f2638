package postprocess

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

// patchMaterials rewrites every cluster's referenced slots to the
// cluster's destination channel and stores the composed matrix once per
// destination channel on each mesh carrying the source data. Slots
// pointed at an assigned channel get their stored transform reset to
// identity: the transform now lives in the channel matrix, which is
// what makes a second pass over the scene a no-op.
//
// A cluster that reaches this phase unresolved signals an allocator
// defect; the scene's pass is aborted rather than patching slots to an
// arbitrary channel that could alias real coordinate data.
func patchMaterials(sc *scene.Scene, ws []*materialTransforms, log *zap.Logger) (patched, channels int, err error) {
	for _, mt := range ws {
		for _, c := range mt.descriptors {
			if c.dest.kind == destUnresolved {
				return 0, 0, fmt.Errorf("material %d source channel %d: %w",
					mt.materialIndex, c.sourceChannel, ErrUnresolvedCluster)
			}
		}
	}

	for _, mt := range ws {
		for _, c := range mt.descriptors {
			dest := c.sourceChannel
			if c.dest.kind == destAssigned {
				dest = c.dest.channel
			}

			for _, ref := range c.shortcuts {
				slot := ref.resolve(sc)
				if slot == nil {
					log.Warn("collected slot no longer exists, skipping",
						zap.Int("material", ref.materialIndex),
						zap.String("semantic", ref.semantic.String()),
						zap.Int("slot", ref.slotIndex))
					continue
				}
				slot.UVChannel = dest
				if c.dest.kind == destAssigned {
					slot.Transform = scene.IdentityTransform()
					patched++
				}
			}

			if c.dest.kind != destAssigned {
				continue
			}
			channels++
			for _, m := range mt.meshes {
				if !m.UVChannelPopulated(c.sourceChannel) {
					continue
				}
				if m.ChannelTransforms == nil {
					m.ChannelTransforms = make(map[int]scene.ChannelTransform)
				}
				m.ChannelTransforms[dest] = scene.ChannelTransform{
					SourceChannel: c.sourceChannel,
					Matrix:        c.matrix,
				}
			}
		}
	}
	return patched, channels, nil
}
