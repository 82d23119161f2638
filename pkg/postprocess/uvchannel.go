package postprocess

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

// channelAllocator hands out destination channel indices. Every mesh's
// counter starts above its highest occupied channel and advances with
// each assignment, so an index handed out for one cluster can never
// alias coordinate data, an existing derived-channel record, or an
// earlier assignment on any affected mesh.
type channelAllocator struct {
	next map[*scene.Mesh]int
}

func newChannelAllocator() *channelAllocator {
	return &channelAllocator{next: make(map[*scene.Mesh]int)}
}

// floor returns the lowest index safe to assign for a mesh. A channel
// counts as occupied when it holds coordinate data or a derived-channel
// record whose coordinates have not been generated yet.
func (a *channelAllocator) floor(m *scene.Mesh) int {
	if n, ok := a.next[m]; ok {
		return n
	}
	high := m.HighestPopulatedUVChannel()
	for ch := range m.ChannelTransforms {
		if ch > high {
			high = ch
		}
	}
	a.next[m] = high + 1
	return high + 1
}

// allocate reserves the next channel index valid for every given mesh.
// Returns ErrChannelSpaceExhausted when that index would fall outside
// the channel space.
func (a *channelAllocator) allocate(meshes []*scene.Mesh) (int, error) {
	ch := 0
	for _, m := range meshes {
		if n := a.floor(m); n > ch {
			ch = n
		}
	}
	if ch >= scene.MaxUVChannels {
		return 0, ErrChannelSpaceExhausted
	}
	for _, m := range meshes {
		a.next[m] = ch + 1
	}
	return ch, nil
}

// resolveDestinations decides every cluster's destination: identity
// representatives reuse their source channel, everything else receives
// a fresh channel index. No cluster leaves this phase unresolved; a
// cluster that cannot be assigned safely fails the whole phase before
// any scene state has been touched.
func resolveDestinations(ws []*materialTransforms, alloc *channelAllocator, log *zap.Logger) error {
	for _, mt := range ws {
		for _, c := range mt.descriptors {
			if c.transform.IsIdentity(RotationIdentityTolerance) {
				c.dest = reuseSource()
				continue
			}
			if len(mt.meshes) == 0 {
				// No mesh carries coordinate data for this material, so
				// there is no channel space to allocate from. Leave the
				// slot's reference alone.
				c.dest = reuseSource()
				log.Debug("material not referenced by any mesh, transform left in place",
					zap.Int("material", mt.materialIndex),
					zap.Int("source_channel", c.sourceChannel))
				continue
			}

			ch, err := alloc.allocate(mt.meshes)
			if err != nil {
				return fmt.Errorf("material %d source channel %d: %w",
					mt.materialIndex, c.sourceChannel, err)
			}
			c.dest = assigned(ch)
			log.Debug("destination channel assigned",
				zap.Int("material", mt.materialIndex),
				zap.Int("source_channel", c.sourceChannel),
				zap.Int("dest_channel", ch),
				zap.Int("slots", len(c.shortcuts)))
		}
	}
	return nil
}
