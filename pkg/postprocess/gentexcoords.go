package postprocess

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/logger"
	"github.com/Faultbox/scenepipe/pkg/scene"
)

// GenTexCoordsStep materializes coordinate data for destination
// channels recorded on meshes. A channel minted by the UV transform
// step has a transform but no coordinates of its own yet; this step
// fills it by running every source channel coordinate through the
// stored matrix. Channels that already hold data are left alone, so
// re-running the step is a no-op.
type GenTexCoordsStep struct{}

// NewGenTexCoordsStep creates the step.
func NewGenTexCoordsStep() *GenTexCoordsStep {
	return &GenTexCoordsStep{}
}

// Name returns the step name.
func (s *GenTexCoordsStep) Name() string { return "gentexcoords" }

// IsActive reports whether the step runs under the given flag set.
func (s *GenTexCoordsStep) IsActive(flags ProcessFlags) bool {
	return flags.Has(FlagGenUVData)
}

// Execute fills every unpopulated destination channel on every mesh.
func (s *GenTexCoordsStep) Execute(sc *scene.Scene) error {
	log := logger.Named(s.Name())

	for _, mesh := range sc.Meshes {
		if len(mesh.ChannelTransforms) == 0 {
			continue
		}

		// Destination order is fixed so output is deterministic.
		dests := make([]int, 0, len(mesh.ChannelTransforms))
		for dest := range mesh.ChannelTransforms {
			dests = append(dests, dest)
		}
		sort.Ints(dests)

		generated := 0
		for _, dest := range dests {
			ct := mesh.ChannelTransforms[dest]
			if mesh.UVChannelPopulated(dest) {
				continue
			}
			src := mesh.UV[ct.SourceChannel]
			if len(src) == 0 {
				log.Warn("source channel holds no coordinates",
					zap.String("mesh", mesh.Name),
					zap.Int("source_channel", ct.SourceChannel),
					zap.Int("dest_channel", dest))
				continue
			}

			out := make([]scene.UV, len(src))
			for i, uv := range src {
				v := ct.Matrix.Mul3x1(mgl32.Vec3{uv.X(), uv.Y(), 1})
				out[i] = scene.UV{v.X(), v.Y()}
			}
			mesh.UV[dest] = out
			generated++
		}

		if generated > 0 {
			log.Debug("coordinate channels generated",
				zap.String("mesh", mesh.Name),
				zap.Int("channels", generated))
		}
	}
	return nil
}
