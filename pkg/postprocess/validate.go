package postprocess

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/logger"
	"github.com/Faultbox/scenepipe/pkg/scene"
)

// ValidateStep checks structural scene consistency before the transform
// steps run: mesh material references must resolve, channel indices
// must stay inside the channel space, recorded channel transforms must
// derive from populated channels, and populated channels must match the
// mesh's vertex count when vertex data is present.
type ValidateStep struct{}

// NewValidateStep creates the step.
func NewValidateStep() *ValidateStep {
	return &ValidateStep{}
}

// Name returns the step name.
func (s *ValidateStep) Name() string { return "validate" }

// IsActive reports whether the step runs under the given flag set.
func (s *ValidateStep) IsActive(flags ProcessFlags) bool {
	return flags.Has(FlagValidateScene)
}

// Execute collects every finding instead of stopping at the first, logs
// them, and fails the scene's pass when any exist.
func (s *ValidateStep) Execute(sc *scene.Scene) error {
	log := logger.Named(s.Name())

	var issues []string
	for i, mesh := range sc.Meshes {
		issues = append(issues, validateMesh(i, mesh, len(sc.Materials))...)
	}
	for i, mat := range sc.Materials {
		for _, slot := range mat.Slots {
			if slot.UVChannel < 0 || slot.UVChannel >= scene.MaxUVChannels {
				issues = append(issues, fmt.Sprintf(
					"material %d (%s): %s slot %d references channel %d outside the channel space",
					i, mat.Name, slot.Semantic, slot.Index, slot.UVChannel))
			}
		}
	}

	if len(issues) == 0 {
		log.Debug("scene is structurally consistent",
			zap.String("scene", sc.Name),
			zap.Int("meshes", len(sc.Meshes)),
			zap.Int("materials", len(sc.Materials)))
		return nil
	}

	for _, issue := range issues {
		log.Warn("validation issue", zap.String("scene", sc.Name), zap.String("issue", issue))
	}
	return fmt.Errorf("%w: %d issues", ErrSceneInvalid, len(issues))
}

// validateMesh returns the findings for one mesh.
func validateMesh(index int, mesh *scene.Mesh, materialCount int) []string {
	var issues []string

	if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= materialCount {
		issues = append(issues, fmt.Sprintf(
			"mesh %d (%s): material index %d out of range", index, mesh.Name, mesh.MaterialIndex))
	}

	channels := make([]int, 0, len(mesh.UV))
	for ch := range mesh.UV {
		channels = append(channels, ch)
	}
	sort.Ints(channels)
	for _, ch := range channels {
		if ch < 0 || ch >= scene.MaxUVChannels {
			issues = append(issues, fmt.Sprintf(
				"mesh %d (%s): channel %d outside the channel space", index, mesh.Name, ch))
			continue
		}
		if len(mesh.Vertices) > 0 && len(mesh.UV[ch]) > 0 && len(mesh.UV[ch]) != len(mesh.Vertices) {
			issues = append(issues, fmt.Sprintf(
				"mesh %d (%s): channel %d holds %d coordinates for %d vertices",
				index, mesh.Name, ch, len(mesh.UV[ch]), len(mesh.Vertices)))
		}
	}

	dests := make([]int, 0, len(mesh.ChannelTransforms))
	for dest := range mesh.ChannelTransforms {
		dests = append(dests, dest)
	}
	sort.Ints(dests)
	for _, dest := range dests {
		ct := mesh.ChannelTransforms[dest]
		if dest < 0 || dest >= scene.MaxUVChannels {
			issues = append(issues, fmt.Sprintf(
				"mesh %d (%s): channel transform destination %d outside the channel space",
				index, mesh.Name, dest))
			continue
		}
		if ct.SourceChannel < 0 || ct.SourceChannel >= scene.MaxUVChannels {
			issues = append(issues, fmt.Sprintf(
				"mesh %d (%s): channel %d derives from channel %d outside the channel space",
				index, mesh.Name, dest, ct.SourceChannel))
			continue
		}
		if !mesh.UVChannelPopulated(ct.SourceChannel) {
			issues = append(issues, fmt.Sprintf(
				"mesh %d (%s): channel %d derives from unpopulated channel %d",
				index, mesh.Name, dest, ct.SourceChannel))
		}
	}

	return issues
}
