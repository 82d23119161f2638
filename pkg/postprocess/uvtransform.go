package postprocess

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/logger"
	"github.com/Faultbox/scenepipe/pkg/scene"
)

const twoPi = 2 * math.Pi

// EvalFlags selects which transform components the UV transform step
// evaluates. A disabled component is replaced with its default during
// collection.
type EvalFlags uint32

const (
	EvalScaling EvalFlags = 1 << iota
	EvalRotation
	EvalTranslation

	// EvalAll evaluates every transform component.
	EvalAll = EvalScaling | EvalRotation | EvalTranslation
)

// Options configures the UV transform step.
type Options struct {
	Eval EvalFlags
}

// DefaultOptions returns the step defaults: all components evaluated.
func DefaultOptions() Options {
	return Options{Eval: EvalAll}
}

// UVTransformStep collapses equivalent per-slot UV transforms across a
// scene's material set. Slots on the same material sampling the same
// source channel through transforms equal within tolerance end up
// sharing one destination channel with a single composed matrix, while
// identity transforms keep their source channel untouched. Slot channel
// references are rewritten through shortcuts recorded at collection
// time, so the material set is never re-scanned once a cluster's
// destination is known.
type UVTransformStep struct {
	opts Options
}

// NewUVTransformStep creates the step with the given options.
func NewUVTransformStep(opts Options) *UVTransformStep {
	return &UVTransformStep{opts: opts}
}

// Name returns the step name.
func (s *UVTransformStep) Name() string { return "uvtransform" }

// IsActive reports whether the step runs under the given flag set.
func (s *UVTransformStep) IsActive(flags ProcessFlags) bool {
	return flags.Has(FlagTransformUVCoords)
}

// Configure replaces the step options.
func (s *UVTransformStep) Configure(opts Options) {
	s.opts = opts
}

// Execute runs the five phases in order: collect slot transforms, merge
// equivalent descriptors, resolve destination channels, compose
// matrices, patch the material set. The phases are strictly sequential
// and the scene is only mutated in the final phase, so a failure during
// allocation leaves the scene untouched. Running Execute on an already
// processed scene is a no-op: every remaining slot transform is either
// identity or already collapsed to a stable destination channel.
func (s *UVTransformStep) Execute(sc *scene.Scene) error {
	log := logger.Named(s.Name())

	ws := s.collectTransforms(sc, log)
	if len(ws) == 0 {
		log.Debug("no texture slots to process", zap.String("scene", sc.Name))
		return nil
	}

	collected, clusters := 0, 0
	for _, mt := range ws {
		collected += len(mt.descriptors)
		mt.descriptors = mergeEquivalent(mt.descriptors)
		clusters += len(mt.descriptors)
	}

	if err := resolveDestinations(ws, newChannelAllocator(), log); err != nil {
		return err
	}

	buildMatrices(ws)

	patched, channels, err := patchMaterials(sc, ws, log)
	if err != nil {
		return err
	}

	log.Info("UV transforms collapsed",
		zap.String("scene", sc.Name),
		zap.Int("slots", collected),
		zap.Int("clusters", clusters),
		zap.Int("channels_assigned", channels),
		zap.Int("slots_patched", patched))
	return nil
}

// collectTransforms builds the per-material working set: one descriptor
// per texture slot, carrying the slot's transform after masking and
// normalization plus a shortcut back to the slot. Identity slots are
// collected too; their clusters later reuse the source channel.
func (s *UVTransformStep) collectTransforms(sc *scene.Scene, log *zap.Logger) []*materialTransforms {
	var ws []*materialTransforms
	for i, mat := range sc.Materials {
		mt := &materialTransforms{
			materialIndex: i,
			meshes:        sc.MeshesForMaterial(i),
		}

		for _, slot := range mat.Slots {
			tr := sanitizeTransform(slot.Transform, log)
			if s.opts.Eval&EvalScaling == 0 {
				tr.Scale = mgl32.Vec2{1, 1}
			}
			if s.opts.Eval&EvalRotation == 0 {
				tr.Rotation = 0
			}
			if s.opts.Eval&EvalTranslation == 0 {
				tr.Translation = mgl32.Vec2{0, 0}
			}
			tr.Rotation = normalizeRotation(tr.Rotation, log)
			tr.Translation = mgl32.Vec2{
				simplifyOffset(tr.Translation.X(), slot.WrapU, "u", log),
				simplifyOffset(tr.Translation.Y(), slot.WrapV, "v", log),
			}

			mt.descriptors = append(mt.descriptors, &transformDescriptor{
				sourceChannel: slot.UVChannel,
				transform:     tr,
				wrapU:         slot.WrapU,
				wrapV:         slot.WrapV,
				shortcuts: []shortcutRef{{
					materialIndex: i,
					semantic:      slot.Semantic,
					slotIndex:     slot.Index,
					slot:          slot,
				}},
			})
		}

		if len(mt.descriptors) > 0 {
			ws = append(ws, mt)
		}
	}
	return ws
}

// sanitizeTransform replaces non-finite transform components with their
// defaults. A malformed slot degrades to the identity transform instead
// of poisoning the whole scene.
func sanitizeTransform(t scene.UVTransform, log *zap.Logger) scene.UVTransform {
	if !finite(t.Scale.X()) || !finite(t.Scale.Y()) {
		log.Warn("non-finite scale treated as identity", zap.Any("scale", t.Scale))
		t.Scale = mgl32.Vec2{1, 1}
	}
	if !finite(t.Rotation) {
		log.Warn("non-finite rotation treated as identity", zap.Float32("rotation", t.Rotation))
		t.Rotation = 0
	}
	if !finite(t.Translation.X()) || !finite(t.Translation.Y()) {
		log.Warn("non-finite translation treated as identity", zap.Any("translation", t.Translation))
		t.Translation = mgl32.Vec2{0, 0}
	}
	return t
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// normalizeRotation drops whole turns from an out-of-range rotation,
// folding it into (-2pi, 2pi). The sign is kept so a small negative
// rotation stays within the identity tolerance instead of jumping to
// the far end of the range.
func normalizeRotation(r float32, log *zap.Logger) float32 {
	if mgl32.Abs(r) < twoPi {
		return r
	}
	out := float32(math.Mod(float64(r), twoPi))
	log.Debug("rotation reduced by whole turns",
		zap.Float32("from", r),
		zap.Float32("to", out))
	return out
}

// simplifyOffset reduces a translation offset of one repeat or more to
// an equivalent smaller offset for the slot's wrap mode: repeating
// coordinates drop whole repeats, mirrored coordinates drop whole
// mirror periods (two repeats), and clamped modes saturate at one
// repeat. Offsets below one repeat pass through unchanged.
func simplifyOffset(t float32, wrap scene.WrapMode, axis string, log *zap.Logger) float32 {
	if mgl32.Abs(t) < 1 {
		return t
	}

	out := t
	switch wrap {
	case scene.WrapRepeat:
		out = t - float32(math.Trunc(float64(t)))
	case scene.WrapMirror:
		k := math.Trunc(float64(t))
		k -= math.Mod(k, 2)
		out = t - float32(k)
	default: // clamp and decal saturate at the edge
		if t > 0 {
			out = 1
		} else {
			out = -1
		}
	}

	if out != t {
		log.Debug("translation offset simplified",
			zap.String("axis", axis),
			zap.String("wrap", wrap.String()),
			zap.Float32("from", t),
			zap.Float32("to", out))
	}
	return out
}
