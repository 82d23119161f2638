// Package postprocess implements the scene post-processing pipeline:
// an ordered set of steps that validate a scene, collapse equivalent
// per-slot UV transforms into shared coordinate channels, and
// materialize coordinate data for the channels created that way.
package postprocess

import (
	"errors"
	"strings"

	"github.com/Faultbox/scenepipe/pkg/scene"
)

// Pipeline errors.
var (
	ErrUnresolvedCluster     = errors.New("transform cluster left unresolved")
	ErrChannelSpaceExhausted = errors.New("no free UV channel available")
	ErrSceneInvalid          = errors.New("scene failed validation")
)

// ProcessFlags selects which pipeline steps run.
type ProcessFlags uint32

const (
	FlagValidateScene ProcessFlags = 1 << iota
	FlagTransformUVCoords
	FlagGenUVData

	// FlagAll enables every step.
	FlagAll = FlagValidateScene | FlagTransformUVCoords | FlagGenUVData
)

// Has returns true if all bits of flag are set.
func (f ProcessFlags) Has(flag ProcessFlags) bool {
	return f&flag == flag
}

// String returns the enabled flags as a pipe-separated list.
func (f ProcessFlags) String() string {
	var names []string
	if f.Has(FlagValidateScene) {
		names = append(names, "validate")
	}
	if f.Has(FlagTransformUVCoords) {
		names = append(names, "transform_uv")
	}
	if f.Has(FlagGenUVData) {
		names = append(names, "gen_uv_data")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Step is one pass over a scene. Execute mutates the scene in place and
// must leave it unchanged when it fails before its patch phase.
type Step interface {
	Name() string
	IsActive(flags ProcessFlags) bool
	Execute(sc *scene.Scene) error
}
