package postprocess

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/scenepipe/internal/logger"
	"github.com/Faultbox/scenepipe/pkg/scene"
)

// Pipeline runs an ordered list of processing steps over a scene.
type Pipeline struct {
	steps []Step
}

// NewPipeline builds a pipeline from the given steps, executed in order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// DefaultPipeline wires the standard step order: validation, UV
// transform collapsing, coordinate generation.
func DefaultPipeline(opts Options) *Pipeline {
	return NewPipeline(
		NewValidateStep(),
		NewUVTransformStep(opts),
		NewGenTexCoordsStep(),
	)
}

// Steps returns the configured steps in execution order.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Run executes every active step on the scene, strictly in order. A
// recoverable step failure is logged and the remaining steps still run;
// any other failure aborts the scene's pass. The first recoverable
// error, if any, is returned once the pass completes.
func (p *Pipeline) Run(sc *scene.Scene, flags ProcessFlags) error {
	log := logger.Named("pipeline")

	var firstErr error
	for _, step := range p.steps {
		if !step.IsActive(flags) {
			log.Debug("step inactive",
				zap.String("scene", sc.Name),
				zap.String("step", step.Name()))
			continue
		}

		start := time.Now()
		err := step.Execute(sc)
		if err != nil {
			if !recoverable(err) {
				return fmt.Errorf("%s: %w", step.Name(), err)
			}
			log.Warn("step failed, continuing with remaining steps",
				zap.String("scene", sc.Name),
				zap.String("step", step.Name()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", step.Name(), err)
			}
			continue
		}

		log.Debug("step finished",
			zap.String("scene", sc.Name),
			zap.String("step", step.Name()),
			zap.Duration("took", time.Since(start)))
	}
	return firstErr
}

// RunBatch processes independent scenes concurrently, at most workers
// at a time (workers <= 0 runs all scenes at once). Every scene still
// receives its own sequential single-threaded pass; scenes share no
// state, so no locking is involved. All scenes are processed even when
// some fail; the first failure is returned.
func (p *Pipeline) RunBatch(scenes []*scene.Scene, flags ProcessFlags, workers int) error {
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, sc := range scenes {
		g.Go(func() error {
			if err := p.Run(sc, flags); err != nil {
				return fmt.Errorf("scene %q: %w", sc.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// recoverable reports whether a step error leaves the scene consistent
// enough for the remaining steps to run.
func recoverable(err error) bool {
	return errors.Is(err, ErrChannelSpaceExhausted)
}
