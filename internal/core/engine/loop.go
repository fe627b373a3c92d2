package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/core/staging"
)

var ErrLoopRunning = errors.New("loop is already running")

// Config controls the two frame cadences.
type Config struct {
	// PhysicsStep is the fixed dt of every physics frame.
	PhysicsStep time.Duration
	// FrameTime throttles render frames. Zero runs frames back to back.
	FrameTime time.Duration
	// MaxFrames stops Run after that many render frames. Zero means no limit.
	MaxFrames int
	// MaxPhysicsSteps caps the physics frames caught up per render frame.
	MaxPhysicsSteps int
}

func DefaultConfig() Config {
	return Config{
		PhysicsStep:     16 * time.Millisecond,
		FrameTime:       16 * time.Millisecond,
		MaxPhysicsSteps: 4,
	}
}

// Loop drives a scene: it drains staged commands, runs physics systems on a
// fixed step and runs render systems once per frame with the measured dt.
type Loop struct {
	scene  *ecs.Scene
	queue  *staging.Queue
	config Config
	logger log.Log

	accumulator  time.Duration
	frames       uint64
	physicsTicks uint64
	dropped      uint64
	running      bool
}

func New(scene *ecs.Scene, config Config, logger log.Log) *Loop {
	defaults := DefaultConfig()
	if config.PhysicsStep <= 0 {
		config.PhysicsStep = defaults.PhysicsStep
	}
	if config.MaxPhysicsSteps <= 0 {
		config.MaxPhysicsSteps = defaults.MaxPhysicsSteps
	}
	if config.FrameTime < 0 {
		config.FrameTime = 0
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Loop{
		scene:  scene,
		queue:  staging.NewQueue(),
		config: config,
		logger: logger.Named("engine"),
	}
}

// Queue returns the staging queue drained at the start of every frame.
func (l *Loop) Queue() *staging.Queue {
	return l.queue
}

func (l *Loop) Scene() *ecs.Scene {
	return l.scene
}

func (l *Loop) Config() Config {
	return l.config
}

// Frames returns the number of completed render frames.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// PhysicsTicks returns the number of completed physics frames.
func (l *Loop) PhysicsTicks() uint64 {
	return l.physicsTicks
}

// DroppedTicks returns the physics frames skipped because a render frame
// fell more than MaxPhysicsSteps behind.
func (l *Loop) DroppedTicks() uint64 {
	return l.dropped
}

// Step advances the scene by one render frame of length dt.
//
// Staged commands are applied first; a failing command is logged and does
// not stop the frame. Physics systems then run once per whole PhysicsStep
// accumulated, at most MaxPhysicsSteps times, and render systems run once.
func (l *Loop) Step(dt time.Duration) error {
	if applied, err := l.queue.Drain(l.scene); err != nil {
		l.logger.Warn("Staged commands failed",
			log.Int("applied", applied),
			log.Error(err),
		)
	}

	l.accumulator += dt
	step := l.config.PhysicsStep
	for steps := 0; l.accumulator >= step; steps++ {
		if steps == l.config.MaxPhysicsSteps {
			behind := uint64(l.accumulator / step)
			l.dropped += behind
			l.accumulator -= time.Duration(behind) * step
			l.logger.Debug("Physics fell behind, dropping ticks", log.Uint64("dropped", behind))
			break
		}
		if err := l.scene.RunPhysicsFrameSystems(step.Seconds()); err != nil {
			return fmt.Errorf("physics frame %d: %w", l.physicsTicks, err)
		}
		l.accumulator -= step
		l.physicsTicks++
	}

	if err := l.scene.RunRenderFrameSystems(dt.Seconds()); err != nil {
		return fmt.Errorf("render frame %d: %w", l.frames, err)
	}
	l.frames++
	return nil
}

// Run initializes the systems and steps the scene until MaxFrames is reached,
// ctx is cancelled or a system fails. Systems are always shut down and the
// scene freed before Run returns. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) (err error) {
	if l.running {
		return ErrLoopRunning
	}
	l.running = true
	defer func() { l.running = false }()

	start := time.Now()
	l.logger.Info("Starting frame loop",
		log.Duration("physics_step", l.config.PhysicsStep),
		log.Duration("frame_time", l.config.FrameTime),
		log.Int("max_frames", l.config.MaxFrames),
	)

	defer func() {
		// Free shuts the systems down before dropping entities and types.
		err = multierr.Append(err, l.scene.Free())
		l.logger.Info("Frame loop stopped",
			log.Uint64("frames", l.frames),
			log.Uint64("physics_ticks", l.physicsTicks),
			log.Uint64("dropped_ticks", l.dropped),
			log.Duration("elapsed", time.Since(start)),
			log.Error(err),
		)
	}()

	if err = l.scene.InitSystems(); err != nil {
		return fmt.Errorf("init systems: %w", err)
	}

	var tick <-chan time.Time
	if l.config.FrameTime > 0 {
		ticker := time.NewTicker(l.config.FrameTime)
		defer ticker.Stop()
		tick = ticker.C
	}

	last := time.Now()
	for l.config.MaxFrames == 0 || l.frames < uint64(l.config.MaxFrames) {
		if ctx.Err() != nil {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}

		now := time.Now()
		if err = l.Step(now.Sub(last)); err != nil {
			return err
		}
		last = now
	}
	return nil
}
