package main

import (
	"context"
	"runtime"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/core/staging"
	"github.com/zeusync/zecs/internal/injector"
)

const spawnBatch = 256

type transform struct {
	X, Y float64
}

type velocity struct {
	DX, DY float64
}

// lifetime is the number of seconds an entity has left.
type lifetime struct {
	Remaining float64
}

var (
	transformType = ecs.NewComponentType[transform]("transform")
	velocityType  = ecs.NewComponentType[velocity]("velocity")
	lifetimeType  = ecs.NewComponentType[lifetime]("lifetime")
)

type demoStats struct {
	Spawned  int
	Expired  int
	Visible  int
	MaxAlive int
}

// demo is a headless particle field: entities drift with a constant velocity
// and are removed when their lifetime runs out.
type demo struct {
	stats  demoStats
	logger log.Log
}

func setupDemo(ctx context.Context, app *injector.App, entities int) (*demo, error) {
	scene := app.Scene()
	d := &demo{logger: app.Logger.Named("demo")}

	if err := ecs.Register(scene, transformType, app.Config.Capacity(transformType.Name())); err != nil {
		return nil, err
	}
	if err := ecs.Register(scene, velocityType, app.Config.Capacity(velocityType.Name())); err != nil {
		return nil, err
	}
	if err := ecs.Register(scene, lifetimeType, app.Config.Capacity(lifetimeType.Name())); err != nil {
		return nil, err
	}

	camera := scene.CreateEntity()
	if err := ecs.Add(scene, camera, transformType, transform{}); err != nil {
		return nil, err
	}
	scene.SetMainCamera(camera)

	scene.AddPhysicsFrameSystem(d.movementSystem())
	scene.AddPhysicsFrameSystem(d.agingSystem())
	scene.AddRenderFrameSystem(d.visibilitySystem())

	var loaders []staging.Loader
	for start := 0; start < entities; start += spawnBatch {
		loaders = append(loaders, spawnLoader(start, min(start+spawnBatch, entities)))
	}
	if err := staging.Load(ctx, app.Loop.Queue(), runtime.GOMAXPROCS(0), loaders...); err != nil {
		return nil, err
	}
	d.stats.Spawned = entities
	return d, nil
}

// spawnLoader stages entities [from, to). Entity i lives for 50ms*(i+1) and
// drifts one unit per second along a direction picked by i.
func spawnLoader(from, to int) staging.Loader {
	return func(ctx context.Context, q *staging.Queue) error {
		commands := make([]staging.Command, 0, to-from)
		for i := from; i < to; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := velocity{DX: 1}
			if i%2 == 1 {
				v = velocity{DY: 1}
			}
			life := lifetime{Remaining: 0.05 * float64(i+1)}

			commands = append(commands, func(s *ecs.Scene) error {
				e := s.CreateEntity()
				err := ecs.Add(s, e, transformType, transform{})
				if err == nil {
					err = ecs.Add(s, e, velocityType, v)
				}
				if err == nil {
					err = ecs.Add(s, e, lifetimeType, life)
				}
				if err != nil {
					// a particle missing any of its components is never driven
					s.RemoveEntity(e)
				}
				return err
			})
		}
		q.Push(commands...)
		return nil
	}
}

func (d *demo) movementSystem() *ecs.System {
	return ecs.NewSystem("movement", []models.UUID{velocityType.ID(), transformType.ID()},
		ecs.OnRun(func(s *ecs.Scene, e models.UUID, dt float64) error {
			t, _ := ecs.Get(s, e, transformType)
			v, _ := ecs.Get(s, e, velocityType)
			t.X += v.DX * dt
			t.Y += v.DY * dt
			return nil
		}),
	)
}

func (d *demo) agingSystem() *ecs.System {
	return ecs.NewSystem("aging", []models.UUID{lifetimeType.ID()},
		ecs.OnRun(func(s *ecs.Scene, e models.UUID, dt float64) error {
			l, _ := ecs.Get(s, e, lifetimeType)
			l.Remaining -= dt
			if l.Remaining <= 0 {
				s.RemoveEntity(e)
				d.stats.Expired++
			}
			return nil
		}),
	)
}

func (d *demo) visibilitySystem() *ecs.System {
	return ecs.NewSystem("visibility", []models.UUID{transformType.ID()},
		ecs.OnBegin(func(*ecs.Scene, float64) error {
			d.stats.Visible = 0
			return nil
		}),
		ecs.OnRun(func(s *ecs.Scene, e models.UUID, _ float64) error {
			if e != s.MainCamera() {
				d.stats.Visible++
			}
			return nil
		}),
		ecs.OnEnd(func(s *ecs.Scene, _ float64) error {
			d.stats.MaxAlive = max(d.stats.MaxAlive, d.stats.Visible)
			return nil
		}),
		ecs.OnShutdown(func(*ecs.Scene) error {
			d.logger.Info("Demo finished",
				log.Int("spawned", d.stats.Spawned),
				log.Int("expired", d.stats.Expired),
				log.Int("visible", d.stats.Visible),
				log.Int("max_alive", d.stats.MaxAlive),
			)
			return nil
		}),
	)
}
