package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zecs/internal/core/models"
)

var (
	typeA = NewComponentType[int]("a")
	typeB = NewComponentType[int]("b")
)

// joinScene registers A on {1,2,3} and B on {2,3,4}.
func joinScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	s := NewScene(opts...)
	require.NoError(t, Register(s, typeA, 8))
	require.NoError(t, Register(s, typeB, 8))
	for _, name := range []string{"1", "2", "3", "4"} {
		require.NoError(t, s.RegisterEntity(id(name)))
	}
	for _, name := range []string{"1", "2", "3"} {
		require.NoError(t, Add(s, id(name), typeA, 0))
	}
	for _, name := range []string{"2", "3", "4"} {
		require.NoError(t, Add(s, id(name), typeB, 0))
	}
	return s
}

func TestJoinVisitsIntersectionInDriverOrder(t *testing.T) {
	s := joinScene(t)
	var visited []string
	sys := NewSystem("ab", []models.UUID{typeA.ID(), typeB.ID()},
		OnRun(func(_ *Scene, entity models.UUID, _ float64) error {
			visited = append(visited, entity.String())
			return nil
		}),
	)

	require.NoError(t, sys.Run(s, 0.016))
	assert.Equal(t, []string{"2", "3"}, visited)
	assert.Equal(t, 2, sys.Stats().LastEntities)
	assert.Equal(t, uint64(1), sys.Stats().Frames)
}

func TestJoinDriverOrderFollowsSlots(t *testing.T) {
	s := joinScene(t)
	s.RemoveComponentFromEntity(id("2"), typeA.ID())
	require.NoError(t, Add(s, id("4"), typeA, 0))

	var visited []string
	sys := NewSystem("ab", []models.UUID{typeA.ID(), typeB.ID()},
		OnRun(func(_ *Scene, entity models.UUID, _ float64) error {
			visited = append(visited, entity.String())
			return nil
		}),
	)
	require.NoError(t, sys.Run(s, 0))
	// 4 reused the slot entity 2 left, ahead of 3
	assert.Equal(t, []string{"4", "3"}, visited)
}

func TestPhasesRunInOrder(t *testing.T) {
	s := joinScene(t)
	var calls []string
	sys := NewSystem("phases", []models.UUID{typeB.ID()},
		OnBegin(func(*Scene, float64) error { calls = append(calls, "begin"); return nil }),
		OnRun(func(_ *Scene, e models.UUID, _ float64) error { calls = append(calls, "run:"+e.String()); return nil }),
		OnEnd(func(*Scene, float64) error { calls = append(calls, "end"); return nil }),
	)
	require.NoError(t, sys.Run(s, 0))
	assert.Equal(t, []string{"begin", "run:2", "run:3", "run:4", "end"}, calls)
}

func TestSystemWithOnlyInitNeverRuns(t *testing.T) {
	s := joinScene(t)
	inits := 0
	sys := NewSystem("init-only", []models.UUID{typeA.ID()},
		OnInit(func(*Scene) error { inits++; return nil }),
	)
	s.AddPhysicsFrameSystem(sys)
	s.AddRenderFrameSystem(NewSystem("empty", nil))

	require.NoError(t, s.InitSystems())
	for frame := 0; frame < 10; frame++ {
		require.NoError(t, s.RunPhysicsFrameSystems(0.01))
		require.NoError(t, s.RunRenderFrameSystems(0.016))
	}
	require.NoError(t, s.ShutdownSystems())

	assert.Equal(t, 1, inits)
	assert.Equal(t, uint64(0), sys.Stats().EntitiesProcessed)
	assert.Equal(t, uint64(10), sys.Stats().Frames)
}

func TestBeginAndEndFireWithoutRun(t *testing.T) {
	s := NewScene()
	begins, ends := 0, 0
	// the required type is not registered, which only matters when run is set
	sys := NewSystem("no-run", []models.UUID{models.IDFromName("missing")},
		OnBegin(func(*Scene, float64) error { begins++; return nil }),
		OnEnd(func(*Scene, float64) error { ends++; return nil }),
	)
	require.NoError(t, sys.Run(s, 0))
	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, ends)
}

func TestMissingRequiredTypeIsConfigurationError(t *testing.T) {
	s := joinScene(t)
	missing := models.IDFromName("missing")
	run := OnRun(func(*Scene, models.UUID, float64) error { return nil })

	err := NewSystem("driver", []models.UUID{missing}, run).Run(s, 0)
	assert.ErrorIs(t, err, ErrRequiredComponentMissing)

	err = NewSystem("filter", []models.UUID{typeA.ID(), missing}, run).Run(s, 0)
	assert.ErrorIs(t, err, ErrRequiredComponentMissing)
}

func TestMissingRequiredTypePanicsInStrictMode(t *testing.T) {
	s := joinScene(t, WithStrict(true))
	sys := NewSystem("strict", []models.UUID{models.IDFromName("missing")},
		OnRun(func(*Scene, models.UUID, float64) error { return nil }),
	)
	assert.Panics(t, func() { _ = sys.Run(s, 0) })
}

func TestRunErrorAbortsFrame(t *testing.T) {
	s := joinScene(t)
	boom := errors.New("boom")
	ends := 0
	calls := 0
	sys := NewSystem("fail", []models.UUID{typeA.ID()},
		OnRun(func(*Scene, models.UUID, float64) error { calls++; return boom }),
		OnEnd(func(*Scene, float64) error { ends++; return nil }),
	)
	s.AddPhysicsFrameSystem(sys)

	err := s.RunPhysicsFrameSystems(0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, ends)
}

func TestRunMayRemoveComponentsDuringIteration(t *testing.T) {
	s := joinScene(t)
	var visited []string
	sys := NewSystem("reaper", []models.UUID{typeA.ID()},
		OnRun(func(sc *Scene, e models.UUID, _ float64) error {
			visited = append(visited, e.String())
			if e.String() == "1" {
				sc.RemoveEntity(id("2"))
			}
			return nil
		}),
	)
	require.NoError(t, sys.Run(s, 0))
	assert.Equal(t, []string{"1", "3"}, visited)
	assert.NoError(t, s.CheckConsistency())
}

func TestSystemsRunInRegistrationOrderPerCadence(t *testing.T) {
	s := NewScene()
	var order []string
	mk := func(name string) *System {
		return NewSystem(name, nil,
			OnInit(func(*Scene) error { order = append(order, "init:"+name); return nil }),
			OnBegin(func(*Scene, float64) error { order = append(order, name); return nil }),
			OnShutdown(func(*Scene) error { order = append(order, "shutdown:"+name); return nil }),
		)
	}
	s.AddRenderFrameSystem(mk("r1"))
	s.AddPhysicsFrameSystem(mk("p1"))
	s.AddRenderFrameSystem(mk("r2"))
	s.AddPhysicsFrameSystem(mk("p2"))
	s.AddPhysicsFrameSystem(nil)

	require.NoError(t, s.InitSystems())
	require.NoError(t, s.RunPhysicsFrameSystems(0))
	require.NoError(t, s.RunRenderFrameSystems(0))
	require.NoError(t, s.ShutdownSystems())

	assert.Equal(t, []string{
		"init:p1", "init:p2", "init:r1", "init:r2",
		"p1", "p2",
		"r1", "r2",
		"shutdown:p1", "shutdown:p2", "shutdown:r1", "shutdown:r2",
	}, order)
}

func TestShutdownCollectsEveryError(t *testing.T) {
	s := NewScene()
	errA, errB := errors.New("a"), errors.New("b")
	s.AddPhysicsFrameSystem(NewSystem("a", nil, OnShutdown(func(*Scene) error { return errA })))
	s.AddRenderFrameSystem(NewSystem("b", nil, OnShutdown(func(*Scene) error { return errB })))

	err := s.ShutdownSystems()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

type countingHandler struct {
	inits, runs int
}

func (h *countingHandler) Init(*Scene) error { h.inits++; return nil }
func (h *countingHandler) Run(*Scene, models.UUID, float64) error {
	h.runs++
	return nil
}

func TestFromHandlerUsesImplementedPhases(t *testing.T) {
	s := joinScene(t)
	h := &countingHandler{}
	sys := FromHandler("handler", []models.UUID{typeB.ID(), typeA.ID()}, h)
	s.AddPhysicsFrameSystem(sys)

	require.NoError(t, s.InitSystems())
	require.NoError(t, s.RunPhysicsFrameSystems(0))
	assert.Equal(t, 1, h.inits)
	assert.Equal(t, 2, h.runs)
	assert.Equal(t, []models.UUID{typeB.ID(), typeA.ID()}, sys.Required())
	assert.Equal(t, "handler", sys.Name())
}

func BenchmarkJoinTwoTypes(b *testing.B) {
	s := NewScene()
	pos := NewComponentType[transform]("transform")
	vel := NewComponentType[velocity]("velocity")
	_ = Register(s, pos, 4096)
	_ = Register(s, vel, 4096)
	for i := 0; i < 4096; i++ {
		e := s.CreateEntity()
		_ = Add(s, e, pos, transform{})
		if i%2 == 0 {
			_ = Add(s, e, vel, velocity{DX: 1})
		}
	}
	sys := NewSystem("move", []models.UUID{vel.ID(), pos.ID()},
		OnRun(func(sc *Scene, e models.UUID, dt float64) error {
			t, _ := Get(sc, e, pos)
			v, _ := Get(sc, e, vel)
			t.Position[0] += v.DX * float32(dt)
			return nil
		}),
	)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = sys.Run(s, 0.016)
	}
}

func TestSystemRunIsReentrantAcrossScenes(t *testing.T) {
	outer := joinScene(t)
	inner := NewScene()
	require.NoError(t, Register(inner, typeA, 4))
	require.NoError(t, Register(inner, typeB, 4))
	require.NoError(t, inner.RegisterEntity(id("9")))
	require.NoError(t, Add(inner, id("9"), typeA, 0))

	var visited []string
	nested := false
	var sys *System
	sys = NewSystem("ab", []models.UUID{typeA.ID(), typeB.ID()},
		OnRun(func(s *Scene, e models.UUID, _ float64) error {
			visited = append(visited, e.String())
			if s == outer && !nested {
				nested = true
				return sys.Run(inner, 0)
			}
			return nil
		}),
	)

	require.NoError(t, sys.Run(outer, 0))
	// the inner run found nothing, and must not change the outer filter
	assert.Equal(t, []string{"2", "3"}, visited)
}
