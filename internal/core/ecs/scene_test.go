package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/storage/hashmap"
)

type transform struct {
	Position [3]float32
	Scale    float32
}

type velocity struct{ DX, DY, DZ float32 }

var (
	transformType = NewComponentType[transform]("transform")
	velocityType  = NewComponentType[velocity]("velocity")
)

func newTestScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	s := NewScene(opts...)
	require.NoError(t, Register(s, transformType, 16))
	require.NoError(t, Register(s, velocityType, 16))
	return s
}

func TestEntityLifecycle(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()
	data := transform{Position: [3]float32{1, 2, 3}, Scale: 1}

	require.NoError(t, Add(s, e, transformType, data))
	got, ok := Get(s, e, transformType)
	require.True(t, ok)
	assert.Equal(t, data, *got)

	assert.True(t, s.RemoveEntity(e))
	_, ok = Get(s, e, transformType)
	assert.False(t, ok)
	assert.False(t, s.HasEntity(e))
	assert.Equal(t, 0, s.EntityCount())
	assert.NoError(t, s.CheckConsistency())
}

func TestRemoveEntityTwiceIsNoop(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()
	require.NoError(t, Add(s, e, velocityType, velocity{DX: 1}))

	assert.True(t, s.RemoveEntity(e))
	assert.False(t, s.RemoveEntity(e))
	assert.False(t, s.RemoveEntity(models.NewUUID()))
	assert.NoError(t, s.CheckConsistency())
}

func TestNameDerivedTypesResolveAcrossDeclarations(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()
	require.NoError(t, Add(s, e, transformType, transform{Scale: 2}))

	// an independent declaration of the same name addresses the same table
	other := NewComponentType[transform]("transform")
	got, ok := Get(s, e, other)
	require.True(t, ok)
	assert.Equal(t, float32(2), got.Scale)

	raw, ok := GetComponentFromEntity[transform](s, e, models.IDFromName("transform"))
	require.True(t, ok)
	assert.Same(t, got, raw)
}

func TestAddComponentErrors(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()

	err := Add(s, models.NewUUID(), transformType, transform{})
	assert.ErrorIs(t, err, ErrEntityNotFound)

	err = Add(s, e, NewComponentType[int]("health"), 10)
	assert.ErrorIs(t, err, ErrComponentTypeNotRegistered)

	err = AddComponentToEntity(s, e, transformType.ID(), velocity{})
	assert.ErrorIs(t, err, ErrComponentTypeMismatch)

	assert.Empty(t, s.EntityComponentTypes(e))
	assert.NoError(t, s.CheckConsistency())
}

func TestAddComponentToFullTableLeavesEntityUntouched(t *testing.T) {
	s := NewScene()
	health := NewComponentType[int]("health")
	require.NoError(t, Register(s, health, 1))

	a, b := s.CreateEntity(), s.CreateEntity()
	require.NoError(t, Add(s, a, health, 100))
	err := Add(s, b, health, 50)
	assert.ErrorIs(t, err, ErrTableFull)

	_, ok := Get(s, b, health)
	assert.False(t, ok)
	assert.Empty(t, s.EntityComponentTypes(b))
	assert.NoError(t, s.CheckConsistency())
}

func TestReaddingComponentDoesNotDuplicateMembership(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()
	require.NoError(t, Add(s, e, velocityType, velocity{DX: 1}))
	require.NoError(t, Add(s, e, velocityType, velocity{DX: 2}))
	require.NoError(t, Add(s, e, transformType, transform{}))

	assert.Equal(t, []models.UUID{transformType.ID(), velocityType.ID()}, s.EntityComponentTypes(e))

	assert.True(t, s.RemoveComponentFromEntity(e, velocityType.ID()))
	assert.False(t, s.HasComponent(e, velocityType.ID()))
	assert.Equal(t, []models.UUID{transformType.ID()}, s.EntityComponentTypes(e))
	assert.NoError(t, s.CheckConsistency())

	assert.False(t, s.RemoveComponentFromEntity(e, velocityType.ID()))
}

func TestRegisterComponentTypeValidation(t *testing.T) {
	s := newTestScene(t)
	assert.ErrorIs(t, Register(s, transformType, 8), ErrComponentTypeExists)
	assert.ErrorIs(t, Register(s, NewComponentType[int]("x"), 0), ErrInvalidCapacity)
	assert.ErrorIs(t, AddComponentType[int](s, models.Nil, 4), ErrNilEntity)
	assert.Equal(t, 2, s.ComponentTypeCount())

	table, ok := s.Table(transformType.ID())
	require.True(t, ok)
	assert.Equal(t, "transform", table.Name())
	assert.Equal(t, 16, table.Capacity())
}

func TestRemoveComponentTypeStripsEntities(t *testing.T) {
	s := newTestScene(t)
	e := s.CreateEntity()
	require.NoError(t, Add(s, e, transformType, transform{}))
	require.NoError(t, Add(s, e, velocityType, velocity{}))

	assert.True(t, s.RemoveComponentType(velocityType.ID()))
	assert.False(t, s.HasComponentType(velocityType.ID()))
	assert.Equal(t, []models.UUID{transformType.ID()}, s.EntityComponentTypes(e))
	_, ok := Get(s, e, velocityType)
	assert.False(t, ok)
	assert.NoError(t, s.CheckConsistency())

	assert.False(t, s.RemoveComponentType(velocityType.ID()))

	// the type can be registered again with a different capacity
	require.NoError(t, Register(s, velocityType, 2))
}

func TestRegisterEntity(t *testing.T) {
	s := newTestScene(t)
	e := id("player")
	require.NoError(t, s.RegisterEntity(e))
	require.NoError(t, Add(s, e, transformType, transform{Scale: 3}))

	// registering again keeps components
	require.NoError(t, s.RegisterEntity(e))
	assert.True(t, s.HasComponent(e, transformType.ID()))
	assert.ErrorIs(t, s.RegisterEntity(models.Nil), ErrNilEntity)
	assert.Equal(t, []models.UUID{e}, s.Entities())
}

func TestMainCameraResetsWhenEntityRemoved(t *testing.T) {
	s := newTestScene(t)
	cam := s.CreateEntity()
	s.SetMainCamera(cam)
	assert.Equal(t, cam, s.MainCamera())

	s.RemoveEntity(cam)
	assert.True(t, s.MainCamera().IsNil())
}

func TestFreeEmptiesScene(t *testing.T) {
	s := newTestScene(t)
	shutdowns := 0
	s.AddPhysicsFrameSystem(NewSystem("p", nil, OnShutdown(func(*Scene) error { shutdowns++; return nil })))
	for i := 0; i < 5; i++ {
		e := s.CreateEntity()
		require.NoError(t, Add(s, e, transformType, transform{}))
	}

	require.NoError(t, s.Free())
	assert.Equal(t, 1, shutdowns)
	assert.Equal(t, 0, s.EntityCount())
	assert.Equal(t, 0, s.ComponentTypeCount())
	assert.Empty(t, s.PhysicsSystems())

	require.NoError(t, s.Free())
	assert.Equal(t, 1, shutdowns)
}

func TestSceneWithXXHashAndSmallBuckets(t *testing.T) {
	s := NewScene(WithHasher(hashmap.AlgorithmXXHash), WithBucketCounts(2, 2, 2))
	require.NoError(t, Register(s, velocityType, 64))
	for i := 0; i < 50; i++ {
		e := s.CreateEntity()
		require.NoError(t, Add(s, e, velocityType, velocity{DX: float32(i)}))
	}
	assert.Equal(t, 50, s.EntityCount())
	assert.NoError(t, s.CheckConsistency())
}
