package ecs

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/core/storage/hashmap"
	"github.com/zeusync/zecs/pkg/generic"
	"github.com/zeusync/zecs/pkg/sequence"
)

// Options configures a Scene.
type Options struct {
	TypeBuckets   int
	EntityBuckets int
	IndexBuckets  int
	Hasher        hashmap.Algorithm

	// Strict turns fatal configuration errors (a system requiring an
	// unregistered component type) into panics.
	Strict bool

	Logger log.Log
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the options NewScene starts from.
func DefaultOptions() Options {
	return Options{
		TypeBuckets:   64,
		EntityBuckets: 1024,
		Hasher:        hashmap.AlgorithmDJB2,
	}
}

func WithLogger(logger log.Log) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithBucketCounts sets the bucket counts of the type registry, the entity
// registry and every table index. Non-positive values keep the default.
func WithBucketCounts(types, entities, index int) Option {
	return func(o *Options) {
		if types > 0 {
			o.TypeBuckets = types
		}
		if entities > 0 {
			o.EntityBuckets = entities
		}
		if index > 0 {
			o.IndexBuckets = index
		}
	}
}

func WithHasher(alg hashmap.Algorithm) Option {
	return func(o *Options) { o.Hasher = alg }
}

func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// Scene owns every component table, the entity registry and the systems of
// both frame cadences. It is not safe for concurrent use: all calls must come
// from the goroutine driving the frame loop.
type Scene struct {
	componentTypes *hashmap.Map[models.UUID, Table]
	entities       *hashmap.Map[models.UUID, *sequence.List[models.UUID]]
	typeLists      *generic.Pool[*sequence.List[models.UUID]]

	physicsSystems sequence.List[*System]
	renderSystems  sequence.List[*System]

	mainCamera models.UUID

	options Options
	logger  log.Log
}

// NewScene creates an empty scene.
func NewScene(opts ...Option) *Scene {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Scene{
		componentTypes: hashmap.New[models.UUID, Table](options.TypeBuckets, hashmap.UUIDHasher(options.Hasher), hashmap.CompareUUID),
		entities:       hashmap.New[models.UUID, *sequence.List[models.UUID]](options.EntityBuckets, hashmap.UUIDHasher(options.Hasher), hashmap.CompareUUID),
		typeLists:      generic.NewPool(sequence.NewList[models.UUID], (*sequence.List[models.UUID]).Clear),
		options:        options,
		logger:         logger.Named("scene"),
	}
}

// Free shuts every system down, then removes every entity and every
// component type. The scene is empty and reusable afterwards.
func (s *Scene) Free() error {
	err := s.ShutdownSystems()

	for _, id := range s.entities.Keys() {
		s.RemoveEntity(id)
	}
	for _, id := range s.componentTypes.Keys() {
		s.RemoveComponentType(id)
	}
	s.physicsSystems.Clear()
	s.renderSystems.Clear()
	s.mainCamera = models.Nil
	return err
}

// RemoveComponentType strips the type from every entity, then drops its table.
func (s *Scene) RemoveComponentType(id models.UUID) bool {
	table, ok := s.componentTypes.Get(id)
	if !ok {
		return false
	}
	for it := s.entities.Iter(); it.Next(); {
		it.Value().RemoveFirst(func(t models.UUID) bool { return models.Compare(t, id) == 0 })
	}
	name := (*table).Name()
	(*table).Clear()
	s.componentTypes.Delete(id)

	s.logger.Debug("Component type removed", log.String("type", displayName(id, name)))
	return true
}

// Table returns the type-erased table registered under id.
func (s *Scene) Table(id models.UUID) (Table, bool) {
	t, ok := s.componentTypes.Get(id)
	if !ok {
		return nil, false
	}
	return *t, true
}

func (s *Scene) HasComponentType(id models.UUID) bool {
	return s.componentTypes.Has(id)
}

func (s *Scene) ComponentTypeCount() int {
	return s.componentTypes.Len()
}

// RegisterEntity adds id with an empty component list. Registering a known
// entity keeps its components.
func (s *Scene) RegisterEntity(id models.UUID) error {
	if id.IsNil() {
		return ErrNilEntity
	}
	if s.entities.Has(id) {
		return nil
	}
	s.entities.Push(id, s.typeLists.Get())
	return nil
}

// CreateEntity mints a random id and registers it.
func (s *Scene) CreateEntity() models.UUID {
	id := models.NewUUID()
	// RegisterEntity only fails for models.Nil, which a v4 id never is.
	_ = s.RegisterEntity(id)
	return id
}

// RemoveEntity drops the entity from every table it appears in and from the
// registry. Removing an unknown entity is a no-op.
func (s *Scene) RemoveEntity(id models.UUID) bool {
	types, ok := s.entities.Get(id)
	if !ok {
		return false
	}
	for typeID := range (*types).All() {
		if table, found := s.componentTypes.Get(typeID); found {
			(*table).Remove(id)
		}
	}
	list := *types
	s.entities.Delete(id)
	s.typeLists.Put(list)

	if models.Compare(s.mainCamera, id) == 0 {
		s.mainCamera = models.Nil
	}
	return true
}

func (s *Scene) HasEntity(id models.UUID) bool {
	return s.entities.Has(id)
}

func (s *Scene) EntityCount() int {
	return s.entities.Len()
}

// Entities returns a snapshot of every registered entity id.
func (s *Scene) Entities() []models.UUID {
	return s.entities.Keys()
}

// EntityComponentTypes returns the component types attached to the entity,
// most recently added first.
func (s *Scene) EntityComponentTypes(id models.UUID) []models.UUID {
	types, ok := s.entities.Get(id)
	if !ok {
		return nil
	}
	return sequence.FromList(*types).Collect()
}

// RemoveComponentFromEntity removes the entity's component of type typeID.
func (s *Scene) RemoveComponentFromEntity(entity, typeID models.UUID) bool {
	removed := false
	if table, ok := s.componentTypes.Get(typeID); ok {
		removed = (*table).Remove(entity)
	}
	if types, ok := s.entities.Get(entity); ok {
		(*types).RemoveFirst(func(t models.UUID) bool { return models.Compare(t, typeID) == 0 })
	}
	return removed
}

// HasComponent reports whether the entity has a live component of type typeID.
func (s *Scene) HasComponent(entity, typeID models.UUID) bool {
	table, ok := s.componentTypes.Get(typeID)
	return ok && (*table).Has(entity)
}

func (s *Scene) MainCamera() models.UUID {
	return s.mainCamera
}

func (s *Scene) SetMainCamera(id models.UUID) {
	s.mainCamera = id
}

// AddPhysicsFrameSystem appends sys to the physics cadence.
func (s *Scene) AddPhysicsFrameSystem(sys *System) {
	if sys == nil {
		return
	}
	s.physicsSystems.PushBack(sys)
}

// AddRenderFrameSystem appends sys to the render cadence.
func (s *Scene) AddRenderFrameSystem(sys *System) {
	if sys == nil {
		return
	}
	s.renderSystems.PushBack(sys)
}

func (s *Scene) PhysicsSystems() []*System {
	return sequence.FromList(&s.physicsSystems).Collect()
}

func (s *Scene) RenderSystems() []*System {
	return sequence.FromList(&s.renderSystems).Collect()
}

// InitSystems calls init on every physics system, then every render system,
// in registration order. It stops at the first failure.
func (s *Scene) InitSystems() error {
	for _, list := range []*sequence.List[*System]{&s.physicsSystems, &s.renderSystems} {
		for sys := range list.All() {
			if sys.init == nil {
				continue
			}
			if err := sys.init(s); err != nil {
				return fmt.Errorf("init system %q: %w", sys.name, err)
			}
		}
	}
	return nil
}

// RunPhysicsFrameSystems runs one physics frame of every physics system.
func (s *Scene) RunPhysicsFrameSystems(dt float64) error {
	return s.runFrame(&s.physicsSystems, dt)
}

// RunRenderFrameSystems runs one render frame of every render system.
func (s *Scene) RunRenderFrameSystems(dt float64) error {
	return s.runFrame(&s.renderSystems, dt)
}

func (s *Scene) runFrame(list *sequence.List[*System], dt float64) error {
	for sys := range list.All() {
		if err := sys.Run(s, dt); err != nil {
			return err
		}
	}
	return nil
}

// ShutdownSystems calls shutdown on every system, physics first. Every
// system is shut down even when an earlier one fails.
func (s *Scene) ShutdownSystems() error {
	var err error
	for _, list := range []*sequence.List[*System]{&s.physicsSystems, &s.renderSystems} {
		for sys := range list.All() {
			if sys.shutdown == nil {
				continue
			}
			if shutdownErr := sys.shutdown(s); shutdownErr != nil {
				err = multierr.Append(err, fmt.Errorf("shutdown system %q: %w", sys.name, shutdownErr))
			}
		}
	}
	return err
}

// CheckConsistency verifies that every table agrees with its index and that
// the entity component lists match the tables.
func (s *Scene) CheckConsistency() error {
	var err error
	for it := s.componentTypes.Iter(); it.Next(); {
		table := it.Value()
		err = multierr.Append(err, table.CheckConsistency())
		table.EachID(func(entity models.UUID) bool {
			types, ok := s.entities.Get(entity)
			if !ok {
				err = multierr.Append(err, fmt.Errorf("%w: %s stored in %s but not registered",
					ErrInconsistentState, entity, displayName(table.ComponentType(), table.Name())))
				return true
			}
			if !listContains(*types, table.ComponentType()) {
				err = multierr.Append(err, fmt.Errorf("%w: %s stored in %s but not listed",
					ErrInconsistentState, entity, displayName(table.ComponentType(), table.Name())))
			}
			return true
		})
	}
	for it := s.entities.Iter(); it.Next(); {
		entity := it.Key()
		seen := 0
		for typeID := range it.Value().All() {
			seen++
			table, ok := s.componentTypes.Get(typeID)
			if !ok || !(*table).Has(entity) {
				err = multierr.Append(err, fmt.Errorf("%w: %s lists %s without a live slot",
					ErrInconsistentState, entity, typeID))
			}
		}
		if seen != len(distinct(it.Value())) {
			err = multierr.Append(err, fmt.Errorf("%w: %s lists a component type twice", ErrInconsistentState, entity))
		}
	}
	return err
}

func listContains(l *sequence.List[models.UUID], id models.UUID) bool {
	return sequence.FromList(l).Any(func(t models.UUID) bool { return models.Compare(t, id) == 0 })
}

func distinct(l *sequence.List[models.UUID]) map[models.UUID]struct{} {
	set := make(map[models.UUID]struct{}, l.Len())
	for id := range l.All() {
		set[id] = struct{}{}
	}
	return set
}
