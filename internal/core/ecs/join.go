package ecs

import (
	"fmt"
	"time"

	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/observability/log"
)

// Run executes one frame of the system: begin, then run for every entity
// that has all required components, then end.
//
// Candidates come from the first required type's table in slot order; each
// is kept only if every other required table has it. A required type that
// the scene never registered is a configuration error: it is logged, returned
// wrapped in ErrRequiredComponentMissing, and panics in strict mode.
func (sys *System) Run(s *Scene, dt float64) error {
	start := time.Now()

	if sys.begin != nil {
		if err := sys.begin(s, dt); err != nil {
			return fmt.Errorf("system %q begin: %w", sys.name, err)
		}
	}

	processed := 0
	if sys.run != nil && len(sys.required) > 0 {
		driver, err := s.requireTable(sys, sys.required[0])
		if err != nil {
			return err
		}
		var buf [4]Table
		others := buf[:0]
		for _, typeID := range sys.required[1:] {
			table, err := s.requireTable(sys, typeID)
			if err != nil {
				return err
			}
			others = append(others, table)
		}

		var runErr error
		driver.EachID(func(entity models.UUID) bool {
			for _, table := range others {
				if !table.Has(entity) {
					return true
				}
			}
			if err := sys.run(s, entity, dt); err != nil {
				runErr = fmt.Errorf("system %q run on %s: %w", sys.name, entity, err)
				return false
			}
			processed++
			return true
		})
		if runErr != nil {
			return runErr
		}
	}

	if sys.end != nil {
		if err := sys.end(s, dt); err != nil {
			return fmt.Errorf("system %q end: %w", sys.name, err)
		}
	}

	elapsed := time.Since(start)
	sys.stats.Frames++
	sys.stats.EntitiesProcessed += uint64(processed)
	sys.stats.LastEntities = processed
	sys.stats.LastDuration = elapsed
	sys.stats.TotalDuration += elapsed
	return nil
}

func (s *Scene) requireTable(sys *System, typeID models.UUID) (Table, error) {
	table, ok := s.componentTypes.Get(typeID)
	if ok {
		return *table, nil
	}

	err := fmt.Errorf("system %q requires %s: %w", sys.name, typeID, ErrRequiredComponentMissing)
	s.logger.Error("System requires an unregistered component type",
		log.String("system", sys.name),
		log.Stringer("type", typeID),
	)
	if s.options.Strict {
		panic(err)
	}
	return nil, err
}
