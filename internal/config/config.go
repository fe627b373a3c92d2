package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/engine"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/core/storage/hashmap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalidConfig     = errors.New("invalid config")
)

type Config struct {
	Log        LoggingConfig  `yaml:"log" toml:"log"`
	Scene      SceneConfig    `yaml:"scene" toml:"scene"`
	Components map[string]int `yaml:"components" toml:"components"` // capacity per component type name
	Engine     LoopConfig     `yaml:"engine" toml:"engine"`
}

type LoggingConfig struct {
	Level   string   `yaml:"level" toml:"level"`
	Format  string   `yaml:"format" toml:"format"` // "json" or "console"
	Outputs []string `yaml:"outputs" toml:"outputs"` // zap output paths, stderr when empty
}

type SceneConfig struct {
	TypeBuckets     int    `yaml:"type_buckets" toml:"type_buckets"`
	EntityBuckets   int    `yaml:"entity_buckets" toml:"entity_buckets"`
	IndexBuckets    int    `yaml:"index_buckets" toml:"index_buckets"`
	Hasher          string `yaml:"hasher" toml:"hasher"` // "djb2" or "xxhash"
	Strict          bool   `yaml:"strict" toml:"strict"`
	DefaultCapacity int    `yaml:"default_capacity" toml:"default_capacity"`
}

type LoopConfig struct {
	PhysicsStep     time.Duration `yaml:"physics_step" toml:"physics_step"`
	FrameTime       time.Duration `yaml:"frame_time" toml:"frame_time"`
	MaxFrames       int           `yaml:"max_frames" toml:"max_frames"`
	MaxPhysicsSteps int           `yaml:"max_physics_steps" toml:"max_physics_steps"`
}

func Default() *Config {
	return &Config{
		Log: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Scene: SceneConfig{
			TypeBuckets:     64,
			EntityBuckets:   1024,
			IndexBuckets:    256,
			Hasher:          hashmap.AlgorithmDJB2.String(),
			DefaultCapacity: 1024,
		},
		Components: map[string]int{},
		Engine: LoopConfig{
			PhysicsStep:     16 * time.Millisecond,
			FrameTime:       16 * time.Millisecond,
			MaxPhysicsSteps: 4,
		},
	}
}

// Load reads the file at path, picking the decoder from its extension.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	var decode func(io.Reader) (*Config, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decode = LoadYAML
	case ".toml":
		decode = LoadTOML
	default:
		return nil, fmt.Errorf("config %s: %w %q", path, ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func LoadTOML(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, parseErr := log.ParseLevel(c.Log.Level); parseErr != nil {
		invalid("log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		invalid("log.format %q", c.Log.Format)
	}

	if _, ok := hashmap.ParseAlgorithm(c.Scene.Hasher); !ok {
		invalid("scene.hasher %q", c.Scene.Hasher)
	}
	if c.Scene.TypeBuckets < 0 || c.Scene.EntityBuckets < 0 || c.Scene.IndexBuckets < 0 {
		invalid("scene bucket counts must not be negative")
	}
	if c.Scene.DefaultCapacity < 0 {
		invalid("scene.default_capacity %d", c.Scene.DefaultCapacity)
	}
	for name, capacity := range c.Components {
		if capacity <= 0 {
			invalid("components.%s capacity %d", name, capacity)
		}
	}

	if c.Engine.PhysicsStep <= 0 {
		invalid("engine.physics_step %s", c.Engine.PhysicsStep)
	}
	if c.Engine.FrameTime < 0 {
		invalid("engine.frame_time %s", c.Engine.FrameTime)
	}
	if c.Engine.MaxFrames < 0 {
		invalid("engine.max_frames %d", c.Engine.MaxFrames)
	}
	if c.Engine.MaxPhysicsSteps < 0 {
		invalid("engine.max_physics_steps %d", c.Engine.MaxPhysicsSteps)
	}
	return err
}

// Capacity returns the configured capacity of the named component type,
// falling back to scene.default_capacity.
func (c *Config) Capacity(name string) int {
	if capacity, ok := c.Components[name]; ok {
		return capacity
	}
	return c.Scene.DefaultCapacity
}

func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

func (c *Config) SceneOptions(logger log.Log) []ecs.Option {
	alg, _ := hashmap.ParseAlgorithm(c.Scene.Hasher)
	return []ecs.Option{
		ecs.WithLogger(logger),
		ecs.WithBucketCounts(c.Scene.TypeBuckets, c.Scene.EntityBuckets, c.Scene.IndexBuckets),
		ecs.WithHasher(alg),
		ecs.WithStrict(c.Scene.Strict),
	}
}

func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		PhysicsStep:     c.Engine.PhysicsStep,
		FrameTime:       c.Engine.FrameTime,
		MaxFrames:       c.Engine.MaxFrames,
		MaxPhysicsSteps: c.Engine.MaxPhysicsSteps,
	}
}
