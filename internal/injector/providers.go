package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zecs/internal/config"
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/engine"
	"github.com/zeusync/zecs/internal/core/observability/log"
)

// App is everything a host needs to populate a scene and run it.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Loop   *engine.Loop
}

func (a *App) Scene() *ecs.Scene {
	return a.Loop.Scene()
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideScene,
	ProvideLoop,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the process logger. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.NewWithOptions(log.Options{
		Level:       cfg.LogLevel(),
		Format:      log.Format(cfg.Log.Format),
		OutputPaths: cfg.Log.Outputs,
	})
	return logger, func() { _ = logger.Sync() }
}

func ProvideScene(cfg *config.Config, logger log.Log) *ecs.Scene {
	return ecs.NewScene(cfg.SceneOptions(logger)...)
}

func ProvideLoop(scene *ecs.Scene, cfg *config.Config, logger log.Log) *engine.Loop {
	return engine.New(scene, cfg.EngineConfig(), logger)
}
