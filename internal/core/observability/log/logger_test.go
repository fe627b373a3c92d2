package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetLevelPropagatesToDerivedLoggers(t *testing.T) {
	l := NewDevelopment(LevelInfo)
	child := l.With(String("scene", "main")).Named("ecs")

	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, l.GetLevel())
	assert.Equal(t, LevelError, child.GetLevel())
}

func TestToZapFields(t *testing.T) {
	fields := toZapFields(
		String("s", "v"),
		Int("i", 1),
		Error(errors.New("x")),
		Any("a", []int{1}),
	)
	require.Len(t, fields, 4)
	assert.Equal(t, "s", fields[0].Key)
	assert.Equal(t, "error", fields[2].Key)
}

func TestProvideNeverNil(t *testing.T) {
	assert.NotNil(t, Provide())
	NewNop().Info("discarded")
}

func TestNilErrorFieldIsSkipped(t *testing.T) {
	assert.NotPanics(t, func() {
		fields := toZapFields(Error(nil))
		require.Len(t, fields, 1)
		NewNop().Info("no error", Error(nil))
	})
}

func TestNewWithOptionsWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zecs.log")
	l := NewWithOptions(Options{Level: LevelInfo, Format: FormatJSON, OutputPaths: []string{path}})

	l.Debug("hidden")
	l.Named("scene").Info("Component type registered", String("type", "transform"), Int("capacity", 64))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"logger":"scene"`)
	assert.Contains(t, out, `"type":"transform"`)
	assert.Contains(t, out, `"capacity":64`)
}

func TestLevelMapping(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal} {
		assert.Equal(t, level, fromZapLevel(toZapLevel(level)))
	}
	assert.Equal(t, LevelInfo, fromZapLevel(toZapLevel(Level(42))))
}
