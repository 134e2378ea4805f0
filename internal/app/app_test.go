package app

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestNewAppOpensDatabase(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("database.path", filepath.Join(t.TempDir(), "games.db"))
	viper.Set("metrics.enabled", false)

	a, err := NewApp()
	require.NoError(t, err)
	require.NotNil(t, a.GetLogger())
	require.NotNil(t, a.GetStore())
	a.Close()
}

func TestNewAppMetricsServersDoNotShareAMux(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("database.path", filepath.Join(t.TempDir(), "games.db"))
	viper.Set("metrics.enabled", true)
	viper.Set("metrics.addr", "127.0.0.1:0")

	first, err := NewApp()
	require.NoError(t, err)
	defer first.Close()

	// A second app in the same process must not panic on a duplicate
	// /metrics registration.
	second, err := NewApp()
	require.NoError(t, err)
	second.Close()
}

func TestNewAppFailsOnUnopenableDatabase(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	// A directory path is not a usable database file.
	viper.Set("database.path", t.TempDir())

	_, err := NewApp()
	require.Error(t, err)
}
