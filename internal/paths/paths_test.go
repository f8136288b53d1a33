package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPlatform swaps the platform hooks for the duration of a test.
func withPlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })

	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultConfigDir(t *testing.T) {
	t.Run("linux uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ada", "")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/corkboard", got)
	})

	t.Run("linux falls back to ~/.config", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ada", "")
		t.Setenv("XDG_CONFIG_HOME", "")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ada/.config/corkboard", got)
	})

	t.Run("darwin uses user config dir", func(t *testing.T) {
		withPlatform(t, "darwin", "/Users/ada", "/Users/ada/Library/Application Support")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/Users/ada/Library/Application Support", "corkboard"), got)
	})
}

func TestDefaultDataDir(t *testing.T) {
	t.Run("linux uses XDG_DATA_HOME when set", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ada", "")
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/corkboard", got)
	})

	t.Run("linux falls back to ~/.local/share", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ada", "")
		t.Setenv("XDG_DATA_HOME", "")

		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ada/.local/share/corkboard", got)
	})

	t.Run("windows nests data under the config dir", func(t *testing.T) {
		withPlatform(t, "windows", "", "/appdata")

		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/appdata", "corkboard", "data"), got)
	})

	t.Run("home lookup failure is returned", func(t *testing.T) {
		withPlatform(t, "linux", "", "")
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		t.Setenv("XDG_DATA_HOME", "")

		_, err := DefaultDataDir()
		assert.EqualError(t, err, "no home")
	})
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{
			name:   "flag wins over env",
			flag:   "/explicit/config",
			envVal: "/env/config",
			want:   "/explicit/config",
		},
		{
			name:   "env wins when flag empty",
			envVal: "/env/config",
			want:   "/env/config",
		},
		{
			name: "platform default when both empty",
			want: "/home/ada/.config/corkboard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withPlatform(t, "linux", "/home/ada", "")
			t.Setenv("XDG_CONFIG_HOME", "")
			t.Setenv(EnvConfigDir, tt.envVal)

			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{
			name:        "flag wins over all",
			flag:        "/flag/data",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/flag/data",
		},
		{
			name:        "config.yaml wins over env",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/config/data",
		},
		{
			name:   "env wins when flag and config empty",
			envVal: "/env/data",
			want:   "/env/data",
		},
		{
			name: "platform default when all empty",
			want: "/home/ada/.local/share/corkboard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withPlatform(t, "linux", "/home/ada", "")
			t.Setenv("XDG_DATA_HOME", "")
			t.Setenv(EnvDataDir, tt.envVal)

			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRelativePathsBecomeAbsolute(t *testing.T) {
	t.Run("config flag", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("relative/path")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("config env", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "relative/env")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("data config value", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		got, err := ResolveDataDir("", "relative/config")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "config.yaml"), ConfigFile("/cfg"))
}
