// Config loading for the corkboard CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/corkboard/internal/paths"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyLogLevel       = "log_level"
	cfgKeyTrelloAPIKey   = "trello.api_key"
	cfgKeyTrelloToken    = "trello.token"
	cfgKeySnapshotAuthor = "snapshot.author_name"
	cfgKeySnapshotEmail  = "snapshot.author_email"

	envPrefix = "CORKBOARD"
)

// envBoundKeys may be overridden by CORKBOARD_* environment variables
// (dots become underscores). data_dir is left out so that paths.ResolveDataDir
// alone decides between config and CORKBOARD_DATA_DIR.
var envBoundKeys = []string{
	cfgKeyBackend,
	cfgKeyLogLevel,
	cfgKeyTrelloAPIKey,
	cfgKeyTrelloToken,
	cfgKeySnapshotAuthor,
	cfgKeySnapshotEmail,
}

// configFile holds the structure written to config.yaml on first run.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

const configHeader = "# corkboard configuration\n" +
	"# Optional keys: data_dir, log_level, trello.api_key, trello.token,\n" +
	"# snapshot.author_name, snapshot.author_email.\n"

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run, recording
// dataDir when one was given.
func loadConfig(configDir, dataDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), dataDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	for _, key := range envBoundKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// envName maps a config key such as trello.api_key to CORKBOARD_TRELLO_API_KEY.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(path, dataDir string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if dataDir != "" {
		if dataDir, err = filepath.Abs(dataDir); err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
	}
	data, err := yaml.Marshal(&configFile{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
