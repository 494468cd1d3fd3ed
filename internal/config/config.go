package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mkessel/karakeep-sync/internal/notes"
)

// Config holds all configuration for the tool. Values are read by viper
// from config.yaml or environment variables; a .env file is loaded first.
type Config struct {
	ServerURL       string `mapstructure:"KARAKEEP_SERVER_URL"`
	APIKey          string `mapstructure:"KARAKEEP_API_KEY"`
	SyncDir         string `mapstructure:"SYNC_DIR"`
	AttachmentsDir  string `mapstructure:"ATTACHMENTS_DIR"`
	FileFormat      string `mapstructure:"FILE_FORMAT"`
	UpdateExisting  bool   `mapstructure:"UPDATE_EXISTING"`
	ExcludeArchived bool   `mapstructure:"EXCLUDE_ARCHIVED"`
	OnlyFavorites   bool   `mapstructure:"ONLY_FAVORITES"`
	DownloadAssets  bool   `mapstructure:"DOWNLOAD_ASSETS"`
	DBPath          string `mapstructure:"DB_PATH"`
	IndexPath       string `mapstructure:"INDEX_PATH"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`

	// Format is the parsed FILE_FORMAT.
	Format notes.Format `mapstructure:"-"`
}

// Load reads configuration from {path}/config.yaml and the environment.
func Load(path string) (Config, error) {
	// .env values become plain environment variables before viper looks.
	godotenv.Load(filepath.Join(path, ".env"))
	godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Registering defaults also registers the keys for AutomaticEnv.
	v.SetDefault("KARAKEEP_SERVER_URL", "")
	v.SetDefault("KARAKEEP_API_KEY", "")
	v.SetDefault("SYNC_DIR", "")
	v.SetDefault("ATTACHMENTS_DIR", "")
	v.SetDefault("FILE_FORMAT", "org")
	v.SetDefault("UPDATE_EXISTING", false)
	v.SetDefault("EXCLUDE_ARCHIVED", true)
	v.SetDefault("ONLY_FAVORITES", false)
	v.SetDefault("DOWNLOAD_ASSETS", false)
	v.SetDefault("DB_PATH", "")
	v.SetDefault("INDEX_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		// No config file; environment variables may still carry everything.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if config.ServerURL == "" {
		return Config{}, fmt.Errorf("KARAKEEP_SERVER_URL is not set")
	}
	if config.APIKey == "" {
		return Config{}, fmt.Errorf("KARAKEEP_API_KEY is not set")
	}
	if config.SyncDir == "" {
		return Config{}, fmt.Errorf("SYNC_DIR is not set")
	}

	format, err := notes.ParseFormat(config.FileFormat)
	if err != nil {
		return Config{}, err
	}
	config.Format = format

	if config.AttachmentsDir == "" {
		config.AttachmentsDir = filepath.Join(config.SyncDir, "attachments")
	}
	if config.DBPath == "" {
		config.DBPath = filepath.Join(config.SyncDir, ".karakeep-sync.db")
	}
	if config.IndexPath == "" {
		config.IndexPath = filepath.Join(config.SyncDir, ".karakeep-index.bleve")
	}

	return config, nil
}
