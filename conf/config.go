package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configName = "config"
	envPrefix  = "PLANTWATCH"
)

type Settings struct {
	Server   ServerSettings   `yaml:"server" mapstructure:"server"`
	Database DatabaseSettings `yaml:"database" mapstructure:"database"`
	Photos   PhotoSettings    `yaml:"photos" mapstructure:"photos"`
	Ingest   IngestSettings   `yaml:"ingest" mapstructure:"ingest"`
	Logging  LoggingSettings  `yaml:"logging" mapstructure:"logging"`
}

type ServerSettings struct {
	Listen          string        `yaml:"listen" mapstructure:"listen"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes" mapstructure:"maxbodybytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdowntimeout"`
}

type DatabaseSettings struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // sqlite or mysql
	Path     string `yaml:"path" mapstructure:"path"`     // sqlite file
	DSN      string `yaml:"dsn" mapstructure:"dsn"`       // mysql only
	SeedDemo bool   `yaml:"seedDemo" mapstructure:"seeddemo"`
}

type PhotoSettings struct {
	Root string `yaml:"root" mapstructure:"root"`
}

type IngestSettings struct {
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// RateLimit is the number of readings per second accepted per card.
	// Zero disables limiting.
	RateLimit float64 `yaml:"rateLimit" mapstructure:"ratelimit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

type LoggingSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var DefaultSettings = Settings{
	Server: ServerSettings{
		Listen:          ":5000",
		MaxBodyBytes:    8 << 20,
		ShutdownTimeout: 10 * time.Second,
	},
	Database: DatabaseSettings{
		Driver:   "sqlite",
		Path:     "plant_tracking.db",
		SeedDemo: true,
	},
	Photos: PhotoSettings{
		Root: "plant_photos",
	},
	Ingest: IngestSettings{
		Timezone: "Local",
		Burst:    5,
	},
	Logging: LoggingSettings{
		Level:  "info",
		Format: "console",
	},
}

// Load reads settings from configFile, or from config.yaml in the default
// search paths when configFile is empty. A missing config.yaml is created
// from DefaultSettings in the first search path.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		path := filepath.Join(searchPaths()[0], configName+".yaml")
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// WriteDefault writes DefaultSettings as YAML to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultSettings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

func (s *Settings) Validate() error {
	switch s.Database.Driver {
	case "sqlite":
		if s.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "mysql":
		if s.Database.DSN == "" {
			return errors.New("database.dsn is required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", s.Database.Driver)
	}
	if s.Photos.Root == "" {
		return errors.New("photos.root is required")
	}
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("ingest.timezone: %w", err)
	}
	if s.Ingest.RateLimit < 0 {
		return errors.New("ingest.rateLimit must not be negative")
	}
	return nil
}

// Location resolves the ingest timezone used for month keys.
func (s *Settings) Location() (*time.Location, error) {
	if s.Ingest.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Ingest.Timezone)
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.maxbodybytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.seeddemo", d.Database.SeedDemo)
	v.SetDefault("photos.root", d.Photos.Root)
	v.SetDefault("ingest.timezone", d.Ingest.Timezone)
	v.SetDefault("ingest.ratelimit", d.Ingest.RateLimit)
	v.SetDefault("ingest.burst", d.Ingest.Burst)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".plantwatch"))
	}
	return paths
}
