package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bookshelf/library"
)

const (
	EnvPrefix           = "BOOKSHELF"
	DefaultDatabasePath = "library.db"
	DefaultSchema       = library.SchemaCatalog
)

type (
	Config struct {
		Database
		Verbose bool
	}

	Database struct {
		Path   string
		Schema library.Schema
	}
)

// Load resolves configuration from, in increasing priority: defaults, an
// optional config file, the environment (BOOKSHELF_*, including a .env file in
// the working directory) and explicitly set flags.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.schema", string(DefaultSchema))
	v.SetDefault("verbose", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"database.path":   "db",
			"database.schema": "schema",
			"verbose":         "verbose",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	schema, err := library.ParseSchema(v.GetString("database.schema"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Database: Database{
			Path:   v.GetString("database.path"),
			Schema: schema,
		},
		Verbose: v.GetBool("verbose"),
	}, nil
}
