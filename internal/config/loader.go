package config

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/db"
)

// Server holds the HTTP server settings.
type Server struct {
	Addr           string
	AllowedOrigins []string
	MigrationsDir  string
}

// Config is the full application configuration.
type Config struct {
	Database db.Config
	Server   Server
}

// DefaultServer returns the default HTTP server settings.
func DefaultServer() Server {
	return Server{
		Addr:           ":8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		MigrationsDir:  "./migrations",
	}
}

// Load reads config.yaml from configPath, falling back to defaults plus
// environment overrides (GAMEDEX_DATABASE_HOST and friends).
func Load(configPath string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Config{
		Database: db.DefaultConfig(),
		Server:   DefaultServer(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("GAMEDEX")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")

	if err := v.ReadInConfig(); err != nil {
		logger.Info("no config.yaml found, using defaults and env vars",
			zap.String("path", configPath))
	} else {
		logger.Info("loaded config.yaml", zap.String("file", v.ConfigFileUsed()))
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.migrations_dir") {
		cfg.Server.MigrationsDir = v.GetString("server.migrations_dir")
	}

	return cfg, nil
}
