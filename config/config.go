package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	WSAddress      string `mapstructure:"ws_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	// Driver selects the persistence backend: "memory" (default),
	// "postgres" (database/sql) or "gorm".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig carries optional overrides for the role base points. When a
// value is zero the built-in default applies (Chor is always zero).
type GameConfig struct {
	RajaPoints   int `mapstructure:"raja_points"`
	MantriPoints int `mapstructure:"mantri_points"`
	SipahiPoints int `mapstructure:"sipahi_points"`

	// Seconds between scheduler passes over gauges / idle sessions.
	SampleIntervalSec int `mapstructure:"sample_interval_sec"`
	SessionIdleSec    int `mapstructure:"session_idle_sec"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.ws_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("game.sample_interval_sec", 10)
	viper.SetDefault("game.session_idle_sec", 120)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
