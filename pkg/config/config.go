package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type MongoConfig struct {
	URL    string `mapstructure:"url"`
	DBName string `mapstructure:"dbname"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type SessionConfig struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
}

func (c *Config) Validate() error {
	if c.Mongo.URL == "" || c.Mongo.DBName == "" {
		return errors.New("mongo configuration is incomplete")
	}
	if c.MySQL.DSN == "" {
		return errors.New("mysql dsn is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis url is required")
	}
	if c.Session.PublicKeyPath == "" {
		return errors.New("session public key path is required")
	}
	return nil
}

// Load reads config.yaml from ./configs or the working directory. The
// environment variables listed below override file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbname", "blog")
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Nested keys do not surface through Unmarshal with AutomaticEnv
	// alone; each override needs an explicit binding.
	v.BindEnv("server.addr", "SERVER_ADDR")
	v.BindEnv("mongo.url", "MONGO_URL")
	v.BindEnv("mongo.dbname", "MONGO_DBNAME")
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("session.public_key_path", "SESSION_PUBLIC_KEY_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
