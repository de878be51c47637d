package settings

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Mode    string `mapstructure:"mode"`
	Version string `mapstructure:"version"`
	Port    int    `mapstructure:"port"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	FileName   string `mapstructure:"file_name"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MysqlConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DbName       string `mapstructure:"db_name"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db_name"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SnowflakeConfig struct {
	StartTime string `mapstructure:"start_time"`
	MachineID int64  `mapstructure:"machine_id"`
}

type RateLimitConfig struct {
	FillInterval string `mapstructure:"fill_interval"`
	Capacity     int64  `mapstructure:"capacity"`
}

// ForumConfig carries the forum-specific tunables.
type ForumConfig struct {
	// Minimum interval between two posts by the same user. Zero disables
	// the throttle (useful in tests).
	LastPostMinimumTime time.Duration `mapstructure:"last_post_minimum_time"`
	ThreadsPerPage      int           `mapstructure:"threads_per_page"`
	PostsPerPage        int           `mapstructure:"posts_per_page"`
}

// SimilarityConfig describes the out-of-process audio similarity service
// and the client-side cache parameters.
type SimilarityConfig struct {
	// Server side (ops introspection only, the index lives in the
	// similarity service process).
	IndexDir      string   `mapstructure:"index_dir"`
	IndexName     string   `mapstructure:"index_name"`
	Presets       []string `mapstructure:"presets"`
	DefaultPreset string   `mapstructure:"default_preset"`
	MinimumPoints int      `mapstructure:"minimum_points"`

	// Client side.
	Address        string        `mapstructure:"address"`
	Port           int           `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CacheSize      int           `mapstructure:"cache_size"`
	CacheTime      time.Duration `mapstructure:"cache_time"`
	DefaultResults int           `mapstructure:"default_results"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type Config struct {
	App        *AppConfig        `mapstructure:"app"`
	Mysql      *MysqlConfig      `mapstructure:"mysql"`
	Redis      *RedisConfig      `mapstructure:"redis"`
	Log        *LogConfig        `mapstructure:"log"`
	Snowflake  *SnowflakeConfig  `mapstructure:"snowflake"`
	RateLimit  *RateLimitConfig  `mapstructure:"ratelimit"`
	Forum      *ForumConfig      `mapstructure:"forum"`
	Similarity *SimilarityConfig `mapstructure:"similarity"`
	RabbitMQ   *RabbitMQConfig   `mapstructure:"rabbitmq"`
}

// Conf is the process-wide configuration, populated by Init.
var Conf = new(Config)

// Init loads the configuration file and keeps Conf in sync with changes
// on disk.
func Init(filePath string) (err error) {
	viper.SetConfigFile(filePath)

	if err = viper.ReadInConfig(); err != nil {
		return fmt.Errorf("viper.ReadInConfig() failed: %w", err)
	}

	if err = viper.Unmarshal(Conf); err != nil {
		return fmt.Errorf("viper.Unmarshal() failed: %w", err)
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(in fsnotify.Event) {
		if err := viper.Unmarshal(Conf); err != nil {
			zap.L().Error("config reload failed", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("file", in.Name))
	})

	return
}
