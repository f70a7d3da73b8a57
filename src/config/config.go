package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig an empty Addr runs without Redis: in-process cache and worker pool.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AttendanceConfig struct {
	Timezone            string        `mapstructure:"timezone"`
	DefaultCutoff       string        `mapstructure:"default_cutoff"`
	AcceptanceThreshold float64       `mapstructure:"acceptance_threshold"`
	FusionWeight        float64       `mapstructure:"fusion_weight"`
	SignatureDims       int           `mapstructure:"signature_dims"`
	TodayLimit          int           `mapstructure:"today_limit"`
	SettingsTTL         time.Duration `mapstructure:"settings_ttl"`
}

type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	QueueSize   int           `mapstructure:"queue_size"`
	MaxRetry    int           `mapstructure:"max_retry"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	// EnqueueTimeout bounds the hand-off made while a mark request is still open.
	EnqueueTimeout time.Duration `mapstructure:"enqueue_timeout"`
}

// SeedConfig creates a demo roster on startup when Sample is set.
type SeedConfig struct {
	Sample     bool   `mapstructure:"sample"`
	Members    int    `mapstructure:"members"`
	OperatorID string `mapstructure:"operator_id"`
}

// Operator is the owner of the demo course: the configured id, or a fresh one when unset.
func (c SeedConfig) Operator() (primitive.ObjectID, error) {
	if c.OperatorID == "" {
		return primitive.NewObjectID(), nil
	}
	return primitive.ObjectIDFromHex(c.OperatorID)
}

// Location is the canonical zone session-days are cut in.
func (c AttendanceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads defaults, then an optional config file, then .env, then ATTEND_* variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ATTEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8888")
	v.SetDefault("server.allow_origins", "*")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "FaceAttendDB")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("attendance.timezone", "Asia/Bangkok")
	v.SetDefault("attendance.default_cutoff", "09:00")
	v.SetDefault("attendance.acceptance_threshold", 0.6)
	v.SetDefault("attendance.fusion_weight", 0.15)
	v.SetDefault("attendance.signature_dims", 128)
	v.SetDefault("attendance.today_limit", 100)
	v.SetDefault("attendance.settings_ttl", "5m")

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.task_timeout", "30s")
	v.SetDefault("worker.enqueue_timeout", "2s")

	v.SetDefault("seed.sample", false)
	v.SetDefault("seed.members", 30)
	v.SetDefault("seed.operator_id", "")
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("config: mongo.uri is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	a := c.Attendance
	if _, err := a.Location(); err != nil {
		return fmt.Errorf("config: attendance.timezone: %w", err)
	}
	if _, err := attendance.ParseCutoff(a.DefaultCutoff); err != nil {
		return fmt.Errorf("config: attendance.default_cutoff: %w", err)
	}
	if a.AcceptanceThreshold < 0 || a.AcceptanceThreshold > 1 {
		return fmt.Errorf("config: attendance.acceptance_threshold must be within [0,1]")
	}
	if a.FusionWeight <= 0 || a.FusionWeight > 1 {
		return fmt.Errorf("config: attendance.fusion_weight must be within (0,1]")
	}
	if a.SignatureDims <= 0 {
		return fmt.Errorf("config: attendance.signature_dims must be positive")
	}
	if a.TodayLimit <= 0 {
		return fmt.Errorf("config: attendance.today_limit must be positive")
	}
	if a.SettingsTTL < 0 {
		return fmt.Errorf("config: attendance.settings_ttl must not be negative")
	}
	if c.Worker.EnqueueTimeout <= 0 {
		return fmt.Errorf("config: worker.enqueue_timeout must be positive")
	}
	if c.Seed.Sample {
		if _, err := c.Seed.Operator(); err != nil {
			return fmt.Errorf("config: seed.operator_id: %w", err)
		}
	}
	return nil
}

// CoordinatorOptions maps the attendance section onto the engine options.
func (c *Config) CoordinatorOptions() (attendance.Options, error) {
	loc, err := c.Attendance.Location()
	if err != nil {
		return attendance.Options{}, err
	}
	opts := attendance.DefaultOptions()
	opts.Location = loc
	opts.DefaultCutoff = c.Attendance.DefaultCutoff
	opts.AcceptanceThreshold = c.Attendance.AcceptanceThreshold
	opts.FusionWeight = c.Attendance.FusionWeight
	opts.SignatureDims = c.Attendance.SignatureDims
	opts.TodayLimit = c.Attendance.TodayLimit
	opts.EnqueueTimeout = c.Worker.EnqueueTimeout
	return opts, nil
}
