package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"

	_ "github.com/lib/pq"
)

type Config struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	DefaultRestaurant string        `mapstructure:"default_restaurant"`
	StaticDir         string        `mapstructure:"static_dir"`
	StaticBaseURL     string        `mapstructure:"static_base_url"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	DebounceWindow    time.Duration `mapstructure:"debounce_window"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBName     string `mapstructure:"db_name"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`

	RedisHost string `mapstructure:"redis_host"`
	RedisPort string `mapstructure:"redis_port"`

	KafkaBroker  string `mapstructure:"kafka_broker"`
	KafkaTopic   string `mapstructure:"kafka_topic"`
	KafkaGroupID string `mapstructure:"kafka_group_id"`
}

// LoadConfig reads an optional config file, layers environment variables on
// top (PORT, DB_HOST, ... match the lowercased keys) and fills defaults for
// everything else. A missing config file is fine; a malformed one is not.
func LoadConfig(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("default_restaurant", "spice-garden")
	v.SetDefault("static_dir", "./static")
	v.SetDefault("static_base_url", "")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("debounce_window", "450ms")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "qrmenu")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("kafka_broker", "localhost:9092")
	v.SetDefault("kafka_topic", "menu-events")
	v.SetDefault("kafka_group_id", "menu-stats")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&config, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &config, nil
}

func (c *Config) MustInitPostgres() *sql.DB {
	connStr := "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func (c *Config) MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: c.RedisHost + ":" + c.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func (c *Config) NewKafkaReader() *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{c.KafkaBroker},
		Topic:   c.KafkaTopic,
		GroupID: c.KafkaGroupID,
	})
}

func (c *Config) NewKafkaWriter() *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(c.KafkaBroker),
		Topic:    c.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
}
