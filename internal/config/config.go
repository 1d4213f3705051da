package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации хоста региона.

type Config struct {
	Region   RegionConfig   `yaml:"region"`
	Server   ServerConfig   `yaml:"server"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
}

// RegionConfig описывает регион, который обслуживает этот хост.
type RegionConfig struct {
	ID        string `yaml:"id"`   // UUID региона; пустое значение — сгенерировать
	Name      string `yaml:"name"` // Человекочитаемое имя региона
	LocationX uint32 `yaml:"location_x"`
	LocationY uint32 `yaml:"location_y"`
	Seed      int64  `yaml:"seed"` // Сид генерации ландшафта
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`    // nats://127.0.0.1:4222; пусто — in-memory шина
	Stream    string `yaml:"stream"` // Имя JetStream стрима
	Retention int    `yaml:"retention_hours"`
}

type CacheConfig struct {
	RedisAddr string `yaml:"redis_addr"` // host:port; пусто — in-memory кеш
	RedisDB   int    `yaml:"redis_db"`
}

type StorageConfig struct {
	DataPath string `yaml:"data_path"` // Директория BadgerDB; пусто — без персистентности
}

// RegionInfo метаданные региона, передаваемые наблюдателям рестарта
// и наружу через REST API.
type RegionInfo struct {
	RegionID   uuid.UUID `json:"region_id"`
	RegionName string    `json:"region_name"`
	LocationX  uint32    `json:"location_x"`
	LocationY  uint32    `json:"location_y"`
}

// RegionInfo собирает метаданные региона из конфигурации.
// Невалидный или пустой UUID заменяется случайным.
func (c *Config) RegionInfo() RegionInfo {
	id, err := uuid.Parse(c.Region.ID)
	if err != nil {
		id = uuid.New()
	}
	name := c.Region.Name
	if name == "" {
		name = "region"
	}
	return RegionInfo{
		RegionID:   id,
		RegionName: name,
		LocationX:  c.Region.LocationX,
		LocationY:  c.Region.LocationY,
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "REGION_REST_PORT", 9000)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "REGION_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV REGION_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("REGION_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	return &cfg, nil
}
