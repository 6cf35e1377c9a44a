package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvInfo service names, ports, yaml and log locations from .env
type EnvInfo struct {
	ChatService     string
	MemberService   string
	PlannerService  string
	MaterialService string

	ChatServiceYAMLPath     string
	MemberServiceYAMLPath   string
	PlannerServiceYAMLPath  string
	MaterialServiceYAMLPath string

	ChatServiceLogPath     string
	MemberServiceLogPath   string
	PlannerServiceLogPath  string
	MaterialServiceLogPath string

	JWTSecret string
}

// EnvConfig loaded once at start up
var (
	EnvConfig = initEnv()
	envConfig EnvInfo
	once      sync.Once
	env       string
)

func initEnv() EnvInfo {
	once.Do(func() {
		loadDotEnv()

		env = os.Getenv("ENV")

		envConfig = EnvInfo{
			ChatService:     getEnv("CHAT_SERVICE", "chat_service"),
			MemberService:   getEnv("MEMBER_SERVICE", "member_service"),
			PlannerService:  getEnv("PLANNER_SERVICE", "planner_service"),
			MaterialService: getEnv("MATERIAL_SERVICE", "material_service"),

			ChatServiceYAMLPath:     getEnv("CHAT_SERVICE_YAML", "./configs"),
			MemberServiceYAMLPath:   getEnv("MEMBER_SERVICE_YAML", "./configs"),
			PlannerServiceYAMLPath:  getEnv("PLANNER_SERVICE_YAML", "./configs"),
			MaterialServiceYAMLPath: getEnv("MATERIAL_SERVICE_YAML", "./configs"),

			ChatServiceLogPath:     getEnv("CHAT_SERVICE_LOG", "./logs/chat"),
			MemberServiceLogPath:   getEnv("MEMBER_SERVICE_LOG", "./logs/member"),
			PlannerServiceLogPath:  getEnv("PLANNER_SERVICE_LOG", "./logs/planner"),
			MaterialServiceLogPath: getEnv("MATERIAL_SERVICE_LOG", "./logs/material"),

			JWTSecret: os.Getenv("JWT_SECRET"),
		}
	})

	return envConfig
}

func loadDotEnv() {
	path, err := GetPath(".env", 5)
	if err != nil {
		log.Printf("Warning: Could not get .env path: %v", err)
		return
	}

	if err := godotenv.Load(path); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsProduction check run env
func IsProduction() bool {
	return env == "production"
}

// IsLocal check run env
func IsLocal() bool {
	return env == "local"
}

// LoadConfig reads <serviceName>.yaml from configPath, expands ${VAR}
// placeholders from the environment and unmarshals into T
func LoadConfig[T any](serviceName string, configPath string) T {
	cfg, err := ReadConfig[T](serviceName, configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

// ReadConfig same as LoadConfig but returns the error
func ReadConfig[T any](serviceName string, configPath string) (T, error) {
	var cfg T

	v := viper.New()
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	rawConfig, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		return cfg, fmt.Errorf("read raw config file: %w", err)
	}

	// ${} placeholders are replaced before the second parse
	expandedConfig := os.ExpandEnv(string(rawConfig))

	if err := v.ReadConfig(bytes.NewBufferString(expandedConfig)); err != nil {
		return cfg, fmt.Errorf("read expanded config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// GetRedisSetting collects REDIS_MASTER_NAME and every REDIS_SENTINEL*_IP / _PORT pair
func GetRedisSetting() (string, []string) {
	var (
		masterName    string
		sentinelAddrs []string
	)

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := parts[0], parts[1]

		if strings.HasPrefix(key, "REDIS_SENTINEL") && strings.HasSuffix(key, "_IP") {
			portKey := strings.Replace(key, "_IP", "_PORT", 1)
			port := os.Getenv(portKey)
			if port != "" {
				sentinelAddrs = append(sentinelAddrs, fmt.Sprintf("%s:%s", value, port))
			}
		}
	}

	masterName = getEnv("REDIS_MASTER_NAME", "mymaster")

	return masterName, sentinelAddrs
}

// GetPath use fileName loop maxCount find file path
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + " can't find path")
}
