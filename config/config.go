package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/scorekit/service"
	"github.com/rushteam/scorekit/validate"
)

// Config 是服务的配置结构（支持 YAML/JSON）。
//
// 示例（YAML）：
//
//	server:
//	  addr: ":8080"
//	  request_timeout: 10
//	log:
//	  level: info
//	  format: json
//	store:
//	  type: redis
//	  addr: "localhost:6379"
//	model:
//	  type: linear
//	  store_key: "model:ipl:v1"
//	rules:
//	  - name: run_rate_cap
//	    expr: "state.runs <= 36 * (int(state.overs) + 1)"
type Config struct {
	Server ServerConfig    `yaml:"server" json:"server"`
	Log    LogConfig       `yaml:"log" json:"log"`
	Teams  []string        `yaml:"teams" json:"teams"`   // 为空使用 core.DefaultTeams；顺序必须与模型一致
	Limits validate.Limits `yaml:"limits" json:"limits"` // 未写出的字段使用默认值
	Rules  []RuleConfig    `yaml:"rules" json:"rules"`
	Store  StoreConfig     `yaml:"store" json:"store"`
	Model  ModelConfig     `yaml:"model" json:"model"`
}

// ServerConfig 是 HTTP 服务配置
type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	RequestTimeout int      `yaml:"request_timeout" json:"request_timeout"` // 秒
	CORSOrigins    []string `yaml:"cors_origins" json:"cors_origins"`
}

// LogConfig 是日志配置
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug / info / warn / error
	Format string `yaml:"format" json:"format"` // text / json
}

// RuleConfig 是一条 CEL 守卫规则
type RuleConfig struct {
	Name string `yaml:"name" json:"name"`
	Expr string `yaml:"expr" json:"expr"`
}

// StoreConfig 是存储配置，仅在模型产物放在 Store 中时需要
type StoreConfig struct {
	Type     string `yaml:"type" json:"type"` // memory / redis
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// ModelConfig 是模型配置，Type 对应 Register 注册的构建器
type ModelConfig struct {
	Type         string                 `yaml:"type" json:"type"`           // linear / rpc / kserve / tf_serving / torchserve
	Path         string                 `yaml:"path" json:"path"`           // linear：JSON 文件
	StoreKey     string                 `yaml:"store_key" json:"store_key"` // linear：Store 中的 key
	Endpoint     string                 `yaml:"endpoint" json:"endpoint"`
	ModelName    string                 `yaml:"model_name" json:"model_name"`
	ModelVersion string                 `yaml:"model_version" json:"model_version"`
	Timeout      int                    `yaml:"timeout" json:"timeout"` // 秒
	Auth         *service.AuthConfig    `yaml:"auth" json:"auth"`
	Params       map[string]interface{} `yaml:"params" json:"params"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Limits: validate.DefaultLimits(),
		Store:  StoreConfig{Type: "memory"},
	}
}

// Load 从文件加载配置：按扩展名选择 YAML 或 JSON，再叠加环境变量，最后校验。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults 为留空的字段补默认值。
// limits 在解码前已由 Default() 填好，文件里未出现的 key 保持默认，显式写出的值（包括 0）原样保留。
func (c *Config) applyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// applyEnv 用环境变量覆盖部署相关的配置
func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("SCOREKIT_ADDR", c.Server.Addr)
	c.Log.Level = getEnv("SCOREKIT_LOG_LEVEL", c.Log.Level)
	c.Store.Addr = getEnv("SCOREKIT_REDIS_ADDR", c.Store.Addr)
	c.Store.Password = getEnv("SCOREKIT_REDIS_PASSWORD", c.Store.Password)
	c.Store.DB = getEnvInt("SCOREKIT_REDIS_DB", c.Store.DB)
	c.Model.Endpoint = getEnv("SCOREKIT_MODEL_ENDPOINT", c.Model.Endpoint)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Limits.MinOvers > c.Limits.MaxOvers {
		return fmt.Errorf("limits.min_overs %.1f > limits.max_overs %.1f", c.Limits.MinOvers, c.Limits.MaxOvers)
	}
	if c.Limits.MaxRuns < 0 || c.Limits.MaxWickets < 0 {
		return fmt.Errorf("limits must be non-negative")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	switch c.Store.Type {
	case "memory":
	case "redis":
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for redis")
		}
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	if c.Model.Type == "" {
		return fmt.Errorf("model.type is required, supported: %s", strings.Join(SupportedTypes(), ", "))
	}
	for i, r := range c.Rules {
		if r.Name == "" || r.Expr == "" {
			return fmt.Errorf("rules[%d]: name and expr are required", i)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
