package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Auth       AuthConfig       `yaml:"auth"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string      `yaml:"driver"`
	Mongo  MongoConfig `yaml:"mongo"`
	MySQL  MySQLConfig `yaml:"mysql"`
}

type MongoConfig struct {
	URI string `yaml:"uri"`
	DB  string `yaml:"db"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type LLMConfig struct {
	BaseURL string        `yaml:"base_url"`
	Path    string        `yaml:"path"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type ClassifierConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000},
		Log:    LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{
			Driver: DriverMongo,
			Mongo:  MongoConfig{URI: "mongodb://localhost:27017", DB: "study_plan"},
			MySQL:  MySQLConfig{Host: "127.0.0.1", Port: 3306, Name: "study_plan"},
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com",
			Path:    "/v1/chat/completions",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Classifier: ClassifierConfig{URL: "http://localhost:8001/predict/", Timeout: 30 * time.Second},
		Auth:       AuthConfig{JWTSecret: "study-plan-dev-secret", TokenTTL: 7 * 24 * time.Hour},
	}
}

// Load reads defaults, then the YAML file, then .env and the process
// environment, later sources winning.
func Load(configFile string) *Config {
	c := Default()

	paths := []string{"etc/config-dev.yaml", "/etc/study-plan/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	// godotenv.Load never overrides variables already set in the environment.
	_ = godotenv.Load()

	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.Mongo.URI, "MONGO_URI")
	envOverride(&c.Database.Mongo.DB, "MONGO_DB")
	envOverride(&c.Database.MySQL.Host, "MYSQL_HOST")
	envOverride(&c.Database.MySQL.User, "MYSQL_USER")
	envOverride(&c.Database.MySQL.Password, "MYSQL_PASS")
	envOverride(&c.Database.MySQL.Name, "MYSQL_DB")
	envOverride(&c.LLM.BaseURL, "LLM_BASE_URL")
	envOverride(&c.LLM.APIKey, "LLM_API_KEY")
	envOverride(&c.LLM.Model, "LLM_MODEL")
	envOverride(&c.Classifier.URL, "CLASSIFIER_URL")
	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.MySQL.Port, "MYSQL_PORT")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	m := c.Database.MySQL
	cfg := gomysql.NewConfig()
	cfg.User = m.User
	cfg.Passwd = m.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", m.Host, m.Port)
	cfg.DBName = m.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
