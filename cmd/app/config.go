package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`

	DBHost        string `mapstructure:"POSTGRES_HOST"`
	DBPort        string `mapstructure:"POSTGRES_PORT"`
	DBUser        string `mapstructure:"POSTGRES_USER"`
	DBPassword    string `mapstructure:"POSTGRES_PASSWORD"`
	DBName        string `mapstructure:"POSTGRES_DB"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	GoogleClientID    string `mapstructure:"GOOGLE_CLIENT_ID"`
	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`

	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogToStdout   bool   `mapstructure:"LOG_TO_STDOUT"`
	LogFormatJSON bool   `mapstructure:"LOG_FORMAT_JSON"`
}

var defaults = map[string]any{
	"PORT":                  "4000",
	"ENVIRONMENT":           "development",
	"VERSION":               "1.0.0",
	"TRUSTED_ORIGINS":       "",
	"POSTGRES_HOST":         "localhost",
	"POSTGRES_PORT":         "5432",
	"POSTGRES_USER":         "",
	"POSTGRES_PASSWORD":     "",
	"POSTGRES_DB":           "blogstack",
	"DB_AUTO_MIGRATE":       false,
	"JWT_SECRET":            "",
	"JWT_TTL":               "0s",
	"GOOGLE_CLIENT_ID":      "",
	"FIREBASE_PROJECT_ID":   "",
	"AWS_REGION":            "us-east-1",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"S3_BUCKET":             "",
	"S3_ENDPOINT":           "",
	"RABBITMQ_HOST":         "localhost",
	"RABBITMQ_PORT":         "5672",
	"RABBITMQ_USER":         "guest",
	"RABBITMQ_PASSWORD":     "guest",
	"MAIL_HOST":             "",
	"MAIL_PORT":             587,
	"MAIL_USER":             "",
	"MAIL_PASSWORD":         "",
	"MAIL_SENDER":           "",
	"LOG_LEVEL":             "info",
	"LOG_FILE":              "",
	"LOG_TO_STDOUT":         true,
	"LOG_FORMAT_JSON":       false,
}

var errMissingJWTSecret = errors.New("JWT_SECRET must be set")

// loadConfig reads the dotenv file at path. Environment variables override the file, and
// a missing file leaves the environment as the only source.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.JWTSecret == "" {
		return nil, errMissingJWTSecret
	}

	return &config, nil
}
