package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sushihentaime/blogstack/internal/blogservice"
	"github.com/sushihentaime/blogstack/internal/common"
	"github.com/sushihentaime/blogstack/internal/mailservice"
	"github.com/sushihentaime/blogstack/internal/metrics"
	"github.com/sushihentaime/blogstack/internal/uploadservice"
	"github.com/sushihentaime/blogstack/internal/userservice"
)

type application struct {
	config        *Config
	logger        *slog.Logger
	userService   *userservice.UserService
	blogService   *blogservice.BlogService
	uploadService *uploadservice.UploadService
	mailService   *mailservice.MailService
	broker        *common.MessageBroker
	metrics       *metrics.Manager
	registry      prometheus.Gatherer
}

func main() {
	configPath := flag.String("config", ".env", "path to the dotenv config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := common.NewLogger(common.LoggerParams{
		Level:       cfg.LogLevel,
		FileName:    cfg.LogFile,
		ToStdout:    cfg.LogToStdout,
		FormatJSON:  cfg.LogFormatJSON,
		Environment: cfg.Environment,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	db, err := common.NewDB(common.DBConfig{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		MaxOpenConns: 25,
		MaxIdleConns: 25,
		MaxIdleTime:  15 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer common.CloseDB(db)

	if cfg.DBAutoMigrate {
		if err := common.MigrateDB(db, "file://migrations"); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	broker, err := common.NewMessageBroker(common.AMQPURI(cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort))
	if err != nil {
		return fmt.Errorf("failed to connect to the message broker: %w", err)
	}
	defer broker.Close()

	if err := common.SetupUserExchange(broker); err != nil {
		return fmt.Errorf("failed to setup the user exchange: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	verifier, err := newIdentityVerifier(context.Background(), cfg)
	if err != nil {
		return err
	}

	app, err := newApplication(context.Background(), cfg, logger, db, broker, verifier, reg)
	if err != nil {
		return err
	}

	if err := app.mailService.SendWelcomeEmail(); err != nil {
		return fmt.Errorf("failed to start the welcome mail consumer: %w", err)
	}
	defer app.mailService.Close()

	return app.serve()
}

// newIdentityVerifier prefers Firebase ID tokens, which is what the web client signs in
// with, and falls back to plain Google ID tokens for the configured OAuth client.
func newIdentityVerifier(ctx context.Context, cfg *Config) (userservice.IdentityVerifier, error) {
	if cfg.FirebaseProjectID != "" {
		return userservice.NewFirebaseVerifier(cfg.FirebaseProjectID, &http.Client{Timeout: 10 * time.Second})
	}

	return userservice.NewGoogleVerifier(ctx, cfg.GoogleClientID)
}

// newApplication builds every service on top of already opened connections.
func newApplication(ctx context.Context, cfg *Config, logger *slog.Logger, db *sql.DB, broker *common.MessageBroker, verifier userservice.IdentityVerifier, reg *prometheus.Registry) (*application, error) {
	m := metrics.NewManager("blogstack", "server", reg)

	tokens, err := userservice.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	uploads, err := uploadservice.NewUploadService(ctx, uploadservice.Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}

	cache := common.NewCache(time.Minute, 5*time.Minute)

	app := &application{
		config: cfg,
		logger: logger,
		userService: userservice.NewUserService(db, broker, tokens, verifier, logger,
			userservice.WithSignupHook(func(method string) {
				m.CounterSignups.WithLabelValues(method).Inc()
			}),
		),
		blogService: blogservice.NewBlogService(db, cache,
			blogservice.WithCreateHook(func(draft bool) {
				m.CounterBlogsCreated.WithLabelValues(strconv.FormatBool(draft)).Inc()
			}),
		),
		uploadService: uploads,
		mailService: mailservice.NewMailService(broker, mailservice.Config{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUser,
			Password: cfg.MailPassword,
			Sender:   cfg.MailSender,
		}, logger, mailservice.WithResultHook(func(outcome string) {
			m.CounterWelcomeMails.WithLabelValues(outcome).Inc()
		})),
		broker:   broker,
		metrics:  m,
		registry: reg,
	}

	return app, nil
}
