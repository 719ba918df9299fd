package config

import (
	"fmt"
	"log"
	"os"
	"time"

	postgresStorage "github.com/Badsnus/qr-styler-bot/internal/adapters/database/postgres"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/redis"
	"github.com/Badsnus/qr-styler-bot/pkg/logger"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database   *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
}

// QR holds the rendering and export settings.
type QR struct {
	DefaultSize    int
	MinSize        int
	MaxSize        int
	HighResScale   int
	ExportDir      string
	CleanupDelay   time.Duration
	MaxLogoBytes   int64
	SessionTTL     time.Duration
	InputTimeout   time.Duration
	PresetsPerUser int64
	PreviewIdle    time.Duration
	PreviewSweep   time.Duration
}

func setDefaults() {
	viper.SetDefault("settings.timezone", "UTC")
	viper.SetDefault("settings.logs-dir", "logs")

	viper.SetDefault("settings.qr.default-size", 300)
	viper.SetDefault("settings.qr.min-size", 100)
	viper.SetDefault("settings.qr.max-size", 1000)
	viper.SetDefault("settings.qr.hr-scale", 3)
	viper.SetDefault("settings.qr.export-dir", "exports")
	viper.SetDefault("settings.qr.cleanup-delay", 1200*time.Millisecond)
	viper.SetDefault("settings.qr.max-logo-bytes", 5<<20)
	viper.SetDefault("settings.qr.session-ttl", 30*24*time.Hour)
	viper.SetDefault("settings.qr.input-timeout", 5*time.Minute)
	viper.SetDefault("settings.qr.presets-per-user", 20)
	viper.SetDefault("settings.qr.preview-idle", time.Hour)
	viper.SetDefault("settings.qr.preview-sweep", 10*time.Minute)

	viper.SetDefault("service.redis.port", "6379")
	viper.SetDefault("service.database.port", 5432)
	viper.SetDefault("service.smtp.port", 587)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := os.Setenv("BOT_TOKEN", viper.GetString("bot.token")); err != nil {
		panic(err)
	}
}

// GetQR reads the settings.qr section. Broken bounds are repaired so the
// size clamp always has a valid range.
func GetQR() QR {
	cfg := QR{
		DefaultSize:    viper.GetInt("settings.qr.default-size"),
		MinSize:        viper.GetInt("settings.qr.min-size"),
		MaxSize:        viper.GetInt("settings.qr.max-size"),
		HighResScale:   viper.GetInt("settings.qr.hr-scale"),
		ExportDir:      viper.GetString("settings.qr.export-dir"),
		CleanupDelay:   viper.GetDuration("settings.qr.cleanup-delay"),
		MaxLogoBytes:   viper.GetInt64("settings.qr.max-logo-bytes"),
		SessionTTL:     viper.GetDuration("settings.qr.session-ttl"),
		InputTimeout:   viper.GetDuration("settings.qr.input-timeout"),
		PresetsPerUser: viper.GetInt64("settings.qr.presets-per-user"),
		PreviewIdle:    viper.GetDuration("settings.qr.preview-idle"),
		PreviewSweep:   viper.GetDuration("settings.qr.preview-sweep"),
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = 1
	}
	if cfg.MaxSize < cfg.MinSize {
		cfg.MaxSize = cfg.MinSize
	}
	if cfg.DefaultSize < cfg.MinSize || cfg.DefaultSize > cfg.MaxSize {
		cfg.DefaultSize = cfg.MinSize
	}
	if cfg.HighResScale <= 0 {
		cfg.HighResScale = 3
	}
	if cfg.PreviewSweep <= 0 {
		cfg.PreviewSweep = 10 * time.Minute
	}
	return cfg
}

func Get() *Config {
	initConfig()

	location, err := time.LoadLocation(viper.GetString("settings.timezone"))
	if err != nil {
		panic(err)
	}

	err = logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location,
		LogToFile:    viper.GetBool("settings.log-to-file"),
		LogsDir:      viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	gormConfig := &gorm.Config{TranslateError: true}
	if viper.GetBool("settings.debug") {
		gormConfig.Logger = gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=%s",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		location.String(),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	qrCfg := GetQR()
	redisClient, err := redis.New(redis.Options{
		Host:       viper.GetString("service.redis.host"),
		Port:       viper.GetString("service.redis.port"),
		Password:   viper.GetString("service.redis.password"),
		SessionTTL: qrCfg.SessionTTL,
		StateTTL:   qrCfg.InputTimeout,
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	smtpDialer := gomail.NewDialer(
		viper.GetString("service.smtp.host"),
		viper.GetInt("service.smtp.port"),
		viper.GetString("service.smtp.email"),
		viper.GetString("service.smtp.password"),
	)

	return &Config{
		Database:   database,
		Redis:      redisClient,
		SMTPDialer: smtpDialer,
	}
}
