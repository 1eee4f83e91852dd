package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		User          string
		Password      string
		Host          string
		Port          string
		Name          string
		DisableTLS    bool
		AdminUser     string
		AdminPassword string
	}

	RedisConfig struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}

	StorageConfig struct {
		Driver             string // memory | oss
		OSSEndpoint        string
		OSSAccessKeyID     string
		OSSAccessKeySecret string
		OSSBucket          string
		OSSPrefix          string
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		WorkDir          string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Storage  StorageConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the application configuration from the environment.
// ENV selects the variable prefix (DEV by default) and the optional config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "MyAcademy")
	v.SetDefault("secretKey", "v6q!t0x2@m8#academy-dev-secret-key$r5w&kz3p")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail.name", "MyAcademy")
	v.SetDefault("defaultFromEmail.address", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 30*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 14*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.user", "myacademy")
	v.SetDefault("database.password", "myacademy")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "myacademy")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "myacademy")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.ossEndpoint", "")
	v.SetDefault("storage.ossAccessKeyID", "")
	v.SetDefault("storage.ossAccessKeySecret", "")
	v.SetDefault("storage.ossBucket", "")
	v.SetDefault("storage.ossPrefix", "academies")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		WorkDir:         workDir,
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromEmail.name"),
			Address: v.GetString("defaultFromEmail.address"),
		},
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis.addr"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.keyPrefix"),
		},
		Storage: StorageConfig{
			Driver:             v.GetString("storage.driver"),
			OSSEndpoint:        v.GetString("storage.ossEndpoint"),
			OSSAccessKeyID:     v.GetString("storage.ossAccessKeyID"),
			OSSAccessKeySecret: v.GetString("storage.ossAccessKeySecret"),
			OSSBucket:          v.GetString("storage.ossBucket"),
			OSSPrefix:          v.GetString("storage.ossPrefix"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no files, no environment lookups.
func NewTestConfig() *Config {
	return &Config{
		Debug:            false,
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "MyAcademy",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "MyAcademy", Address: "noreply@localhost"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			JWTExpirationDelta:        30 * time.Minute,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
		Redis:   RedisConfig{KeyPrefix: "test"},
		Storage: StorageConfig{Driver: "memory", OSSPrefix: "academies"},
	}
}
