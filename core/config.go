package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		Timezone         string
		LogLevel         string
		RollbarToken     string
		DefaultFromEmail mail.Address
		ReminderSchedule string // cron spec; empty disables the reminder job
		Server           ServerConfig
		Database         DatabaseConfig
		Redis            RedisConfig
		Email            EmailConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		DebugAddress       string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address     string // empty disables caching
		Password    string
		DB          int
		SettingsTTL time.Duration
	}

	EmailConfig struct {
		Backend        string // console, sendgrid, smtp
		SendgridApiKey string
		SMTPHost       string
		SMTPPort       int
		SMTPUsername   string
		SMTPPassword   string
	}
)

func (dbc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func init() {
	Conf = NewConfig(loadViper())
}

func loadViper() *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Ada")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "3x1$v-k0q@zp!hd^q9+ada=8$w7x%l2m#f0r!n6c_u4)t&e5jb")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("logLevel", "debug")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("defaultFromEmail", "Ada <noreply@localhost>")
	v.SetDefault("reminderSchedule", "0 8 * * *")

	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverDebugAddress", ":4000")
	v.SetDefault("serverReadTimeout", 5*time.Second)
	v.SetDefault("serverWriteTimeout", 10*time.Second)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "ada")
	v.SetDefault("dbUser", "ada")
	v.SetDefault("dbPassword", "ada")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("redisAddress", "")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("settingsCacheTTL", 10*time.Minute)

	v.SetDefault("emailBackend", "console")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("smtpHost", "localhost")
	v.SetDefault("smtpPort", 25)
	v.SetDefault("smtpUsername", "")
	v.SetDefault("smtpPassword", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("logLevel", "error")
		v.SetDefault("reminderSchedule", "")
	case "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("logLevel", "info")
		v.SetDefault("emailBackend", "sendgrid")
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(ProjectRoot(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()
	return v
}

// NewConfig builds a Config from the given viper instance.
func NewConfig(v *viper.Viper) *Config {
	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		from = &mail.Address{Address: v.GetString("defaultFromEmail")}
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              v.GetString("env"),
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		Timezone:         v.GetString("timezone"),
		LogLevel:         v.GetString("logLevel"),
		RollbarToken:     v.GetString("rollbarToken"),
		DefaultFromEmail: *from,
		ReminderSchedule: v.GetString("reminderSchedule"),
		Server: ServerConfig{
			Address:            v.GetString("serverAddress"),
			Host:               v.GetString("serverHost"),
			DebugAddress:       v.GetString("serverDebugAddress"),
			ReadTimeout:        v.GetDuration("serverReadTimeout"),
			WriteTimeout:       v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Redis: RedisConfig{
			Address:     v.GetString("redisAddress"),
			Password:    v.GetString("redisPassword"),
			DB:          v.GetInt("redisDB"),
			SettingsTTL: v.GetDuration("settingsCacheTTL"),
		},
		Email: EmailConfig{
			Backend:        v.GetString("emailBackend"),
			SendgridApiKey: v.GetString("sendgridApiKey"),
			SMTPHost:       v.GetString("smtpHost"),
			SMTPPort:       v.GetInt("smtpPort"),
			SMTPUsername:   v.GetString("smtpUsername"),
			SMTPPassword:   v.GetString("smtpPassword"),
		},
	}
}
