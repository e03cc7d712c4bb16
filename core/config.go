package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SUNRISE"

type (
	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		School   SchoolConfig
		Session  SessionConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | inmem
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	SchoolConfig struct {
		Name          string
		Address       string
		Tagline       string
		Session       string
		AffiliationNo string
		PublicURL     string
		Timezone      string
	}

	SessionConfig struct {
		File string
	}
)

func (db DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", db.Host, db.Port)
}

// Location returns the school's time zone, UTC if it cannot be loaded.
func (sc SchoolConfig) Location() *time.Location {
	loc, err := time.LoadLocation(sc.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Sunrise")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3v8-gq)t0ld$+93=ab&yrrx1(m!w)#*d7(#pz5h^$fuek7snq")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sunrise")
	v.SetDefault("database.password", "sunrise")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.name", "sunrise")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("school.name", "Sunrise Public School")
	v.SetDefault("school.address", "NH-28, Main Road, Patna, Bihar - 800001")
	v.SetDefault("school.tagline", "Learning • Discipline • Excellence")
	v.SetDefault("school.session", "2024-25")
	v.SetDefault("school.affiliationNo", "")
	v.SetDefault("school.publicURL", "http://localhost:3000")
	v.SetDefault("school.timezone", "Asia/Kolkata")

	home, _ := os.UserHomeDir()
	v.SetDefault("session.file", filepath.Join(home, ".sunrise", "session.json"))
}

// NewConfig loads the configuration of the current ENV (DEV by default).
// Values come from defaults, then `config/.env.<env>` if present, then SUNRISE_* env vars.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "inmem")
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		School: SchoolConfig{
			Name:          v.GetString("school.name"),
			Address:       v.GetString("school.address"),
			Tagline:       v.GetString("school.tagline"),
			Session:       v.GetString("school.session"),
			AffiliationNo: v.GetString("school.affiliationNo"),
			PublicURL:     v.GetString("school.publicURL"),
			Timezone:      v.GetString("school.timezone"),
		},
		Session: SessionConfig{
			File: v.GetString("session.file"),
		},
	}
}
