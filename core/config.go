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
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		SendgridApiKey   string
		RollbarToken     string
		defaultFromEmail string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Google   GoogleConfig
		Mux      MuxConfig
	}

	ServerConfig struct {
		Host                   string
		DebugHost              string
		ShutdownTimeout        time.Duration
		SessionExpirationDelta time.Duration
		SecureCookies          bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
		LogQueries    bool
	}

	RedisConfig struct {
		Addr     string // empty disables the cache and the shared mutation lock
		Password string
		DB       int
		CacheTTL time.Duration
		LockTTL  time.Duration
	}

	GoogleConfig struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}

	MuxConfig struct {
		WebhookSecret  string
		ThumbnailWidth int
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// NewConfig reads the configuration from the environment, prefixed with the value of ENV
// (DEV by default): e.g. DEV_DATABASE_NAME. `config/.env.<env>` is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.name", "profeweb_test")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:                   v.GetString("server.host"),
			DebugHost:              v.GetString("server.debugHost"),
			ShutdownTimeout:        v.GetDuration("server.shutdownTimeout"),
			SessionExpirationDelta: v.GetDuration("server.sessionExpirationDelta"),
			SecureCookies:          v.GetBool("server.secureCookies"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			LogQueries:    v.GetBool("database.logQueries"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cacheTTL"),
			LockTTL:  v.GetDuration("redis.lockTTL"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.clientID"),
			ClientSecret: v.GetString("google.clientSecret"),
			RedirectURL:  v.GetString("google.redirectURL"),
		},
		Mux: MuxConfig{
			WebhookSecret:  v.GetString("mux.webhookSecret"),
			ThumbnailWidth: v.GetInt("mux.thumbnailWidth"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Profe Web")
	v.SetDefault("secretKey", "k2v#x!9d0w@r7p-y^l4u(3o)sj8q+e=zb6nh1t&gf5mci_a")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.secureCookies", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "profeweb")
	v.SetDefault("database.password", "profeweb")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.name", "profeweb")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.logQueries", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cacheTTL", 10*time.Minute)
	v.SetDefault("redis.lockTTL", time.Minute)

	v.SetDefault("google.clientID", "")
	v.SetDefault("google.clientSecret", "")
	v.SetDefault("google.redirectURL", "http://localhost:8000/auth/callback/google")

	v.SetDefault("mux.webhookSecret", "")
	v.SetDefault("mux.thumbnailWidth", 640)
}
