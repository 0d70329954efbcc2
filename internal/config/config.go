// internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken        string        `env:"DISCORD_TOKEN,required"`
	StoragePath         string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	AssetsDir           string        `env:"ASSETS_DIR" envDefault:"assets"`
	ReminderTick        time.Duration `env:"REMINDER_TICK" envDefault:"30s"`
	InitSlashCommands   bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	SpotifyClientID     string        `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string        `env:"SPOTIFY_CLIENT_SECRET"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse environment config: %v", err)
	}
	return cfg
}
