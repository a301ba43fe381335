package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration with viper
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it. Using default values and environment variables.")
	}

	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.root_url", "http://localhost:3000")
	viper.SetDefault("db.path", "./data/jingletube.db")

	// OAuth callbacks
	viper.SetDefault("callback.spotify", "http://localhost:3000/callback/spotify")
	viper.SetDefault("callback.github", "http://localhost:3000/callback/github")
	viper.SetDefault("callback.google", "http://localhost:3000/callback/google")
	viper.SetDefault("spotify.scopes", "user-read-email")
	viper.SetDefault("github.scopes", "read:user user:email")
	viper.SetDefault("google.scopes", "openid profile email")

	// Auth defaults
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("auth.issuer", "jingletube")
	viper.SetDefault("auth.signing_key_path", "./data/jwks.json")
	viper.SetDefault("auth.dev_mode", false)
	viper.SetDefault("auth.dev_username", "dev_user")

	// YouTube metadata lookups
	viper.SetDefault("youtube.cache_ttl_minutes", 60)

	viper.AutomaticEnv()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Println("Config file not found, using default values and environment variables")
	} else {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// OAuthConfigured reports whether client credentials are present for a provider.
func OAuthConfigured(provider string) bool {
	return viper.GetString(provider+".client_id") != "" &&
		viper.GetString(provider+".client_secret") != ""
}
