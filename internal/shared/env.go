package shared

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file credentials.
const (
	EnvAniListClientID = "ANILIST_CLIENT_ID"
	EnvAniListSecret   = "ANILIST_SECRET"
	EnvMALClientID     = "MAL_CLIENT_ID"
	EnvMALSecret       = "MAL_SECRET"
)

// LoadEnvFiles loads .env files into the process environment and returns the ones found.
//
// Variables already set in the environment are never replaced. Earlier files take precedence, so
// the default order lets .env.local shadow .env.
func LoadEnvFiles(files ...string) []string {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}

	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// ApplyEnv overrides client credentials with any non-empty environment values.
func ApplyEnv(c *CredentialsConfig) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.AniList.ClientID, EnvAniListClientID)
	override(&c.AniList.ClientSecret, EnvAniListSecret)
	override(&c.MyAnimeList.ClientID, EnvMALClientID)
	override(&c.MyAnimeList.ClientSecret, EnvMALSecret)
}
