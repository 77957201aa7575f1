package commands

import (
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/cache"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"
	"github.com/ABCurado/eu-parliment-votes-sdk/pkg/configutil"
)

type EuroparlConfig struct {
	ApiUrl            string  `json:"api_url"`
	SiteUrl           string  `json:"site_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

type EmailConfig struct {
	SmtpHost string   `json:"smtp_host"`
	SmtpPort int      `json:"smtp_port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// Enabled is true when there is a server to send through and someone to send to.
func (c EmailConfig) Enabled() bool {
	return c.SmtpHost != "" && len(c.To) > 0
}

type WatchConfig struct {
	Schedule string      `json:"schedule"`
	Limit    int         `json:"limit"`
	Email    EmailConfig `json:"email"`
}

type Config struct {
	Europarl EuroparlConfig `json:"europarl"`
	Cache    cache.Config   `json:"cache"`
	Watch    WatchConfig    `json:"watch"`
}

var defaultConfig = Config{
	Europarl: EuroparlConfig{
		ApiUrl:            votes.DefaultApiUrl,
		SiteUrl:           votes.DefaultSiteUrl,
		TimeoutSeconds:    30,
		RequestsPerSecond: 2,
	},
	Cache: cache.Config{
		File: "europarl-cache.db",
	},
	Watch: WatchConfig{
		Schedule: "@every 1h",
		Limit:    10,
		Email: EmailConfig{
			SmtpPort: 587,
		},
	},
}

func readConfig(path string) (Config, error) {
	return configutil.ReadConfigOr(path, defaultConfig)
}
