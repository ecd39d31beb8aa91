package config

// Layered configuration: defaults, then config.yaml, then .env, then
// real environment variables. Env names keep the original bot's flat
// form (BOT_TOKEN, RPC_URL, HELIUS_KEY, ...).

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Solana   SolanaConfig   `mapstructure:"solana"`
	Helius   HeliusConfig   `mapstructure:"helius"`
	App      AppConfig      `mapstructure:"app"`
}

type TelegramConfig struct {
	BotToken      string `mapstructure:"bot_token"`
	GroupUsername string `mapstructure:"group_username"`
	GroupJoinLink string `mapstructure:"group_join_link"`
}

type SolanaConfig struct {
	PrimaryRPC     string `mapstructure:"primary_rpc"`
	FallbackRPC    string `mapstructure:"fallback_rpc"`
	SecondRPC      string `mapstructure:"second_rpc"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
	MaxTries       int    `mapstructure:"max_tries"`       // attempts per endpoint
}

type HeliusConfig struct {
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
}

type AppConfig struct {
	CacheTTLSeconds      int     `mapstructure:"cache_ttl_seconds"`
	UserCooldownSeconds  float64 `mapstructure:"user_cooldown_seconds"`
	AlertIntervalSeconds int     `mapstructure:"alert_interval_seconds"`
	WhaleIntervalSeconds int     `mapstructure:"whale_interval_seconds"`
}

// RPCEndpoints returns the ordered endpoint pool, skipping unset and
// non-HTTP entries.
func (c *Config) RPCEndpoints() []string {
	candidates := []string{c.Solana.PrimaryRPC, c.Solana.FallbackRPC, c.Solana.SecondRPC}
	endpoints := make([]string, 0, len(candidates))
	for _, u := range candidates {
		if u != "" && strings.HasPrefix(u, "http") {
			endpoints = append(endpoints, u)
		}
	}
	return endpoints
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.App.CacheTTLSeconds) * time.Second
}

func (c *Config) UserCooldown() time.Duration {
	return time.Duration(c.App.UserCooldownSeconds * float64(time.Second))
}

// LoadConfig reads defaults, config.yaml, .env and the environment, in
// that order of increasing priority.
func LoadConfig() (*Config, error) {
	return LoadConfigWithFlags(nil)
}

// LoadConfigWithFlags is LoadConfig plus command-line overrides, which
// take priority over everything else.
func LoadConfigWithFlags(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // optional file

	v.AutomaticEnv()
	setupEnvAliases(v)

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.BindPFlag("solana.primary_rpc", flags.Lookup("rpc-url"))
	v.BindPFlag("helius.api_key", flags.Lookup("helius-key"))
	v.BindPFlag("app.cache_ttl_seconds", flags.Lookup("cache-ttl"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.group_username", "@PHX2025New")
	v.SetDefault("telegram.group_join_link", "https://t.me/PHX2025New")
	v.SetDefault("solana.primary_rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.fallback_rpc", "https://solana-rpc.publicnode.com")
	v.SetDefault("solana.request_timeout", 20)
	v.SetDefault("solana.max_tries", 2)
	v.SetDefault("helius.request_timeout", 15)
	v.SetDefault("app.cache_ttl_seconds", 300)
	v.SetDefault("app.user_cooldown_seconds", 1.0)
	v.SetDefault("app.alert_interval_seconds", 60)
	v.SetDefault("app.whale_interval_seconds", 75)
}

func setupEnvAliases(v *viper.Viper) {
	aliases := map[string]string{
		"telegram.bot_token":       "BOT_TOKEN",
		"telegram.group_username":  "GROUP_USERNAME",
		"telegram.group_join_link": "GROUP_JOIN_LINK",
		"solana.primary_rpc":       "RPC_URL",
		"solana.fallback_rpc":      "FALLBACK_RPC",
		"solana.second_rpc":        "SECOND_RPC",
		"helius.api_key":           "HELIUS_KEY",
		"app.cache_ttl_seconds":    "CACHE_TTL",
	}
	for key, env := range aliases {
		v.BindEnv(key, env)
	}
}

func validate(cfg *Config) error {
	if len(cfg.RPCEndpoints()) == 0 {
		return fmt.Errorf("no usable RPC endpoints configured")
	}
	if cfg.Solana.MaxTries <= 0 {
		cfg.Solana.MaxTries = 2
	}
	if cfg.App.CacheTTLSeconds <= 0 {
		cfg.App.CacheTTLSeconds = 300
	}
	return nil
}
