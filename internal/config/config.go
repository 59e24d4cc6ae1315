package config

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pubdeck/pubdeck/common"
)

const (
	rpcSecretEnv = "PUBDECK_RPC_SECRET"
	dbPathEnv    = "PUBDECK_DB_PATH"
	platformEnv  = "PUBDECK_PLATFORM_URL"
	assetsEnv    = "PUBDECK_ASSETS_URL"
)

// Config holds high-level settings required across the daemon.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	RPC         RPCConfig         `yaml:"rpc"`
	Platform    PlatformConfig    `yaml:"platform"`
	Assets      AssetsConfig      `yaml:"assets"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Loading     LoadingConfig     `yaml:"loading"`
}

// DatabaseConfig describes where the publications database lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds socket server ports.
type ServerConfig struct {
	Port    int `yaml:"port"`
	WebPort int `yaml:"webPort"`
}

// RPCConfig holds settings for the browser-facing JSON-RPC surface.
type RPCConfig struct {
	Secret    string `yaml:"secret"`
	ListenAll bool   `yaml:"listenAll"`
}

// PlatformConfig describes the social platform gateway.
type PlatformConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// AssetsConfig describes the remote asset pipeline and its polling budget.
type AssetsConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	PollAttempts int    `yaml:"pollAttempts"`
	PollDelaySec int    `yaml:"pollDelaySec"`
}

// CredentialsConfig describes token storage locations.
type CredentialsConfig struct {
	TokenFile   string `yaml:"tokenFile"`
	KeyFallback string `yaml:"keyFallback"`
}

// LoadingConfig selects the startup progress strategy.
type LoadingConfig struct {
	Strategy string `yaml:"strategy"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(common.ConfigPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(rpcSecretEnv); v != "" {
		c.RPC.Secret = v
	}
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(platformEnv); v != "" {
		c.Platform.BaseURL = v
	}
	if v := os.Getenv(assetsEnv); v != "" {
		c.Assets.BaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Server.Port != 0 {
		base.Server.Port = override.Server.Port
	}
	if override.Server.WebPort != 0 {
		base.Server.WebPort = override.Server.WebPort
	}

	if override.RPC.Secret != "" {
		base.RPC.Secret = override.RPC.Secret
	}
	if override.RPC.ListenAll {
		base.RPC.ListenAll = true
	}

	if override.Platform.BaseURL != "" {
		base.Platform.BaseURL = override.Platform.BaseURL
	}

	if override.Assets.BaseURL != "" {
		base.Assets.BaseURL = override.Assets.BaseURL
	}
	if override.Assets.PollAttempts != 0 {
		base.Assets.PollAttempts = override.Assets.PollAttempts
	}
	if override.Assets.PollDelaySec != 0 {
		base.Assets.PollDelaySec = override.Assets.PollDelaySec
	}

	if override.Credentials.TokenFile != "" {
		base.Credentials.TokenFile = override.Credentials.TokenFile
	}
	if override.Credentials.KeyFallback != "" {
		base.Credentials.KeyFallback = override.Credentials.KeyFallback
	}

	if override.Loading.Strategy != "" {
		base.Loading.Strategy = override.Loading.Strategy
	}

	return base
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	dataDir := filepath.Join(home, ".pubdeck")
	return Config{
		Database: DatabaseConfig{Path: filepath.Join(dataDir, "pubdeck.db")},
		Server:   ServerConfig{Port: 4200, WebPort: 4201},
		Platform: PlatformConfig{BaseURL: "https://gateway.pubdeck.io/v1"},
		Assets: AssetsConfig{
			BaseURL:      "https://assets.pubdeck.io/v1",
			PollAttempts: 10,
			PollDelaySec: 3,
		},
		Credentials: CredentialsConfig{
			TokenFile:   filepath.Join(dataDir, "tokens.dat"),
			KeyFallback: filepath.Join(dataDir, "key.hex"),
		},
		Loading: LoadingConfig{Strategy: "weighted"},
	}
}
