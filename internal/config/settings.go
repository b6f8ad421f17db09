package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultAPIURL is the base URL of the licensing platform API.
const DefaultAPIURL = "https://api.riff-tech.com/v1"

// DefaultReturnURL is where the payment provider sends the user after onboarding.
const DefaultReturnURL = "https://www.code-checkout.com"

// DefaultTimeout bounds every API request.
const DefaultTimeout = 10 * time.Second

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "CODE_CHECKOUT"

// DotEnvFile is the optional project file of KEY=value settings.
const DotEnvFile = ".env"

// Environment represents the runtime environment.
type Environment string

const (
	// EnvDevelopment enables debug output by default.
	EnvDevelopment Environment = "development"
	// EnvProduction is the default environment.
	EnvProduction Environment = "production"
)

// ProxyConfig holds outbound proxy settings.
type ProxyConfig struct {
	HTTPProxy   string
	HTTPSProxy  string
	NoProxy     string
	SOCKS5Proxy string
}

// HasProxy reports whether any proxy is configured.
func (p *ProxyConfig) HasProxy() bool {
	return p != nil && (p.HTTPProxy != "" || p.HTTPSProxy != "" || p.SOCKS5Proxy != "")
}

// Settings holds runtime configuration resolved from flags and environment variables.
type Settings struct {
	Environment Environment
	APIURL      string
	ReturnURL   string
	Debug       bool
	Dir         string
	Timeout     time.Duration
	Proxy       ProxyConfig
}

// NewViper returns a viper instance with defaults and environment bindings
// for every setting.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("return_url", DefaultReturnURL)
	v.SetDefault("env", string(EnvProduction))
	v.SetDefault("debug", false)
	v.SetDefault("dir", "")
	v.SetDefault("timeout", DefaultTimeout)

	// DEBUG is honoured unprefixed for compatibility with earlier releases.
	_ = v.BindEnv("debug", EnvPrefix+"_DEBUG", "DEBUG")
	for _, key := range []string{"http_proxy", "https_proxy", "no_proxy", "socks5_proxy"} {
		_ = v.BindEnv(key)
	}

	return v
}

// BindFlags binds the persistent flags of the root command.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"debug":   "debug",
		"dir":     "dir",
		"api_url": "api-url",
	} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadSettings resolves the settings from v.
func LoadSettings(v *viper.Viper) Settings {
	env := Environment(strings.ToLower(strings.TrimSpace(v.GetString("env"))))
	switch env {
	case EnvDevelopment, EnvProduction:
		// valid
	default:
		env = EnvProduction
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dir := projectDir(v)

	apiURL := strings.TrimSuffix(strings.TrimSpace(v.GetString("api_url")), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return Settings{
		Environment: env,
		APIURL:      apiURL,
		ReturnURL:   v.GetString("return_url"),
		Debug:       v.GetBool("debug") || env == EnvDevelopment,
		Dir:         dir,
		Timeout:     timeout,
		Proxy: ProxyConfig{
			HTTPProxy:   v.GetString("http_proxy"),
			HTTPSProxy:  v.GetString("https_proxy"),
			NoProxy:     v.GetString("no_proxy"),
			SOCKS5Proxy: v.GetString("socks5_proxy"),
		},
	}
}

func projectDir(v *viper.Viper) string {
	if dir := v.GetString("dir"); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// LoadDotEnv merges the project's .env file into v below flags and the
// process environment. Prefixed names drop CODE_CHECKOUT_ and NODE_ENV
// selects the environment. A missing file is not an error.
func LoadDotEnv(v *viper.Viper) error {
	path := filepath.Join(projectDir(v), DotEnvFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	values := make(map[string]any, len(dotenv.AllKeys()))
	for _, key := range dotenv.AllKeys() {
		values[dotEnvKey(key)] = dotenv.Get(key)
	}
	return v.MergeConfigMap(values)
}

func dotEnvKey(key string) string {
	key = strings.TrimPrefix(key, strings.ToLower(EnvPrefix)+"_")
	if key == "node_env" {
		return "env"
	}
	return key
}
