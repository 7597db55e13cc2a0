package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anonmine-dev/corexminer/internal/donation"
	"github.com/anonmine-dev/corexminer/internal/stratum"
	"github.com/anonmine-dev/corexminer/internal/supervisor"
)

// Options is the CLI surface, parsed with go-flags in cmd/corexminer.
type Options struct {
	ConfigFile string `short:"c" long:"config" description:"path to a YAML config file" default:""`

	PoolURL  string `long:"pool-url" description:"pool address, host:port" env:"COREXMINER_POOL_URL"`
	Wallet   string `long:"wallet" description:"wallet address used as the login" env:"COREXMINER_WALLET"`
	Password string `long:"pass" description:"pool password" default:"x" env:"COREXMINER_PASS"`

	DonateLevel int    `long:"donate-level" description:"minutes donated per 100-minute cycle" default:"1" env:"COREXMINER_DONATE_LEVEL"`
	DonateURL   string `long:"donate-url" description:"donation pool address, host:port" env:"COREXMINER_DONATE_URL"`
	DonateUser  string `long:"donate-user" description:"donation pool login" env:"COREXMINER_DONATE_USER"`

	Threads int `short:"t" long:"threads" description:"worker thread count, 0 = GOMAXPROCS" default:"0" env:"COREXMINER_THREADS"`

	CarrySetDifficulty bool `long:"carry-set-difficulty" description:"accepted but has no effect: mining.set_difficulty values are only logged and are never applied to jobs"`

	LogLevel string `long:"log-level" description:"logrus level: trace, debug, info, warn, error" default:"info" env:"COREXMINER_LOG_LEVEL"`

	GUI     bool   `long:"gui" description:"start the JSON/Prometheus status endpoint"`
	GUIAddr string `long:"gui-addr" description:"address for the status endpoint" default:"127.0.0.1:9090"`
}

// File is the optional on-disk config format loaded via --config.
type File struct {
	Pool struct {
		URL      string `yaml:"url"`
		Wallet   string `yaml:"wallet"`
		Password string `yaml:"password"`
	} `yaml:"pool"`
	Donation struct {
		Level int    `yaml:"level"`
		URL   string `yaml:"url"`
		User  string `yaml:"user"`
	} `yaml:"donation"`
	Threads int `yaml:"threads"`
}

// LoadFile parses a YAML config file.
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// Merge layers file values underneath any CLI flags that were left empty
// or at their default (pass "x", donate-level 1, threads 0), CLI taking
// precedence otherwise.
func (o *Options) Merge(f File) {
	if o.PoolURL == "" {
		o.PoolURL = f.Pool.URL
	}
	if o.Wallet == "" {
		o.Wallet = f.Pool.Wallet
	}
	if o.Password == "x" && f.Pool.Password != "" {
		o.Password = f.Pool.Password
	}
	if o.DonateLevel == 1 && f.Donation.Level != 0 {
		o.DonateLevel = f.Donation.Level
	}
	if o.DonateURL == "" {
		o.DonateURL = f.Donation.URL
	}
	if o.DonateUser == "" {
		o.DonateUser = f.Donation.User
	}
	if o.Threads == 0 && f.Threads != 0 {
		o.Threads = f.Threads
	}
}

// Validate checks the options needed to start mining are present.
func (o Options) Validate() error {
	if o.PoolURL == "" {
		return fmt.Errorf("config: pool-url is required")
	}
	if o.Wallet == "" {
		return fmt.Errorf("config: wallet is required")
	}
	if o.DonateURL == "" {
		return fmt.Errorf("config: donate-url is required")
	}
	return nil
}

// ToSupervisorConfig assembles a supervisor.Config from validated
// Options.
func (o Options) ToSupervisorConfig() supervisor.Config {
	return supervisor.Config{
		Pool: stratum.Config{
			URL:  o.PoolURL,
			User: o.Wallet,
			Pass: o.Password,
		},
		Donation: donation.Config{
			Level: o.DonateLevel,
			URL:   o.DonateURL,
			User:  o.DonateUser,
			Pass:  "x",
		},
		Threads: o.Threads,
	}
}
