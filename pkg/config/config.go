package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Well-known network names.
const (
	MainNet  = "mainnet"
	TestNet  = "testnet"
	LocalNet = "localnet"
)

// DefaultCredentialsPath is the near-cli credentials directory.
const DefaultCredentialsPath = "~/.near-credentials"

// Default timeouts.
const (
	DefaultDialTimeout    = 4 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

var endpoints = map[string]string{
	MainNet:  "https://rpc.mainnet.near.org",
	TestNet:  "https://rpc.testnet.near.org",
	LocalNet: "http://127.0.0.1:3030",
}

// Version is the version of the client, overridden at build time.
var Version = "dev"

// ErrUnknownNetwork is returned by ForNetwork for networks with no defaults.
var ErrUnknownNetwork = errors.New("unknown network")

// Config is the top level struct representing the client configuration.
type Config struct {
	Network     NetworkConfiguration     `yaml:"Network"`
	Application ApplicationConfiguration `yaml:"Application"`
}

// NetworkConfiguration describes the network and the way transactions are
// submitted to it.
type NetworkConfiguration struct {
	Name        string           `yaml:"Name"`
	RPCEndpoint string           `yaml:"RPCEndpoint"`
	Finality    nearrpc.Finality `yaml:"Finality"`
	// MaxRetries is the number of resubmissions after nonce conflicts.
	MaxRetries     int           `yaml:"MaxRetries"`
	DialTimeout    time.Duration `yaml:"DialTimeout"`
	RequestTimeout time.Duration `yaml:"RequestTimeout"`
}

// ApplicationConfiguration contains settings of the client application.
type ApplicationConfiguration struct {
	LogLevel        string       `yaml:"LogLevel"`
	LogPath         string       `yaml:"LogPath"`
	CredentialsPath string       `yaml:"CredentialsPath"`
	Prometheus      BasicService `yaml:"Prometheus"`
}

// ForNetwork returns the default configuration of a well-known network.
func ForNetwork(name string) (Config, error) {
	endpoint, ok := endpoints[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
	return Config{
		Network: NetworkConfiguration{
			Name:           name,
			RPCEndpoint:    endpoint,
			Finality:       nearrpc.FinalityFinal,
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
		Application: ApplicationConfiguration{
			LogLevel:        "info",
			CredentialsPath: DefaultCredentialsPath,
		},
	}, nil
}

// Load attempts to load the config from the given file. Settings missing
// from the file are taken from the defaults of the network it names (or
// testnet if it names none).
func Load(path string) (Config, error) {
	configData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Parse(configData)
}

// Parse decodes and validates the YAML configuration.
func Parse(configData []byte) (Config, error) {
	var probe struct {
		Network struct {
			Name string `yaml:"Name"`
		} `yaml:"Network"`
	}
	if err := yaml.Unmarshal(configData, &probe); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	name := probe.Network.Name
	if name == "" {
		name = TestNet
	}
	cfg, err := ForNetwork(name)
	if err != nil {
		// Custom network, everything except the endpoint has defaults.
		cfg, _ = ForNetwork(TestNet)
		cfg.Network.Name = name
		cfg.Network.RPCEndpoint = ""
	}

	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("invalid network configuration: %w", err)
	}
	if err := c.Application.Validate(); err != nil {
		return fmt.Errorf("invalid application configuration: %w", err)
	}
	return nil
}

// Validate checks the network configuration.
func (n NetworkConfiguration) Validate() error {
	if n.Name == "" {
		return errors.New("empty network name")
	}
	if n.RPCEndpoint == "" {
		return errors.New("no RPC endpoint")
	}
	u, err := url.Parse(n.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("bad RPC endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("bad RPC endpoint scheme %q", u.Scheme)
	}
	if n.MaxRetries < 0 {
		return fmt.Errorf("negative MaxRetries %d", n.MaxRetries)
	}
	if n.DialTimeout < 0 || n.RequestTimeout < 0 {
		return errors.New("negative timeout")
	}
	return nil
}

// Validate checks the application configuration.
func (a ApplicationConfiguration) Validate() error {
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("log setting: %w", err)
		}
	}
	if a.Prometheus.Enabled && len(a.Prometheus.Addresses) == 0 {
		return errors.New("Prometheus is enabled, but no addresses are given")
	}
	return nil
}
