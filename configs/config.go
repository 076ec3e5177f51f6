package configs

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

var Values Config

type (
	NetworkName string

	Config struct {
		Artifacts Artifacts               `mapstructure:"artifacts"`
		Deploy    Deploy                  `mapstructure:"deploy"`
		History   History                 `mapstructure:"history"`
		Networks  map[NetworkName]Network `mapstructure:"networks"`
	}

	Artifacts struct {
		Dir       string   `mapstructure:"dir"`
		Compilers []string `mapstructure:"compilers"`
	}

	Deploy struct {
		Network             NetworkName   `mapstructure:"network"`
		Contract            string        `mapstructure:"contract"`
		ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`
		DialTimeout         time.Duration `mapstructure:"dial-timeout"`
		GasLimit            int64         `mapstructure:"gas-limit"`
		OutputDir           string        `mapstructure:"output-dir"`
	}

	History struct {
		Path string `mapstructure:"path"`
	}

	// Network is a deployment target. URL and Accounts may reference
	// environment variables with ${NAME}; they are expanded on access.
	Network struct {
		URL      string   `mapstructure:"url"`
		Accounts []string `mapstructure:"accounts"`
	}
)

const (
	NetworkNameSepolia NetworkName = "sepolia"
	NetworkNameFhenix  NetworkName = "fhenix"
)

// Normalize returns the name in the form viper stores map keys in.
func (n NetworkName) Normalize() NetworkName {
	return NetworkName(strings.ToLower(strings.TrimSpace(string(n))))
}

// Endpoint returns the network URL with environment references expanded.
func (n Network) Endpoint() string {
	return strings.TrimSpace(os.ExpandEnv(n.URL))
}

// Credentials returns the non-empty signing keys with environment references expanded.
func (n Network) Credentials() []string {
	keys := make([]string, 0, len(n.Accounts))
	for _, account := range n.Accounts {
		if key := strings.TrimSpace(os.ExpandEnv(account)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Sender returns the first configured credential, which signs deployments.
func (n Network) Sender() (string, bool) {
	keys := n.Credentials()
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

// NetworkNames returns the configured network names in sorted order.
func (c *Config) NetworkNames() []NetworkName {
	names := make([]NetworkName, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Network looks up a configured network by name. Names are matched
// case-insensitively since viper lowercases map keys.
func (c *Config) Network(name NetworkName) (Network, error) {
	network, ok := c.Networks[name.Normalize()]
	if !ok {
		return Network{}, fmt.Errorf("network '%s' is not configured (available: %v)", name, c.NetworkNames())
	}
	return network, nil
}

func (c *Artifacts) Validate() error {
	if c.Dir == "" {
		return errors.New("artifacts.dir is required")
	}
	return nil
}

// Validate checks everything a deployment to the selected network needs.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Artifacts.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Deploy.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("deploy.confirmation-timeout must be positive"))
	}
	if c.Deploy.DialTimeout <= 0 {
		errs = append(errs, errors.New("deploy.dial-timeout must be positive"))
	}
	if c.Deploy.GasLimit < 0 {
		errs = append(errs, fmt.Errorf("deploy.gas-limit must not be negative, got %d", c.Deploy.GasLimit))
	}

	if c.Deploy.Network == "" {
		errs = append(errs, errors.New("deploy.network is required (use --network)"))
	} else if network, err := c.Network(c.Deploy.Network); err != nil {
		errs = append(errs, err)
	} else {
		if network.Endpoint() == "" {
			errs = append(errs, fmt.Errorf("networks.%s.url is required", c.Deploy.Network))
		}
		if _, ok := network.Sender(); !ok {
			errs = append(errs, fmt.Errorf("networks.%s.accounts must contain at least one private key", c.Deploy.Network))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
