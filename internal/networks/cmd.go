package networks

import (
	"io"
	"strconv"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/compose-network/contract-deployer/internal/deploy/crypto"
	"github.com/spf13/cobra"
)

type Summary struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Accounts int    `json:"accounts" yaml:"accounts"`
	Sender   string `json:"sender,omitempty" yaml:"sender,omitempty"`
	Selected bool   `json:"selected" yaml:"selected"`
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List configured deployment networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawFormat, _ := cmd.Flags().GetString("format")
			format, err := console.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			return Print(cmd.OutOrStdout(), format, Describe(configs.Values))
		},
	}

	cmd.Flags().String("format", string(console.FormatTable), "Output format: table, json or yaml")

	return cmd
}

// Describe summarizes every configured network. URLs are reported as
// configured, so ${VAR} references are shown instead of their secret values.
func Describe(cfg configs.Config) []Summary {
	names := cfg.NetworkNames()
	summaries := make([]Summary, 0, len(names))

	for _, name := range names {
		network := cfg.Networks[name]
		summary := Summary{
			Name:     string(name),
			URL:      network.URL,
			Accounts: len(network.Credentials()),
			Selected: name == cfg.Deploy.Network.Normalize(),
		}
		if key, ok := network.Sender(); ok {
			if address, err := crypto.AddressFromPrivateKey(key); err == nil {
				summary.Sender = address.Hex()
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries
}

func Print(w io.Writer, format console.Format, summaries []Summary) error {
	if format != console.FormatTable {
		return console.Encode(w, format, summaries)
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		name := s.Name
		if s.Selected {
			name += " *"
		}
		sender := s.Sender
		if sender == "" {
			sender = "-"
		}
		rows = append(rows, []string{name, s.URL, strconv.Itoa(s.Accounts), sender})
	}

	return console.Table(w, []string{"Network", "URL", "Accounts", "Sender"}, rows)
}
