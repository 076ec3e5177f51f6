package history

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/spf13/cobra"
)

// ErrDisabled is returned when history.path is empty.
var ErrDisabled = errors.New("deployment history is disabled (history.path is empty)")

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List confirmed deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			network, _ := flags.GetString("network")
			contract, _ := flags.GetString("contract")
			limit, _ := flags.GetInt("limit")
			rawFormat, _ := flags.GetString("format")

			format, err := console.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			path := configs.Values.History.Path
			if path == "" {
				return ErrDisabled
			}

			slog.With("path", path).Debug("opening deployment history")
			db, err := OpenDatabase(path)
			if err != nil {
				return err
			}
			defer Close(db) // nolint:errcheck

			deployments, err := NewStore(db).List(cmd.Context(), Filter{
				Network:  string(configs.NetworkName(network).Normalize()),
				Contract: contract,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			return Print(cmd.OutOrStdout(), format, deployments)
		},
	}

	cmd.Flags().String("network", "", "Only show deployments to this network")
	cmd.Flags().String("contract", "", "Only show deployments of this contract name")
	cmd.Flags().Int("limit", 0, "Maximum number of deployments to show (0 shows all)")
	cmd.Flags().String("format", string(console.FormatTable), "Output format: table, json or yaml")

	return cmd
}

// Print writes deployments in the requested format.
func Print(w io.Writer, format console.Format, deployments []Deployment) error {
	if format != console.FormatTable {
		return console.Encode(w, format, deployments)
	}

	if len(deployments) == 0 {
		_, err := fmt.Fprintln(w, "No deployments recorded")
		return err
	}

	rows := make([][]string, 0, len(deployments))
	for _, d := range deployments {
		rows = append(rows, []string{
			d.DeployedAt.Format("2006-01-02 15:04:05"),
			d.Network,
			strconv.FormatUint(d.ChainID, 10),
			d.Contract,
			d.Address,
			strconv.FormatUint(d.BlockNumber, 10),
		})
	}

	return console.Table(w, []string{"Deployed At", "Network", "Chain ID", "Contract", "Address", "Block"}, rows)
}
