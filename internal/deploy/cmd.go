package deploy

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/infra/filesystem/json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCommand creates the deploy command with its flags bound to v.
func NewCommand(v *viper.Viper, dial deployer.Dialer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [source:Contract]",
		Short: "Deploy a compiled contract to the selected network",
		Long: "Deploy a compiled contract to the selected network. The contract defaults to " +
			"deploy.contract; the network must be chosen with --network or deploy.network.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.Values
			if len(args) == 1 {
				cfg.Deploy.Contract = args[0]
			}
			cfg.Deploy.Network = cfg.Deploy.Network.Normalize()

			slog.With("network", cfg.Deploy.Network).
				With("contract", cfg.Deploy.Contract).
				Info("starting deploy command. Validating config")

			if err := cfg.Validate(); err != nil {
				return err
			}

			descriptor, err := artifacts.ParseDescriptor(cfg.Deploy.Contract)
			if err != nil {
				return err
			}

			printer := console.NewPrinterFor(cmd.OutOrStdout(), cmd.ErrOrStderr())
			result, err := run(cmd.Context(), cfg, descriptor, dial, printer)
			if err != nil {
				return err
			}

			slog.With("address", result.Address.Hex()).
				With("tx_hash", result.TxHash.Hex()).
				Info("deploy command finished")

			return nil
		},
	}

	if err := declareFlags(cmd, v); err != nil {
		panic(err)
	}

	return cmd
}

func NewArtifactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List deployable contracts in the artifacts directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := configs.Values.Artifacts
			if flags.Changed("artifacts-dir") {
				cfg.Dir, _ = flags.GetString("artifacts-dir")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			rawFormat, _ := flags.GetString("format")
			format, err := console.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			list, err := artifacts.NewRegistry(cfg.Dir, cfg.Compilers, json.NewReader()).List()
			if err != nil {
				return fmt.Errorf("failed to list artifacts: %w", err)
			}

			return printArtifacts(cmd.OutOrStdout(), format, list)
		},
	}

	cmd.Flags().String("artifacts-dir", "", "Directory with compiled Hardhat artifacts (overrides artifacts.dir)")
	cmd.Flags().String("format", string(console.FormatTable), "Output format: table, json or yaml")

	return cmd
}
