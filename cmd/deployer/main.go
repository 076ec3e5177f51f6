package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/compose-network/contract-deployer/internal/deploy"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/history"
	"github.com/compose-network/contract-deployer/internal/logger"
	"github.com/compose-network/contract-deployer/internal/networks"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "contract-deployer"

// newRootCmd builds the command tree. Configuration is loaded into v and
// decoded into configs.Values before any sub-command runs.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "CLI for deploying compiled contracts to configured EVM networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rawLevel, _ := cmd.Flags().GetString("log-level")
			level, err := logger.ParseLevel(rawLevel)
			if err != nil {
				return err
			}
			logger.Initialize(level)

			// Secrets referenced as ${VAR} in the config may live in .env
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.With("err", err.Error()).Warn("failed to load .env file")
			}

			if err := configs.LoadDefaults(v); err != nil {
				return err
			}

			configFile, _ := cmd.Flags().GetString("config")
			if configFile != "" {
				v.SetConfigFile(configFile)
			} else {
				v.SetConfigName("config")
				v.SetConfigType("yaml")

				if execPath, err := os.Executable(); err == nil {
					v.AddConfigPath(filepath.Dir(execPath))
				}
				v.AddConfigPath(".")
				v.AddConfigPath("./configs")
			}

			// A config file is optional, embedded defaults and flags cover the rest
			if err := v.MergeInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if errors.As(err, &notFound) && configFile == "" {
					slog.Debug("no config file found, will rely on flags and defaults")
				} else {
					const errMsg = "error reading config file"
					slog.With("err", err.Error()).Error(errMsg)
					return errors.Join(err, errors.New(errMsg))
				}
			} else {
				slog.With("config_file", v.ConfigFileUsed()).Debug("config file loaded")
			}

			var values configs.Config
			if err := v.Unmarshal(&values); err != nil {
				const errMsg = "unable to decode application config"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
			configs.Values = values

			slog.With("network", configs.Values.Deploy.Network).
				With("artifacts_dir", configs.Values.Artifacts.Dir).
				Debug("configuration loaded")

			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: config.yaml next to the binary, in . or ./configs)")

	rootCmd.AddCommand(deploy.NewCommand(v, deployer.DialEthereum))
	rootCmd.AddCommand(deploy.NewArtifactsCommand())
	rootCmd.AddCommand(networks.NewCommand())
	rootCmd.AddCommand(history.NewCommand())

	return rootCmd
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(viper.New())
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		console.NewPrinterFor(stdout, stderr).Error(err)
		return 1
	}

	return 0
}
