package deploy

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | time.Duration
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

var (
	stringFlags = []flagDef[string]{
		{"network", "deploy.network", "", "Network to deploy to, as named in the networks config section"},
		{"artifacts-dir", "artifacts.dir", "./client/src/artifacts", "Directory with compiled Hardhat artifacts"},
		{"output-dir", "deploy.output-dir", "./deployments", "Directory for deployment records (empty disables them)"},
		{"history-path", "history.path", "./.deployer/history.db", "SQLite deployment history (empty disables it)"},
	}

	intFlags = []flagDef[int]{
		{"gas-limit", "deploy.gas-limit", 0, "Gas limit for the construction transaction (0 estimates it)"},
	}

	durationFlags = []flagDef[time.Duration]{
		{"confirmation-timeout", "deploy.confirmation-timeout", 5 * time.Minute, "Maximum time to wait for the deployment to be mined"},
		{"dial-timeout", "deploy.dial-timeout", 15 * time.Second, "Maximum time to connect to the network and send the transaction"},
	}
)

// declareFlags declares every deploy flag on cmd and binds it to its viper key.
func declareFlags(cmd *cobra.Command, v *viper.Viper) error {
	if err := declareFlagDefs(cmd, v, stringFlags); err != nil {
		return err
	}
	if err := declareFlagDefs(cmd, v, intFlags); err != nil {
		return err
	}
	return declareFlagDefs(cmd, v, durationFlags)
}

func declareFlagDefs[T flagType](cmd *cobra.Command, v *viper.Viper, flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(cmd, v, flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a single flag and binds it to a viper configuration key.
func declareFlag[T flagType](cmd *cobra.Command, v *viper.Viper, flagName, viperKey string, defaultValue T, description string) error {
	switch value := any(defaultValue).(type) {
	case string:
		cmd.Flags().String(flagName, value, description)
	case int:
		cmd.Flags().Int(flagName, value, description)
	case time.Duration:
		cmd.Flags().Duration(flagName, value, description)
	}
	return v.BindPFlag(viperKey, cmd.Flags().Lookup(flagName))
}
