package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/deploy/output"
	"github.com/compose-network/contract-deployer/internal/history"
	"github.com/compose-network/contract-deployer/internal/infra/filesystem/json"
)

// run wires a Service from a validated configuration and deploys descriptor
// over connections opened by dial.
func run(ctx context.Context, cfg configs.Config, descriptor artifacts.Descriptor, dial deployer.Dialer, printer *console.Printer) (deployer.Result, error) {
	network, err := cfg.Network(cfg.Deploy.Network)
	if err != nil {
		return deployer.Result{}, err
	}
	privateKey, ok := network.Sender()
	if !ok {
		return deployer.Result{}, fmt.Errorf("no signing credential configured for network '%s'", cfg.Deploy.Network)
	}

	registry := artifacts.NewRegistry(cfg.Artifacts.Dir, cfg.Artifacts.Compilers, json.NewReader())

	contractDeployer, err := deployer.NewDeployer(
		registry,
		deployer.Target{
			Network:    string(cfg.Deploy.Network),
			URL:        network.Endpoint(),
			PrivateKey: privateKey,
		},
		dial,
		printer,
		deployer.Options{
			ConfirmationTimeout: cfg.Deploy.ConfirmationTimeout,
			DialTimeout:         cfg.Deploy.DialTimeout,
			GasLimit:            uint64(cfg.Deploy.GasLimit),
		},
	)
	if err != nil {
		return deployer.Result{}, err
	}

	var generator outputGenerator
	if cfg.Deploy.OutputDir != "" {
		generator = output.NewGenerator(cfg.Deploy.OutputDir, json.NewWriter())
	}

	var recorder historyRecorder
	if cfg.History.Path != "" {
		db, err := history.OpenDatabase(cfg.History.Path)
		if err != nil {
			printer.Warning("deployment history disabled: %v", err)
		} else {
			defer history.Close(db) // nolint:errcheck
			recorder = history.NewStore(db)
		}
	}

	return NewService(contractDeployer, registry, generator, recorder, printer).Deploy(ctx, descriptor)
}

func printArtifacts(w io.Writer, format console.Format, list []artifacts.Artifact) error {
	type entry struct {
		Contract        string `json:"contract" yaml:"contract"`
		CompilerVersion string `json:"compilerVersion,omitempty" yaml:"compiler-version,omitempty"`
		Constructor     int    `json:"constructorInputs" yaml:"constructor-inputs"`
		Path            string `json:"path" yaml:"path"`
	}

	entries := make([]entry, 0, len(list))
	for _, a := range list {
		entries = append(entries, entry{
			Contract:        a.Descriptor.String(),
			CompilerVersion: a.CompilerVersion,
			Constructor:     a.ConstructorInputs(),
			Path:            a.Path,
		})
	}

	if format != console.FormatTable {
		return console.Encode(w, format, entries)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No deployable artifacts found")
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		version := e.CompilerVersion
		if version == "" {
			version = "-"
		}
		deployable := "yes"
		if e.Constructor > 0 {
			deployable = "no (constructor arguments)"
		}
		rows = append(rows, []string{e.Contract, version, deployable})
	}

	return console.Table(w, []string{"Contract", "Compiler", "Deployable"}, rows)
}
