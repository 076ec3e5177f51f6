package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/deploy/output"
	"github.com/compose-network/contract-deployer/internal/history"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/require"
)

var blackJack = artifacts.Descriptor{SourceName: "contracts/Fhenix.sol", ContractName: "BlackJack"}

type fakeRunner struct {
	result deployer.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(context.Context, artifacts.Descriptor) (deployer.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeABISource struct {
	err error
}

func (f fakeABISource) Resolve(d artifacts.Descriptor) (artifacts.Artifact, error) {
	if f.err != nil {
		return artifacts.Artifact{}, f.err
	}
	return artifacts.Artifact{Descriptor: d, RawABI: `[]`}, nil
}

type fakeGenerator struct {
	rawABI string
	calls  int
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, result deployer.Result, rawABI string) (string, error) {
	f.calls++
	f.rawABI = rawABI
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join("deployments", result.Network, result.Descriptor.ContractName+".json"), nil
}

type fakeRecorder struct {
	results []deployer.Result
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, result deployer.Result) (history.Deployment, error) {
	if f.err != nil {
		return history.Deployment{}, f.err
	}
	f.results = append(f.results, result)
	return history.Deployment{Address: result.Address.Hex()}, nil
}

type fakeReporter struct {
	notes    []string
	warnings []string
}

func (f *fakeReporter) Note(format string, a ...any) {
	f.notes = append(f.notes, fmt.Sprintf(format, a...))
}

func (f *fakeReporter) Warning(format string, a ...any) {
	f.warnings = append(f.warnings, fmt.Sprintf(format, a...))
}

func confirmedResult() deployer.Result {
	return deployer.Result{
		Network:     "fhenix",
		Descriptor:  blackJack,
		Address:     common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 1,
		ChainID:     8008135,
	}
}

func TestServiceDeployPersistsConfirmedDeployment(t *testing.T) {
	runner := &fakeRunner{result: confirmedResult()}
	generator := &fakeGenerator{}
	recorder := &fakeRecorder{}
	reporter := &fakeReporter{}

	result, err := NewService(runner, fakeABISource{}, generator, recorder, reporter).Deploy(context.Background(), blackJack)
	require.NoError(t, err)

	require.Equal(t, confirmedResult(), result)
	require.Equal(t, 1, generator.calls)
	require.Equal(t, `[]`, generator.rawABI)
	require.Equal(t, []deployer.Result{confirmedResult()}, recorder.results)
	require.Equal(t, []string{"Deployment record written to " + filepath.Join("deployments", "fhenix", "BlackJack.json")}, reporter.notes)
	require.Empty(t, reporter.warnings)
}

func TestServiceDeployFailureSkipsPersistence(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: boom", deployer.ErrSubmission)}
	generator := &fakeGenerator{}
	recorder := &fakeRecorder{}

	_, err := NewService(runner, fakeABISource{}, generator, recorder, &fakeReporter{}).Deploy(context.Background(), blackJack)
	require.ErrorIs(t, err, deployer.ErrSubmission)

	require.Zero(t, generator.calls)
	require.Empty(t, recorder.results)
}

func TestServiceDeployPersistenceFailuresAreWarnings(t *testing.T) {
	tests := []struct {
		name      string
		abiSource fakeABISource
		generator *fakeGenerator
		recorder  *fakeRecorder
		warnings  int
		rawABI    string
	}{
		{
			name:      "record write fails",
			generator: &fakeGenerator{err: errors.New("disk full")},
			recorder:  &fakeRecorder{},
			warnings:  1,
			rawABI:    `[]`,
		},
		{
			name:      "history fails",
			generator: &fakeGenerator{},
			recorder:  &fakeRecorder{err: errors.New("database is locked")},
			warnings:  1,
			rawABI:    `[]`,
		},
		{
			name:      "abi unavailable",
			abiSource: fakeABISource{err: artifacts.ErrNotFound},
			generator: &fakeGenerator{},
			recorder:  &fakeRecorder{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &fakeReporter{}
			service := NewService(&fakeRunner{result: confirmedResult()}, tt.abiSource, tt.generator, tt.recorder, reporter)

			result, err := service.Deploy(context.Background(), blackJack)
			require.NoError(t, err)
			require.Equal(t, confirmedResult().Address, result.Address)
			require.Len(t, reporter.warnings, tt.warnings)
			require.Equal(t, 1, tt.generator.calls)
			require.Equal(t, tt.rawABI, tt.generator.rawABI)
		})
	}
}

func TestServiceDeployWithoutPersistence(t *testing.T) {
	runner := &fakeRunner{result: confirmedResult()}

	_, err := NewService(runner, fakeABISource{}, nil, nil, &fakeReporter{}).Deploy(context.Background(), blackJack)
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)
}

func testConfig(t *testing.T, url string) configs.Config {
	t.Helper()

	dir := t.TempDir()
	return configs.Config{
		Artifacts: configs.Artifacts{Dir: filepath.Join(dir, "artifacts")},
		Deploy: configs.Deploy{
			Network:             configs.NetworkNameFhenix,
			ConfirmationTimeout: time.Second,
			DialTimeout:         time.Second,
			OutputDir:           filepath.Join(dir, "deployments"),
		},
		History: configs.History{Path: filepath.Join(dir, "history.db")},
		Networks: map[configs.NetworkName]configs.Network{
			configs.NetworkNameFhenix: {
				URL:      url,
				Accounts: []string{"0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"},
			},
		},
	}
}

func writeArtifact(t *testing.T, dir string, d artifacts.Descriptor) {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(d.SourceName), d.ContractName+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))

	data, err := json.Marshal(map[string]any{
		"_format":      "hh-sol-artifact-1",
		"contractName": d.ContractName,
		"sourceName":   d.SourceName,
		"abi":          json.RawMessage(`[]`),
		"bytecode":     "0x6001600c60003960016000f300",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0644))
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name     string
		artifact bool
		wantErr  error
	}{
		{name: "artifact missing", artifact: false, wantErr: deployer.ErrArtifactNotFound},
		{name: "network unreachable", artifact: true, wantErr: deployer.ErrNetworkUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "http://127.0.0.1:1")
			if tt.artifact {
				writeArtifact(t, cfg.Artifacts.Dir, blackJack)
			}

			var out, errOut bytes.Buffer
			printer := console.NewPrinterWithWriters(&out, &errOut, true)

			_, err := run(context.Background(), cfg, blackJack, deployer.DialEthereum, printer)
			require.ErrorIs(t, err, tt.wantErr)

			_, statErr := os.Stat(filepath.Join(cfg.Deploy.OutputDir, "fhenix", "BlackJack.json"))
			require.ErrorIs(t, statErr, os.ErrNotExist)
		})
	}
}

type simulatedBackend struct {
	simulated.Client
}

func (simulatedBackend) Close() {}

func newSimulatedNetwork(t *testing.T) (*simulated.Backend, string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	funds := new(big.Int).Mul(big.NewInt(1_000), big.NewInt(1e18))
	sim := simulated.NewBackend(types.GenesisAlloc{crypto.PubkeyToAddress(key.PublicKey): {Balance: funds}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sim.Commit()
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = sim.Close()
	})

	return sim, hexutil.Encode(crypto.FromECDSA(key))
}

func TestRunDeploysAndPersists(t *testing.T) {
	sim, privateKey := newSimulatedNetwork(t)

	cfg := testConfig(t, "simulated://fhenix")
	cfg.Deploy.ConfirmationTimeout = 30 * time.Second
	cfg.Networks[configs.NetworkNameFhenix] = configs.Network{
		URL:      "simulated://fhenix",
		Accounts: []string{privateKey},
	}
	writeArtifact(t, cfg.Artifacts.Dir, blackJack)

	dial := func(context.Context, string) (deployer.Backend, error) {
		return simulatedBackend{Client: sim.Client()}, nil
	}

	var out, errOut bytes.Buffer
	printer := console.NewPrinterWithWriters(&out, &errOut, true)

	result, err := run(context.Background(), cfg, blackJack, dial, printer)
	require.NoError(t, err)
	require.NotEqual(t, common.Address{}, result.Address)
	require.Empty(t, errOut.String())

	recordPath := filepath.Join(cfg.Deploy.OutputDir, "fhenix", "BlackJack.json")
	data, err := os.ReadFile(recordPath)
	require.NoError(t, err)
	var record output.Record
	require.NoError(t, json.Unmarshal(data, &record))
	require.Equal(t, result.Address, record.Address)
	require.Equal(t, result.TxHash, record.TransactionHash)
	require.Equal(t, uint64(1337), record.ChainInfo.ChainID)

	db, err := history.OpenDatabase(cfg.History.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close(db) })
	deployments, err := history.NewStore(db).List(context.Background(), history.Filter{Network: "fhenix"})
	require.NoError(t, err)
	require.Len(t, deployments, 1)
	require.Equal(t, result.Address.Hex(), deployments[0].Address)
	require.Equal(t, result.TxHash.Hex(), deployments[0].TxHash)
	require.Equal(t, "contracts/Fhenix.sol:BlackJack", deployments[0].Contract)

	require.Equal(t,
		"Deploying BlackJack contract to fhenix...\n"+
			"Transaction "+result.TxHash.Hex()+" sent, waiting for confirmation\n"+
			"BlackJack contract deployed to: "+result.Address.Hex()+"\n"+
			"Deployment record written to "+recordPath+"\n",
		out.String())
}

func TestPrintArtifacts(t *testing.T) {
	list := []artifacts.Artifact{
		{Descriptor: blackJack, CompilerVersion: "0.8.20", Path: "artifacts/contracts/Fhenix.sol/BlackJack.json"},
	}

	var buf bytes.Buffer
	require.NoError(t, printArtifacts(&buf, console.FormatTable, list))
	require.Contains(t, buf.String(), "contracts/Fhenix.sol:BlackJack")
	require.Contains(t, buf.String(), "0.8.20")

	buf.Reset()
	require.NoError(t, printArtifacts(&buf, console.FormatJSON, list))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "contracts/Fhenix.sol:BlackJack", decoded[0]["contract"])

	buf.Reset()
	require.NoError(t, printArtifacts(&buf, console.FormatTable, nil))
	require.Equal(t, "No deployable artifacts found\n", buf.String())
}
