package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	fsjson "github.com/compose-network/contract-deployer/internal/infra/filesystem/json"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestGenerateWritesRecord(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, fsjson.NewWriter())
	g.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	result := deployer.Result{
		Network:     "sepolia",
		Descriptor:  artifacts.Descriptor{SourceName: "contracts/Fhenix.sol", ContractName: "BlackJack"},
		Address:     common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 42,
		ChainID:     11155111,
		Sender:      common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	}

	path, err := g.Generate(context.Background(), result, "[\n  {\"type\": \"constructor\", \"inputs\": []}\n]")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "sepolia", "BlackJack.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal(data, &record))
	require.Equal(t, result.Address, record.Address)
	require.Equal(t, result.TxHash, record.TransactionHash)
	require.Equal(t, uint64(11155111), record.ChainInfo.ChainID)
	require.Equal(t, "contracts/Fhenix.sol", record.SourceName)
	require.JSONEq(t, `[{"type":"constructor","inputs":[]}]`, string(record.ABI))
	require.True(t, record.DeployedAt.Equal(g.now()))
}
