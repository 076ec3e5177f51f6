package networks

import (
	"bytes"
	"testing"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/compose-network/contract-deployer/internal/console"
	"github.com/stretchr/testify/require"
)

const hardhatKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestDescribe(t *testing.T) {
	t.Setenv("TEST_SEPOLIA_KEY", hardhatKey)
	t.Setenv("TEST_INFURA_KEY", "do-not-print")

	cfg := configs.Config{
		Deploy: configs.Deploy{Network: configs.NetworkNameSepolia},
		Networks: map[configs.NetworkName]configs.Network{
			configs.NetworkNameSepolia: {
				URL:      "https://sepolia.infura.io/v3/${TEST_INFURA_KEY}",
				Accounts: []string{"${TEST_SEPOLIA_KEY}"},
			},
			configs.NetworkNameFhenix: {
				URL:      "https://api.helium.fhenix.zone/",
				Accounts: []string{"${TEST_UNSET_KEY}"},
			},
			"broken": {
				URL:      "http://localhost:8545",
				Accounts: []string{"not-a-key"},
			},
		},
	}

	summaries := Describe(cfg)
	require.Equal(t, []Summary{
		{Name: "broken", URL: "http://localhost:8545", Accounts: 1},
		{Name: "fhenix", URL: "https://api.helium.fhenix.zone/"},
		{
			Name:     "sepolia",
			URL:      "https://sepolia.infura.io/v3/${TEST_INFURA_KEY}",
			Accounts: 1,
			Sender:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			Selected: true,
		},
	}, summaries)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, console.FormatTable, summaries))
	require.Contains(t, buf.String(), "sepolia *")
	require.Contains(t, buf.String(), "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NotContains(t, buf.String(), "do-not-print")
}
