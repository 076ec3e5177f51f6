package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/compose-network/contract-deployer/configs"
	"github.com/stretchr/testify/require"
)

func withHistoryPath(t *testing.T, path string) {
	t.Helper()

	previous := configs.Values
	t.Cleanup(func() { configs.Values = previous })
	configs.Values = configs.Config{History: configs.History{Path: path}}
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistoryCommandWithoutPath(t *testing.T) {
	withHistoryPath(t, "")

	_, err := executeHistory(t)
	require.ErrorIs(t, err, ErrDisabled)
}

func TestHistoryCommandListsRecordedDeployments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	withHistoryPath(t, path)

	db, err := OpenDatabase(path)
	require.NoError(t, err)
	recorded, err := NewStore(db).Record(context.Background(), testResult("fhenix", "BlackJack", 5))
	require.NoError(t, err)
	require.NoError(t, Close(db))

	out, err := executeHistory(t, "--network", "Fhenix")
	require.NoError(t, err)
	require.Contains(t, out, recorded.Address)

	out, err = executeHistory(t, "--network", "sepolia")
	require.NoError(t, err)
	require.Equal(t, "No deployments recorded\n", out)

	_, err = executeHistory(t, "--format", "csv")
	require.ErrorContains(t, err, "unsupported output format")
}
