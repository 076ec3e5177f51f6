package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/infra/filesystem"
	"github.com/compose-network/contract-deployer/internal/logger"
)

// Generator writes <dir>/<network>/<Contract>.json for confirmed deployments.
// Later deployments of the same contract overwrite the file; the history
// store keeps every instance.
type Generator struct {
	dir    string
	writer filesystem.Writer
	now    func() time.Time
	logger *slog.Logger
}

func NewGenerator(dir string, writer filesystem.Writer) *Generator {
	return &Generator{
		dir:    dir,
		writer: writer,
		now:    time.Now,
		logger: logger.Named("output_generator"),
	}
}

// Generate writes the record for result and returns its path.
func (g *Generator) Generate(_ context.Context, result deployer.Result, rawABI string) (string, error) {
	record := Record{
		ChainInfo: ChainInfo{
			Network: result.Network,
			ChainID: result.ChainID,
		},
		ContractName:    result.Descriptor.ContractName,
		SourceName:      result.Descriptor.SourceName,
		Address:         result.Address,
		TransactionHash: result.TxHash,
		BlockNumber:     result.BlockNumber,
		Deployer:        result.Sender,
		DeployedAt:      g.now().UTC(),
		ABI:             compactJSON(rawABI),
	}

	path := filepath.Join(g.dir, result.Network, result.Descriptor.ContractName+".json")
	if err := g.writer.WriteJSON(path, record); err != nil {
		return "", fmt.Errorf("could not write deployment record %s: %w", path, err)
	}

	g.logger.With("path", path).Info("deployment record written")

	return path, nil
}

func compactJSON(jsonStr string) json.RawMessage {
	if jsonStr == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(jsonStr)); err != nil {
		return nil
	}
	return buf.Bytes()
}
