package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// Deployment is the presentation form of a stored deployment.
	Deployment struct {
		ID          string    `json:"id" yaml:"id"`
		DeployedAt  time.Time `json:"deployedAt" yaml:"deployed-at"`
		Network     string    `json:"network" yaml:"network"`
		ChainID     uint64    `json:"chainId" yaml:"chain-id"`
		Contract    string    `json:"contract" yaml:"contract"`
		Address     string    `json:"address" yaml:"address"`
		TxHash      string    `json:"transactionHash" yaml:"transaction-hash"`
		BlockNumber uint64    `json:"blockNumber" yaml:"block-number"`
		Deployer    string    `json:"deployer" yaml:"deployer"`
		GasUsed     uint64    `json:"gasUsed" yaml:"gas-used"`
	}

	Filter struct {
		Network  string
		Contract string
		Limit    int
	}

	// Store persists confirmed deployments only.
	Store struct {
		db     *gorm.DB
		logger *slog.Logger
	}
)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		logger: logger.Named("history_store"),
	}
}

// Record saves a confirmed deployment.
func (s *Store) Record(ctx context.Context, result deployer.Result) (Deployment, error) {
	model := &DeploymentModel{
		ID:           uuid.New(),
		Network:      result.Network,
		ChainID:      result.ChainID,
		SourceName:   result.Descriptor.SourceName,
		ContractName: result.Descriptor.ContractName,
		Address:      result.Address.Hex(),
		TxHash:       result.TxHash.Hex(),
		BlockNumber:  result.BlockNumber,
		Deployer:     result.Sender.Hex(),
		GasUsed:      result.GasUsed,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		s.logger.
			With("tx_hash", model.TxHash).
			With("err", err.Error()).
			Error("failed to record deployment")
		return Deployment{}, fmt.Errorf("failed to record deployment: %w", err)
	}

	return toDeployment(model), nil
}

// List returns stored deployments, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Deployment, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Network != "" {
		query = query.Where("network = ?", filter.Network)
	}
	if filter.Contract != "" {
		query = query.Where("contract_name = ?", filter.Contract)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []DeploymentModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	deployments := make([]Deployment, len(models))
	for i := range models {
		deployments[i] = toDeployment(&models[i])
	}

	return deployments, nil
}

func toDeployment(m *DeploymentModel) Deployment {
	contract := m.ContractName
	if m.SourceName != "" {
		contract = m.SourceName + ":" + m.ContractName
	}

	return Deployment{
		ID:          m.ID.String(),
		DeployedAt:  m.CreatedAt,
		Network:     m.Network,
		ChainID:     m.ChainID,
		Contract:    contract,
		Address:     m.Address,
		TxHash:      m.TxHash,
		BlockNumber: m.BlockNumber,
		Deployer:    m.Deployer,
		GasUsed:     m.GasUsed,
	}
}
