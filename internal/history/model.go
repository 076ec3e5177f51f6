package history

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentModel is a confirmed contract deployment.
type DeploymentModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt    time.Time `gorm:"index"`
	Network      string    `gorm:"not null;index"`
	ChainID      uint64    `gorm:"not null"`
	SourceName   string
	ContractName string `gorm:"not null;index"`
	Address      string `gorm:"not null"`
	TxHash       string `gorm:"not null;uniqueIndex"`
	BlockNumber  uint64
	Deployer     string `gorm:"not null"`
	GasUsed      uint64
}

func (DeploymentModel) TableName() string {
	return "deployments"
}
