package deployer

import (
	"math/big"

	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// Factory is a resolved artifact that can produce construction transactions.
	Factory struct {
		artifact artifacts.Artifact
	}

	// PendingDeployment is a sent construction transaction awaiting inclusion.
	// It owns the backend connection until AwaitConfirmation returns.
	PendingDeployment struct {
		Descriptor artifacts.Descriptor
		Address    common.Address
		TxHash     common.Hash
		Sender     common.Address
		ChainID    *big.Int

		tx      *types.Transaction
		backend Backend
	}

	// Result describes a contract instance confirmed on chain.
	Result struct {
		Network     string
		Descriptor  artifacts.Descriptor
		Address     common.Address
		TxHash      common.Hash
		BlockNumber uint64
		ChainID     uint64
		Sender      common.Address
		GasUsed     uint64
	}
)

func (f Factory) Descriptor() artifacts.Descriptor {
	return f.artifact.Descriptor
}
