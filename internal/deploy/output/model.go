package output

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// Record is the deployment file written per network and contract.
	Record struct {
		ChainInfo       ChainInfo       `json:"chainInfo"`
		ContractName    string          `json:"contractName"`
		SourceName      string          `json:"sourceName,omitempty"`
		Address         common.Address  `json:"address"`
		TransactionHash common.Hash     `json:"transactionHash"`
		BlockNumber     uint64          `json:"blockNumber"`
		Deployer        common.Address  `json:"deployer"`
		DeployedAt      time.Time       `json:"deployedAt"`
		ABI             json.RawMessage `json:"abi,omitempty"`
	}

	ChainInfo struct {
		Network string `json:"network"`
		ChainID uint64 `json:"chainId"`
	}
)
