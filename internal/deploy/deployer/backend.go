package deployer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
)

type (
	// Backend is the subset of an RPC client needed to deploy and confirm a contract.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
		ChainID(ctx context.Context) (*big.Int, error)
		Close()
	}

	// Dialer opens a Backend for an endpoint URL.
	Dialer func(ctx context.Context, url string) (Backend, error)
)

// DialEthereum connects to a JSON-RPC endpoint over http(s), ws(s) or IPC.
func DialEthereum(ctx context.Context, url string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}
