package deployer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/crypto"
	"github.com/compose-network/contract-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	defaultConfirmationTimeout = 5 * time.Minute
	defaultDialTimeout         = 15 * time.Second
)

type (
	registry interface {
		Resolve(d artifacts.Descriptor) (artifacts.Artifact, error)
	}

	// Progress receives human readable milestones of a deployment.
	Progress interface {
		Deploying(descriptor artifacts.Descriptor, network string)
		Submitted(pending PendingDeployment)
		Deployed(result Result)
	}

	// Target is the network a Deployer sends to and the key that signs.
	Target struct {
		Network    string
		URL        string
		PrivateKey string
	}

	Options struct {
		// ConfirmationTimeout bounds the wait for the construction receipt.
		ConfirmationTimeout time.Duration
		// DialTimeout bounds connecting to the endpoint and sending the transaction.
		DialTimeout time.Duration
		// GasLimit is used as is when non-zero; otherwise gas is estimated.
		GasLimit uint64
	}

	// Deployer drives one contract instance from descriptor to confirmed address.
	Deployer struct {
		registry   registry
		target     Target
		privateKey *ecdsa.PrivateKey
		sender     common.Address
		dial       Dialer
		progress   Progress
		options    Options
		logger     *slog.Logger
	}
)

// NewDeployer creates a deployer for a single network target.
func NewDeployer(registry registry, target Target, dial Dialer, progress Progress, options Options) (*Deployer, error) {
	privateKey, err := crypto.ParsePrivateKey(target.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signing credential for network '%s': %w", target.Network, err)
	}

	sender, err := crypto.Address(privateKey)
	if err != nil {
		return nil, err
	}

	if dial == nil {
		dial = DialEthereum
	}
	if progress == nil {
		progress = nopProgress{}
	}
	if options.ConfirmationTimeout <= 0 {
		options.ConfirmationTimeout = defaultConfirmationTimeout
	}
	if options.DialTimeout <= 0 {
		options.DialTimeout = defaultDialTimeout
	}

	return &Deployer{
		registry:   registry,
		target:     target,
		privateKey: privateKey,
		sender:     sender,
		dial:       dial,
		progress:   progress,
		options:    options,
		logger:     logger.Named("contract_deployer").With("network", target.Network),
	}, nil
}

// Sender returns the account that signs construction transactions.
func (d *Deployer) Sender() common.Address {
	return d.sender
}

// Run resolves, submits and confirms descriptor, stopping at the first failure.
func (d *Deployer) Run(ctx context.Context, descriptor artifacts.Descriptor) (Result, error) {
	attempt := newAttempt()
	log := d.logger.With("contract", descriptor.String())

	if err := attempt.advance(StateResolving); err != nil {
		return Result{}, err
	}
	log.Info("resolving contract artifact")
	factory, err := d.ResolveFactory(descriptor)
	if err != nil {
		log.With("err", err.Error()).Error("artifact resolution failed")
		return Result{}, attempt.fail(err)
	}

	if err := attempt.advance(StateSubmitting); err != nil {
		return Result{}, err
	}
	d.progress.Deploying(factory.Descriptor(), d.target.Network)
	log.With("sender", d.sender.Hex()).Info("submitting contract construction")
	pending, err := d.SubmitConstruction(ctx, factory)
	if err != nil {
		log.With("err", err.Error()).Error("contract construction submission failed")
		return Result{}, attempt.fail(err)
	}
	d.progress.Submitted(pending)

	if err := attempt.advance(StateAwaitingConfirmation); err != nil {
		return Result{}, err
	}
	log.
		With("tx_hash", pending.TxHash.Hex()).
		With("timeout", d.options.ConfirmationTimeout).
		Info("waiting for deployment confirmation")
	result, err := d.AwaitConfirmation(ctx, pending)
	if err != nil {
		log.With("err", err.Error()).Error("contract deployment was not confirmed")
		return Result{}, attempt.fail(err)
	}

	if err := attempt.advance(StateConfirmed); err != nil {
		return Result{}, err
	}
	log.
		With("address", result.Address.Hex()).
		With("block", result.BlockNumber).
		Info("contract deployed")
	d.progress.Deployed(result)

	return result, nil
}

// ResolveFactory looks up the compiled artifact for descriptor.
func (d *Deployer) ResolveFactory(descriptor artifacts.Descriptor) (Factory, error) {
	artifact, err := d.registry.Resolve(descriptor)
	if err != nil {
		return Factory{}, fmt.Errorf("%w: %w", ErrArtifactNotFound, err)
	}

	return Factory{artifact: artifact}, nil
}

// SubmitConstruction sends a contract creation transaction without constructor
// arguments. The chain ID is fetched first so that an unreachable network fails
// before any nonce is used.
func (d *Deployer) SubmitConstruction(ctx context.Context, factory Factory) (PendingDeployment, error) {
	artifact := factory.artifact
	if inputs := artifact.ConstructorInputs(); inputs > 0 {
		return PendingDeployment{}, fmt.Errorf("%w: constructor of %s expects %d argument(s), none are supplied", ErrSubmission, artifact.Descriptor, inputs)
	}

	submitCtx, cancel := context.WithTimeout(ctx, d.options.DialTimeout)
	defer cancel()

	d.logger.With("url", d.target.URL).Debug("dialing network endpoint")
	backend, err := d.dial(submitCtx, d.target.URL)
	if err != nil {
		return PendingDeployment{}, fmt.Errorf("%w: failed to connect to network '%s': %w", ErrNetworkUnavailable, d.target.Network, err)
	}

	chainID, err := backend.ChainID(submitCtx)
	if err != nil {
		backend.Close()
		if isEndpointResponse(err) {
			return PendingDeployment{}, fmt.Errorf("%w: network '%s' rejected the request: %w", ErrSubmission, d.target.Network, err)
		}
		return PendingDeployment{}, fmt.Errorf("%w: network '%s' did not respond: %w", ErrNetworkUnavailable, d.target.Network, err)
	}
	d.logger.With("chain_id", chainID).Debug("chain ID was fetched")

	auth, err := bind.NewKeyedTransactorWithChainID(d.privateKey, chainID)
	if err != nil {
		backend.Close()
		return PendingDeployment{}, fmt.Errorf("%w: failed to create transactor: %w", ErrSubmission, err)
	}
	auth.Context = submitCtx
	if d.options.GasLimit > 0 {
		auth.GasLimit = d.options.GasLimit
	}

	address, tx, _, err := bind.DeployContract(auth, artifact.ABI, artifact.Bytecode, backend)
	if err != nil {
		backend.Close()
		return PendingDeployment{}, fmt.Errorf("%w: failed to deploy %s: %w", ErrSubmission, artifact.Descriptor, err)
	}

	d.logger.
		With("address", address).
		With("tx_hash", tx.Hash().Hex()).
		With("nonce", tx.Nonce()).
		Info("contract deployment transaction sent")

	return PendingDeployment{
		Descriptor: artifact.Descriptor,
		Address:    address,
		TxHash:     tx.Hash(),
		Sender:     d.sender,
		ChainID:    chainID,
		tx:         tx,
		backend:    backend,
	}, nil
}

// AwaitConfirmation blocks until the construction transaction is included,
// ConfirmationTimeout elapses or ctx is done. It releases the backend.
func (d *Deployer) AwaitConfirmation(ctx context.Context, pending PendingDeployment) (Result, error) {
	if pending.tx == nil || pending.backend == nil {
		return Result{}, fmt.Errorf("%w: deployment of %s was never submitted", ErrSubmission, pending.Descriptor)
	}
	defer pending.backend.Close()

	waitCtx, cancel := context.WithTimeout(ctx, d.options.ConfirmationTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, pending.backend, pending.tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{}, fmt.Errorf("%w: transaction %s not included within %s: %w", ErrConfirmationTimeout, pending.TxHash.Hex(), d.options.ConfirmationTimeout, err)
		}
		return Result{}, fmt.Errorf("%w: failed to wait for transaction %s: %w", ErrConfirmationTimeout, pending.TxHash.Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return Result{}, fmt.Errorf("%w: contract deployment transaction %s reverted with status %d", ErrSubmission, pending.TxHash.Hex(), receipt.Status)
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = pending.Address
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	return Result{
		Network:     d.target.Network,
		Descriptor:  pending.Descriptor,
		Address:     address,
		TxHash:      pending.TxHash,
		BlockNumber: blockNumber,
		ChainID:     pending.ChainID.Uint64(),
		Sender:      pending.Sender,
		GasUsed:     receipt.GasUsed,
	}, nil
}

// isEndpointResponse reports whether err came back from a reachable endpoint:
// a non-2xx HTTP status or a JSON-RPC error object.
func isEndpointResponse(err error) bool {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return true
	}
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

type nopProgress struct{}

func (nopProgress) Deploying(artifacts.Descriptor, string) {}
func (nopProgress) Submitted(PendingDeployment)            {}
func (nopProgress) Deployed(Result)                        {}
