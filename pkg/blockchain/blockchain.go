package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/singnet/hmy-deploy-go/pkg/config"
	"github.com/singnet/hmy-deploy-go/pkg/wallet"
	"go.uber.org/zap"
)

// ErrChainIDMismatch is returned by Dial when the node serves a different
// chain than the profile selects.
var ErrChainIDMismatch = errors.New("chain id mismatch")

// EVMClient is a connected provider bound to one signing account.
type EVMClient struct {
	Client  *ethclient.Client
	ChainID *big.Int

	account *wallet.Account
	opts    config.ProviderOptions
}

// Dial connects to opts.Endpoint and verifies the node's chain ID against
// the EIP-155 chain ID of the selected shard.
func Dial(ctx context.Context, opts config.ProviderOptions, account *wallet.Account) (*EVMClient, error) {
	opts.Timeouts = opts.Timeouts.WithDefaults()

	dctx, cancel := withTimeout(ctx, opts.Timeouts.Dial)
	defer cancel()
	client, err := ethclient.DialContext(dctx, opts.Endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("endpoint", opts.Endpoint), zap.Error(err))
		return nil, err
	}

	evm, err := NewEVMClient(ctx, client, opts, account)
	if err != nil {
		client.Close()
		return nil, err
	}
	return evm, nil
}

// NewEVMClient wraps an already connected client. It performs the same
// chain ID check as Dial.
func NewEVMClient(ctx context.Context, client *ethclient.Client, opts config.ProviderOptions, account *wallet.Account) (*EVMClient, error) {
	if account == nil || account.PrivateKey == nil {
		return nil, errors.New("signing account is required")
	}
	opts.Timeouts = opts.Timeouts.WithDefaults()

	cctx, cancel := withTimeout(ctx, opts.Timeouts.ChainRead)
	defer cancel()
	got, err := client.ChainID(cctx)
	if err != nil {
		zap.L().Error("failed to get chain ID", zap.Error(err))
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	want := opts.EVMChainID()
	if got.Cmp(want) != 0 {
		return nil, fmt.Errorf("%w: node reports %s, profile expects %s (%s shard %d)",
			ErrChainIDMismatch, got, want, opts.Chain, opts.ShardID)
	}

	zap.L().Debug("connected to node",
		zap.String("endpoint", opts.Endpoint),
		zap.Stringer("chainID", got),
		zap.Stringer("account", account))

	return &EVMClient{
		Client:  client,
		ChainID: got,
		account: account,
		opts:    opts,
	}, nil
}

// Address returns the signing account address.
func (evm *EVMClient) Address() common.Address {
	return evm.account.Address
}

// Balance returns the native balance of the signing account in atto.
func (evm *EVMClient) Balance(ctx context.Context) (*big.Int, error) {
	return evm.BalanceOf(ctx, evm.account.Address)
}

// BalanceOf returns the native balance of addr in atto.
func (evm *EVMClient) BalanceOf(ctx context.Context, addr common.Address) (*big.Int, error) {
	c, cancel := withTimeout(ctx, evm.opts.Timeouts.ChainRead)
	defer cancel()
	bal, err := evm.Client.BalanceAt(c, addr, nil)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Stringer("address", addr), zap.Error(err))
		return nil, err
	}
	return bal, nil
}

// GetCurrentBlockNumber returns the latest block number.
func (evm *EVMClient) GetCurrentBlockNumber(ctx context.Context) (uint64, error) {
	c, cancel := withTimeout(ctx, evm.opts.Timeouts.ChainRead)
	defer cancel()
	n, err := evm.Client.BlockNumber(c)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// Close releases the underlying connection.
func (evm *EVMClient) Close() {
	if evm != nil && evm.Client != nil {
		evm.Client.Close()
	}
}

// withTimeout returns ctx unchanged if d <= 0, otherwise returns a child context with timeout d.
// The returned cancel function is always non-nil and should be called to release resources.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
