package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/singnet/hmy-deploy-go/pkg/model"
	"go.uber.org/zap"
)

// ErrTxReverted is returned when a mined transaction has failed status.
var ErrTxReverted = errors.New("tx reverted")

// DefaultMaxBackoff caps the receipt polling interval.
const DefaultMaxBackoff = 8 * time.Second

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, errors.New("private key is required for transactions")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}

// TransactOpts returns signing options carrying the profile gas settings.
// An "auto" gas limit leaves GasLimit at zero so the node estimates it.
// A zero gas price leaves GasPrice nil so the node suggests one.
func (evm *EVMClient) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := GetTransactOpts(evm.ChainID, evm.account.PrivateKey)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	if !evm.opts.Gas.Limit.Auto {
		opts.GasLimit = evm.opts.Gas.Limit.Value
	}
	if evm.opts.Gas.Price > 0 {
		opts.GasPrice = evm.opts.Gas.PriceWei()
	}
	return opts, nil
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. It returns an error if the tx is reverted.
func (evm *EVMClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := 250 * time.Millisecond
	for {
		receipt, err := evm.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w: %s", ErrTxReverted, txHash)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if maxBackoff > 0 && backoff > maxBackoff {
				backoff = maxBackoff
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}

// DeployContract submits the creation transaction of artifact with the
// given constructor arguments and waits for it to be mined.
func (evm *EVMClient) DeployContract(ctx context.Context, artifact model.Artifact, params ...any) (model.Deployment, error) {
	if !artifact.Deployable() {
		return model.Deployment{}, fmt.Errorf("%s has no creation bytecode", artifact.ContractName)
	}
	parsed, err := artifact.ParsedABI()
	if err != nil {
		return model.Deployment{}, fmt.Errorf("abi of %s: %w", artifact.ContractName, err)
	}
	code, err := artifact.BytecodeBytes()
	if err != nil {
		return model.Deployment{}, err
	}

	sctx, cancel := withTimeout(ctx, evm.opts.Timeouts.ChainSubmit)
	defer cancel()
	opts, err := evm.TransactOpts(sctx)
	if err != nil {
		return model.Deployment{}, err
	}

	addr, tx, _, err := bind.DeployContract(opts, parsed, code, evm.Client, params...)
	if err != nil {
		zap.L().Error("failed to deploy contract", zap.String("contract", artifact.ContractName), zap.Error(err))
		return model.Deployment{}, err
	}
	zap.L().Info("deployment submitted",
		zap.String("contract", artifact.ContractName),
		zap.Stringer("tx", tx.Hash()),
		zap.Stringer("address", addr))

	wctx, wcancel := withTimeout(ctx, evm.opts.Timeouts.ReceiptWait)
	defer wcancel()
	receipt, err := evm.WaitForTransaction(wctx, tx.Hash(), DefaultMaxBackoff)
	if err != nil {
		return model.Deployment{}, err
	}

	d := model.Deployment{
		Address:         addr,
		TransactionHash: tx.Hash(),
		GasUsed:         receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		d.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.ContractAddress != (common.Address{}) {
		d.Address = receipt.ContractAddress
	}
	return d, nil
}
