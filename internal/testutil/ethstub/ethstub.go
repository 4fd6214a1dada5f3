// Package ethstub serves a minimal in-process "eth" JSON-RPC namespace for
// tests. It answers the calls ethclient and bind make while dialing, reading
// balances and deploying contracts, and mines every submitted transaction
// immediately.
package ethstub

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultGasUsed is reported in receipts unless Node.GasUsed is set.
const DefaultGasUsed = 21_000

// Node is the state behind the stub.
type Node struct {
	mu sync.Mutex

	ChainID  *big.Int
	Block    uint64
	GasPrice *big.Int
	GasUsed  uint64
	// PendingReceipts makes the first n receipt lookups of each tx return null.
	PendingReceipts int
	// Revert marks every mined tx as failed.
	Revert bool

	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	lookups  map[common.Hash]int
}

// New returns a node reporting chainID.
func New(chainID *big.Int) *Node {
	return &Node{
		ChainID:  new(big.Int).Set(chainID),
		Block:    1,
		GasPrice: big.NewInt(1_000_000_000),
		GasUsed:  DefaultGasUsed,
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		lookups:  make(map[common.Hash]int),
	}
}

// SetBalance sets the balance of addr in wei.
func (n *Node) SetBalance(addr common.Address, wei *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances[addr] = new(big.Int).Set(wei)
}

// Sent returns the transactions submitted so far.
func (n *Node) Sent() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

// Client starts an in-process RPC server for the node and returns a client
// connected to it. Closing the client does not stop the server; use the
// returned stop function.
func (n *Node) Client() (*ethclient.Client, func(), error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethAPI{n: n}); err != nil {
		return nil, nil, err
	}
	client := ethclient.NewClient(rpc.DialInProc(srv))
	return client, func() {
		client.Close()
		srv.Stop()
	}, nil
}

type ethAPI struct {
	n *Node
}

func (api *ethAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.n.ChainID))
}

func (api *ethAPI) BlockNumber() hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.Block)
}

func (api *ethAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.n.GasPrice))
}

func (api *ethAPI) GetBalance(addr common.Address, _ *string) *hexutil.Big {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	if b, ok := api.n.balances[addr]; ok {
		return (*hexutil.Big)(new(big.Int).Set(b))
	}
	return (*hexutil.Big)(new(big.Int))
}

func (api *ethAPI) GetTransactionCount(addr common.Address, _ *string) hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.nonces[addr])
}

func (api *ethAPI) EstimateGas(_ map[string]any, _ *string) hexutil.Uint64 {
	return hexutil.Uint64(api.n.GasUsed * 2)
}

func (api *ethAPI) SendRawTransaction(data hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return common.Hash{}, err
	}
	if tx.ChainId().Cmp(api.n.ChainID) != 0 {
		return common.Hash{}, errors.New("invalid chain id for signer")
	}
	from, err := types.Sender(types.LatestSignerForChainID(api.n.ChainID), tx)
	if err != nil {
		return common.Hash{}, err
	}

	api.n.mu.Lock()
	defer api.n.mu.Unlock()

	nonce := api.n.nonces[from]
	if tx.Nonce() != nonce {
		return common.Hash{}, errors.New("nonce too low")
	}
	api.n.nonces[from] = nonce + 1
	api.n.Block++
	api.n.sent = append(api.n.sent, tx)

	status := types.ReceiptStatusSuccessful
	if api.n.Revert {
		status = types.ReceiptStatusFailed
	}
	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		CumulativeGasUsed: api.n.GasUsed,
		GasUsed:           api.n.GasUsed,
		Logs:              []*types.Log{},
		TxHash:            tx.Hash(),
		BlockNumber:       new(big.Int).SetUint64(api.n.Block),
		EffectiveGasPrice: tx.GasPrice(),
	}
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(from, nonce)
	}
	api.n.receipts[tx.Hash()] = receipt
	return tx.Hash(), nil
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) *types.Receipt {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	r, ok := api.n.receipts[hash]
	if !ok {
		return nil
	}
	if api.n.lookups[hash] < api.n.PendingReceipts {
		api.n.lookups[hash]++
		return nil
	}
	return r
}
