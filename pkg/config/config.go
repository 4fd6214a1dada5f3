package config

import (
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

// ChainType is the symbolic tag of a chain family.
type ChainType string

const (
	// ChainTypeHarmony selects Harmony chain IDs and the Harmony HD path.
	ChainTypeHarmony ChainType = "harmony"
	// ChainTypeEthereum selects plain EVM chain IDs and the Ethereum HD path.
	ChainTypeEthereum ChainType = "ethereum"
)

// Valid reports whether t is a known chain type.
func (t ChainType) Valid() bool {
	return t == ChainTypeHarmony || t == ChainTypeEthereum
}

// ChainIdentifier couples the chain family with its numeric chain ID.
// For Harmony, ID is the Harmony chain ID (1 mainnet, 2 testnet) and the
// EIP-155 signing chain ID is derived from EthChainIDBase and the shard.
type ChainIdentifier struct {
	Type ChainType
	ID   uint64
	// EthChainIDBase is the EIP-155 chain ID of shard 0. Zero picks the
	// well-known base for Harmony, or ID for other chains.
	EthChainIDBase uint64
}

// EVMChainID returns the EIP-155 chain ID used to sign transactions on the
// given shard.
func (c ChainIdentifier) EVMChainID(shard uint32) *big.Int {
	if c.Type == ChainTypeHarmony {
		base := c.EthChainIDBase
		if base == 0 {
			base = harmonyEthChainIDBase(c.ID)
		}
		return new(big.Int).SetUint64(base + uint64(shard))
	}
	if c.EthChainIDBase != 0 {
		return new(big.Int).SetUint64(c.EthChainIDBase)
	}
	return new(big.Int).SetUint64(c.ID)
}

func (c ChainIdentifier) String() string {
	return string(c.Type) + ":" + strconv.FormatUint(c.ID, 10)
}

func harmonyEthChainIDBase(id uint64) uint64 {
	switch id {
	case HarmonyMainnet.Chain.ID:
		return 1666600000
	case HarmonyPangaea.Chain.ID:
		return 1666800000
	default:
		return 1666700000
	}
}

// Network is a predefined network entry.
type Network struct {
	Name     string
	Chain    ChainIdentifier
	Endpoint string
}

// HarmonyMainnet is the Harmony mainnet, shard 0 endpoint.
var HarmonyMainnet = Network{
	Name:     "mainnet",
	Chain:    ChainIdentifier{Type: ChainTypeHarmony, ID: 1, EthChainIDBase: 1666600000},
	Endpoint: "https://api.s0.t.hmny.io",
}

// HarmonyTestnet is the Harmony testnet, shard 0 endpoint.
var HarmonyTestnet = Network{
	Name:     "testnet",
	Chain:    ChainIdentifier{Type: ChainTypeHarmony, ID: 2, EthChainIDBase: 1666700000},
	Endpoint: "https://api.s0.b.hmny.io",
}

// HarmonyLocal is a localnet started with the Harmony test scripts.
var HarmonyLocal = Network{
	Name:     "local",
	Chain:    ChainIdentifier{Type: ChainTypeHarmony, ID: 2, EthChainIDBase: 1666700000},
	Endpoint: "http://localhost:9500",
}

// HarmonyPangaea is the Pangaea game network.
var HarmonyPangaea = Network{
	Name:     "pangaea",
	Chain:    ChainIdentifier{Type: ChainTypeHarmony, ID: 3, EthChainIDBase: 1666800000},
	Endpoint: "https://api.s0.os.hmny.io",
}

// Networks lists the predefined networks by name.
var Networks = map[string]Network{
	HarmonyMainnet.Name: HarmonyMainnet,
	HarmonyTestnet.Name: HarmonyTestnet,
	HarmonyLocal.Name:   HarmonyLocal,
	HarmonyPangaea.Name: HarmonyPangaea,
}

// WalletDerivation describes which account of the secret phrase signs.
// The phrase itself is never part of the profile; Secret only says where
// to find it.
type WalletDerivation struct {
	Secret SecretRef
	Index  uint32
	Count  uint32
}

// GasLimit is either a fixed limit or the "auto" sentinel, which leaves
// estimation to the node.
type GasLimit struct {
	Auto  bool
	Value uint64
}

func (l GasLimit) String() string {
	if l.Auto {
		return GasLimitAuto
	}
	return strconv.FormatUint(l.Value, 10)
}

// Gas holds the transaction gas settings. Price is in atto (wei).
type Gas struct {
	Limit GasLimit
	Price uint64
}

// PriceWei returns the gas price as a fresh big.Int.
func (g Gas) PriceWei() *big.Int {
	return new(big.Int).SetUint64(g.Price)
}

// Compiler selects the solc release and optimizer settings. OptimizerRuns is
// only meaningful when OptimizerEnabled is set.
type Compiler struct {
	Version          string
	OptimizerEnabled bool
	OptimizerRuns    uint64
	// EVMVersion is passed through to solc when set (e.g. "istanbul").
	EVMVersion string
}

// Storage configures where contract source bundles are fetched from and
// where compiled artifacts are published.
type Storage struct {
	IpfsURL       string `json:"ipfs_url" toml:"ipfs_url" yaml:"ipfs_url"`
	LighthouseURL string `json:"lighthouse_url" toml:"lighthouse_url" yaml:"lighthouse_url"`
}

// GasReporter prices deployments in a fiat currency.
type GasReporter struct {
	Currency     string `json:"currency" toml:"currency" yaml:"currency"`
	GasPriceGwei uint64 `json:"gas_price" toml:"gas_price" yaml:"gas_price"`
	// TokenPrice is the fiat price of one native token, as a decimal string.
	TokenPrice string `json:"token_price" toml:"token_price" yaml:"token_price"`
}

// Timeouts controls deadlines of blocking operations.
// Zero values will be replaced by defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // web3 dial/connect
	ChainRead   time.Duration // eth_call, balance etc
	ChainSubmit time.Duration // send tx
	ReceiptWait time.Duration // wait tx
	Compile     time.Duration // solc run
	Storage     time.Duration // ipfs / lighthouse
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	Compile:     60s
//	Storage:     60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.Compile == 0 {
		tt.Compile = 60 * time.Second
	}
	if tt.Storage == 0 {
		tt.Storage = 60 * time.Second
	}
	return tt
}

// NetworkProfile is the validated, immutable result of loading configuration.
// It is built once by Loader.Load and passed by value.
type NetworkProfile struct {
	Name        string
	Chain       ChainIdentifier
	ShardID     uint32
	Endpoint    string
	Wallet      WalletDerivation
	Gas         Gas
	Compiler    Compiler
	Storage     Storage
	GasReporter GasReporter
	Timeouts    Timeouts
	Debug       bool
}

// EVMChainID returns the EIP-155 chain ID of the profile's shard.
func (p NetworkProfile) EVMChainID() *big.Int {
	return p.Chain.EVMChainID(p.ShardID)
}

// ProviderOptions is the part of the profile consumed by the provider factory.
type ProviderOptions struct {
	Endpoint string
	Wallet   WalletDerivation
	ShardID  uint32
	Chain    ChainIdentifier
	Gas      Gas
	Timeouts Timeouts
}

// ProviderOptions returns the provider factory view of the profile.
func (p NetworkProfile) ProviderOptions() ProviderOptions {
	return ProviderOptions{
		Endpoint: p.Endpoint,
		Wallet:   p.Wallet,
		ShardID:  p.ShardID,
		Chain:    p.Chain,
		Gas:      p.Gas,
		Timeouts: p.Timeouts,
	}
}

// EVMChainID returns the EIP-155 chain ID for the options' shard.
func (o ProviderOptions) EVMChainID() *big.Int {
	return o.Chain.EVMChainID(o.ShardID)
}

// MarshalLogObject renders the profile for zap. The secret reference is
// logged by name only.
func (p NetworkProfile) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("network", p.Name)
	enc.AddString("chain", p.Chain.String())
	enc.AddString("evmChainID", p.EVMChainID().String())
	enc.AddUint32("shard", p.ShardID)
	enc.AddString("endpoint", p.Endpoint)
	enc.AddString("secret", p.Wallet.Secret.String())
	enc.AddUint32("accountIndex", p.Wallet.Index)
	enc.AddUint32("accountCount", p.Wallet.Count)
	enc.AddString("gasLimit", p.Gas.Limit.String())
	enc.AddUint64("gasPrice", p.Gas.Price)
	enc.AddString("solc", p.Compiler.Version)
	enc.AddBool("optimizer", p.Compiler.OptimizerEnabled)
	if p.Compiler.OptimizerEnabled {
		enc.AddUint64("optimizerRuns", p.Compiler.OptimizerRuns)
	}
	return nil
}
