package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/singnet/hmy-deploy-go/pkg/blockchain"
	"github.com/singnet/hmy-deploy-go/pkg/compiler"
	"github.com/singnet/hmy-deploy-go/pkg/config"
	"github.com/singnet/hmy-deploy-go/pkg/gasreport"
	"github.com/singnet/hmy-deploy-go/pkg/model"
	"github.com/singnet/hmy-deploy-go/pkg/storage"
	"github.com/singnet/hmy-deploy-go/pkg/wallet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Deployer is the public interface of the SDK: compile, deploy and publish
// contracts on the network selected by a profile.
type Deployer interface {
	// Compile compiles every .sol file under dir.
	Compile(ctx context.Context, dir string) ([]model.Artifact, error)
	// CompileBundle fetches a tar or tar.gz source bundle by URI and compiles it.
	CompileBundle(ctx context.Context, uri string) ([]model.Artifact, error)
	// Deploy deploys artifact and returns it with the deployment recorded.
	Deploy(ctx context.Context, artifact model.Artifact, params ...any) (model.Artifact, error)
	// Publish uploads artifact to IPFS and returns its URI.
	Publish(ctx context.Context, artifact model.Artifact) (string, error)
	// Balance returns the signer balance in atto.
	Balance(ctx context.Context) (*big.Int, error)
	Account() *wallet.Account
	Report() *gasreport.Reporter
	// Close releases resources associated with the SDK instance.
	Close()
}

var _ Deployer = (*Core)(nil)

// timeNow stamps recorded deployments.
var timeNow = time.Now

// logLevel is shared by the default logger so NewSDK can switch it to debug.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// SetDebug switches the default logger between debug and info level.
func SetDebug(debug bool) {
	if debug {
		logLevel.SetLevel(zapcore.DebugLevel)
	} else {
		logLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Option customizes NewSDK.
type Option func(*options)

type options struct {
	client    *ethclient.Client
	toolchain compiler.Toolchain
	storage   storage.Storage
}

// WithClient uses an already connected client instead of dialing the
// profile endpoint.
func WithClient(c *ethclient.Client) Option {
	return func(o *options) { o.client = c }
}

// WithToolchain replaces the solc binary lookup.
func WithToolchain(t compiler.Toolchain) Option {
	return func(o *options) { o.toolchain = t }
}

// WithStorage replaces the IPFS/Lighthouse client built from the profile.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// Core is the concrete SDK implementation.
type Core struct {
	profile   config.NetworkProfile
	account   *wallet.Account
	evm       *blockchain.EVMClient
	toolchain compiler.Toolchain
	storage   storage.Storage
	reporter  *gasreport.Reporter
}

// NewSDK derives the signing account from the profile, connects to the
// provider and prepares the compiler and storage clients.
func NewSDK(ctx context.Context, profile config.NetworkProfile, lookup config.LookupFunc, opts ...Option) (*Core, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if profile.Debug {
		SetDebug(true)
	}
	profile.Timeouts = profile.Timeouts.WithDefaults()

	if err := compiler.CheckChainCompatibility(profile.Compiler.Version, profile.Chain.Type); err != nil {
		zap.L().Warn("compiler release may not work on this chain", zap.Error(err))
	}

	account, err := wallet.FromProfile(profile, lookup)
	if err != nil {
		return nil, err
	}

	reporter, err := gasreport.FromProfile(profile.GasReporter)
	if err != nil {
		return nil, err
	}

	st := o.storage
	if st == nil {
		client, err := storage.NewStorage(profile.Storage.IpfsURL, profile.Storage.LighthouseURL)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		client.Timeout = profile.Timeouts.Storage
		st = client
	}

	var evm *blockchain.EVMClient
	if o.client != nil {
		evm, err = blockchain.NewEVMClient(ctx, o.client, profile.ProviderOptions(), account)
	} else {
		evm, err = blockchain.Dial(ctx, profile.ProviderOptions(), account)
	}
	if err != nil {
		zap.L().Error("Init ethereum client failed", zap.Error(err))
		return nil, err
	}

	zap.L().Debug("sdk ready",
		zap.Object("profile", profile),
		zap.String("signer", account.Address.Hex()))

	return &Core{
		profile:   profile,
		account:   account,
		evm:       evm,
		toolchain: o.toolchain,
		storage:   st,
		reporter:  reporter,
	}, nil
}

// Profile returns the profile the SDK was built from.
func (c *Core) Profile() config.NetworkProfile {
	return c.profile
}

// Account returns the signing account.
func (c *Core) Account() *wallet.Account {
	return c.account
}

// GetEvm returns the EVM client for advanced operations.
func (c *Core) GetEvm() *blockchain.EVMClient {
	return c.evm
}

// Report returns the gas reporter fed by Deploy.
func (c *Core) Report() *gasreport.Reporter {
	return c.reporter
}

// Balance returns the signer balance in atto.
func (c *Core) Balance(ctx context.Context) (*big.Int, error) {
	return c.evm.Balance(ctx)
}

func (c *Core) solc() (compiler.Toolchain, error) {
	if c.toolchain != nil {
		return c.toolchain, nil
	}
	solc, err := compiler.NewSolc(compiler.FromProfile(c.profile))
	if err != nil {
		return nil, err
	}
	c.toolchain = solc
	return solc, nil
}

// Compile compiles every .sol file under dir.
func (c *Core) Compile(ctx context.Context, dir string) ([]model.Artifact, error) {
	sources, err := compiler.LoadSources(dir)
	if err != nil {
		return nil, err
	}
	return c.compile(ctx, sources)
}

// CompileBundle fetches a source bundle and compiles the .sol files in it.
func (c *Core) CompileBundle(ctx context.Context, uri string) ([]model.Artifact, error) {
	data, err := c.storage.ReadFile(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle %s: %w", uri, err)
	}
	sources, err := storage.ParseSourceBundle(data)
	if err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", uri, err)
	}
	return c.compile(ctx, sources)
}

func (c *Core) compile(ctx context.Context, sources map[string]string) ([]model.Artifact, error) {
	tc, err := c.solc()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.profile.Timeouts.Compile)
	defer cancel()
	return tc.Compile(ctx, sources)
}

// Deploy deploys artifact, records its gas usage and returns a copy of the
// artifact with the deployment stored under the EIP-155 chain ID.
func (c *Core) Deploy(ctx context.Context, artifact model.Artifact, params ...any) (model.Artifact, error) {
	if err := artifact.Validate(); err != nil {
		return artifact, err
	}
	d, err := c.evm.DeployContract(ctx, artifact, params...)
	if err != nil {
		return artifact, err
	}
	entry := c.reporter.Add(artifact.ContractName, d.GasUsed)
	zap.L().Info("contract deployed",
		zap.String("contract", artifact.ContractName),
		zap.Stringer("address", d.Address),
		zap.Uint64("gasUsed", d.GasUsed),
		zap.Stringer("cost", entry.Cost))
	return artifact.RecordDeployment(c.evm.ChainID.String(), d, timeNow()), nil
}

// Publish uploads artifact to IPFS and returns its "ipfs://" URI.
func (c *Core) Publish(ctx context.Context, artifact model.Artifact) (string, error) {
	if err := artifact.Validate(); err != nil {
		return "", err
	}
	uri, err := c.storage.UploadJSON(ctx, artifact)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", fmt.Errorf("publish %s: set storage.ipfs_url: %w", artifact.ContractName, err)
		}
		return "", err
	}
	return uri, nil
}

// Close shuts down underlying network clients.
func (c *Core) Close() {
	c.evm.Close()
}
