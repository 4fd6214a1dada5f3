// Package blockchain is the provider factory: it turns a network profile and
// a derived account into a connected, signing EVM client for Harmony or any
// Ethereum-compatible chain.
//
// # Connecting
//
// Dial connects to the profile endpoint and refuses nodes serving another
// chain. On Harmony every shard has its own EIP-155 chain ID, so a testnet
// profile for shard 1 only accepts a node reporting 1666700001:
//
//	profile, err := config.Load("hmy.toml", "testnet")
//	if err != nil {
//		log.Fatal(err)
//	}
//	account, err := wallet.FromProfile(profile, os.LookupEnv)
//	if err != nil {
//		log.Fatal(err)
//	}
//	evm, err := blockchain.Dial(ctx, profile.ProviderOptions(), account)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer evm.Close()
//
// NewEVMClient does the same check for a client created elsewhere.
//
// # Transactions
//
// TransactOpts returns signing options carrying the profile gas settings.
// A gas limit of "auto" leaves GasLimit at zero and the node estimates it.
// A zero gas price lets the node suggest one.
//
// DeployContract sends the creation transaction of a compiled artifact and
// waits for the receipt:
//
//	d, err := evm.DeployContract(ctx, artifact)
//	if err != nil {
//		log.Fatal(err)
//	}
//	artifact = artifact.RecordDeployment(evm.ChainID.String(), d, time.Now())
//
// WaitForTransaction polls for receipts with exponential backoff bounded by
// the context. A mined transaction with failed status yields ErrTxReverted.
//
// # Units
//
// OneToAtto, AttoToOne and GweiToWei convert between denominations with
// shopspring/decimal, so no precision is lost to floating point.
//
// # Timeouts
//
// Reads are bounded by Timeouts.ChainRead, submission by Timeouts.ChainSubmit
// and receipt polling by Timeouts.ReceiptWait, on top of the caller's context.
//
// EVMClient is not safe for concurrent mutation. Concurrent reads are fine.
package blockchain
