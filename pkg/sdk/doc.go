// Package sdk is the high-level entry point of hmy-deploy: it turns a network
// profile into a ready deployer that compiles Solidity sources, deploys the
// resulting artifacts and publishes them to IPFS.
//
// # Quick Start
//
//	import (
//		"github.com/singnet/hmy-deploy-go/pkg/config"
//		"github.com/singnet/hmy-deploy-go/pkg/sdk"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		profile, err := config.Load("hmy.toml", "testnet")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		deployer, err := sdk.NewSDK(ctx, profile, os.LookupEnv)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer deployer.Close()
//
//		artifacts, err := deployer.Compile(ctx, "contracts")
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, a := range artifacts {
//			if !a.Deployable() {
//				continue
//			}
//			deployed, err := deployer.Deploy(ctx, a)
//			if err != nil {
//				log.Fatal(err)
//			}
//			fmt.Println(deployed.Networks)
//		}
//		deployer.Report().WriteTable(os.Stdout)
//	}
//
// # Construction
//
// NewSDK runs in this order and stops at the first failure:
//   - the secret phrase is resolved and the signing account derived
//   - the gas reporter and the storage client are built
//   - the provider is dialed and its chain ID checked
//
// The solc binary is looked up on first use, so profiles that only deploy
// existing artifacts work without a compiler installed.
//
// Options replace the collaborators NewSDK would otherwise build. Tests use
// WithClient with an in-process node, WithToolchain and WithStorage.
//
// # Logging
//
// The package installs a console zap logger at info level in init.
// A profile with Debug set switches it to debug; SetDebug does the same.
// Replace it with zap.ReplaceGlobals for custom logging. The secret phrase
// is never logged.
package sdk
