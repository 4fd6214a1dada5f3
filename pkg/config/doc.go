// Package config provides configuration management for contract builds and
// deployments on Harmony.
//
// A NetworkProfile is assembled once at process start from a static settings
// file and the process environment, validated, and never mutated afterwards.
//
// # Settings File
//
// The settings file can be JSON, TOML or YAML; the format follows the file
// extension. A minimal TOML file:
//
//	[networks.testnet]
//	preset   = "testnet"
//	endpoint = "https://api.s0.b.hmny.io"
//
//	[compiler]
//	version = "0.5.17"
//
//	[compiler.optimizer]
//	enabled = true
//	runs    = 200
//
// # Environment
//
// Four variables complete the profile. Their names can be changed with EnvKeys:
//
//	MNEMONIC   secret phrase of the deploying wallet (required)
//	SHARD      shard number, default 0
//	GASLIMIT   gas limit or "auto"
//	GASPRICE   gas price in atto
//
// A dotenv file can be layered under the process environment with
// Loader.DotEnvPath; process variables win.
//
// # Loading
//
//	profile, err := config.Loader{
//		SettingsPath: "deploy.toml",
//		DotEnvPath:   ".env",
//		Network:      "testnet",
//	}.Load()
//	if err != nil {
//		log.Fatalf("invalid configuration: %v", err)
//	}
//
// # Secrets
//
// The secret phrase is never stored in the profile. WalletDerivation.Secret
// is a SecretRef ("env:MNEMONIC" or "file:/run/secrets/mnemonic") and the
// phrase is read with SecretRef.Resolve only where a key is derived. The
// loader checks that the reference resolves, then drops the value.
//
// # Errors
//
// All failures are *ConfigurationError values whose Kind can be matched with
// errors.Is:
//
//	ErrMissingCredential  secret phrase reference missing or empty
//	ErrInvalidNumeric     shard or gas values are not integers
//	ErrInvalidEndpoint    endpoint missing or not an http(s)/ws(s) URL
//	ErrInvalidAccount     account index outside [0, count)
//	ErrUnsupported        account index other than 0
//	ErrInvalidSettings    settings file unreadable or inconsistent
//
// # Networks
//
// Predefined Harmony networks are HarmonyMainnet, HarmonyTestnet,
// HarmonyLocal and HarmonyPangaea. Transactions on Harmony are signed with
// the EIP-155 chain ID of the shard, see NetworkProfile.EVMChainID.
package config
