package config

import (
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

// GasLimitAuto is the gas limit sentinel that defers to node estimation.
const GasLimitAuto = "auto"

// Loader assembles a NetworkProfile from a settings file and environment
// variables. The zero value reads the process environment with the
// default variable names.
type Loader struct {
	// SettingsPath is the static settings file (required).
	SettingsPath string
	// DotEnvPath is an optional dotenv file layered under Lookup.
	DotEnvPath string
	// Network selects an entry of the settings file. It may be empty when
	// the file holds a single network.
	Network string
	// Keys overrides the environment variable names.
	Keys EnvKeys
	// Lookup reads environment variables; os.LookupEnv when nil.
	Lookup LookupFunc
}

// Load reads the settings file named by path and the process environment,
// and returns the validated profile of network.
func Load(path, network string) (NetworkProfile, error) {
	return Loader{SettingsPath: path, Network: network}.Load()
}

// Load reads and validates the configuration. It does no network I/O.
func (l Loader) Load() (NetworkProfile, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if l.DotEnvPath != "" {
		var err error
		lookup, err = WithDotEnv(lookup, l.DotEnvPath)
		if err != nil {
			return NetworkProfile{}, configErr(ErrInvalidSettings, l.DotEnvPath, "", err)
		}
	}

	settings, err := ReadSettings(l.SettingsPath)
	if err != nil {
		return NetworkProfile{}, err
	}

	profile, err := Build(settings, l.Network, l.Keys, lookup)
	if err != nil {
		return NetworkProfile{}, err
	}
	zap.L().Debug("network profile loaded", zap.Object("profile", profile))
	return profile, nil
}

// Build validates settings against the environment and returns the
// profile of the selected network. The secret reference is checked first,
// so a missing credential is reported before any other problem.
func Build(settings *Settings, network string, keys EnvKeys, lookup LookupFunc) (NetworkProfile, error) {
	keys = keys.withDefaults()
	if lookup == nil {
		lookup = os.LookupEnv
	}

	name, ns, err := selectNetwork(settings, network)
	if err != nil {
		return NetworkProfile{}, err
	}

	secret, err := secretRef(ns.Wallet.Secret, keys.Mnemonic)
	if err != nil {
		return NetworkProfile{}, err
	}
	if !secret.Available(lookup) {
		return NetworkProfile{}, configErr(ErrMissingCredential, secret.String(), "", nil)
	}

	p := NetworkProfile{
		Name:        name,
		Storage:     settings.Storage,
		GasReporter: settings.GasReporter,
		Debug:       settings.Debug,
	}

	if p.Chain, err = chainIdentifier(ns); err != nil {
		return NetworkProfile{}, err
	}

	p.ShardID, err = parseShard(pick(lookup, keys.Shard, string(ns.Shard)))
	if err != nil {
		return NetworkProfile{}, err
	}
	p.Gas.Limit, err = ParseGasLimit(pick(lookup, keys.GasLimit, string(ns.GasLimit)))
	if err != nil {
		return NetworkProfile{}, err
	}
	p.Gas.Price, err = parseUint("gas_price", pick(lookup, keys.GasPrice, string(ns.GasPrice)), 64)
	if err != nil {
		return NetworkProfile{}, err
	}

	endpoint := ns.Endpoint
	if endpoint == "" {
		if preset, ok := Networks[ns.Preset]; ok {
			endpoint = preset.Endpoint
		}
	}
	if p.Endpoint, err = ValidateEndpoint(endpoint); err != nil {
		return NetworkProfile{}, err
	}

	count := uint32(1)
	if ns.Wallet.Count != nil {
		count = *ns.Wallet.Count
	}
	p.Wallet = WalletDerivation{Secret: secret, Index: ns.Wallet.Index, Count: count}
	if err = p.Wallet.Validate(); err != nil {
		return NetworkProfile{}, err
	}

	p.Compiler = Compiler{
		Version:          strings.TrimPrefix(strings.TrimSpace(settings.Compiler.Version), "v"),
		OptimizerEnabled: settings.Compiler.Optimizer.Enabled,
		OptimizerRuns:    settings.Compiler.Optimizer.Runs,
		EVMVersion:       settings.Compiler.EVMVersion,
	}
	if err = p.Compiler.Validate(); err != nil {
		return NetworkProfile{}, err
	}

	timeouts, err := settings.Timeouts.Timeouts()
	if err != nil {
		return NetworkProfile{}, err
	}
	p.Timeouts = timeouts.WithDefaults()

	return p, nil
}

// Validate checks the account index against the account count. Only the
// 0-th account is supported by the signing path.
func (w WalletDerivation) Validate() error {
	if w.Count == 0 {
		return configErr(ErrInvalidAccount, "wallet.count", "0", nil)
	}
	if w.Index >= w.Count {
		return configErr(ErrInvalidAccount, "wallet.index",
			strconv.FormatUint(uint64(w.Index), 10), nil)
	}
	if w.Index != 0 {
		return configErr(ErrUnsupported, "wallet.index",
			strconv.FormatUint(uint64(w.Index), 10), nil)
	}
	return nil
}

// Validate checks that the compiler version is a semantic version.
// Optimizer runs are not checked: they are ignored when the optimizer is off.
func (c Compiler) Validate() error {
	if c.Version == "" {
		return configErr(ErrInvalidSettings, "compiler.version", "", nil)
	}
	if _, err := semver.StrictNewVersion(c.Version); err != nil {
		return configErr(ErrInvalidSettings, "compiler.version", c.Version, err)
	}
	return nil
}

// ValidateEndpoint checks that raw is an absolute http(s) or ws(s) URL with
// a host and returns it trimmed.
func ValidateEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", configErr(ErrInvalidEndpoint, "endpoint", "", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", configErr(ErrInvalidEndpoint, "endpoint", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return "", configErr(ErrInvalidEndpoint, "endpoint", raw, nil)
	}
	if u.Hostname() == "" {
		return "", configErr(ErrInvalidEndpoint, "endpoint", raw, nil)
	}
	return raw, nil
}

// ParseGasLimit parses a gas limit: a non-negative integer or "auto".
// An empty value means "auto".
func ParseGasLimit(raw string) (GasLimit, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, GasLimitAuto) {
		return GasLimit{Auto: true}, nil
	}
	v, err := parseUint("gas_limit", raw, 64)
	if err != nil {
		return GasLimit{}, err
	}
	return GasLimit{Value: v}, nil
}

func parseShard(raw string) (uint32, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	v, err := parseUint("shard", raw, 32)
	return uint32(v), err
}

func parseUint(field, raw string, bits int) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, configErr(ErrInvalidNumeric, field, raw, err)
	}
	return v, nil
}

// pick returns the environment value of key when set, else fallback.
func pick(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func secretRef(raw, defaultEnv string) (SecretRef, error) {
	if strings.TrimSpace(raw) == "" {
		return SecretRef{Source: SecretFromEnv, Key: defaultEnv}, nil
	}
	ref, err := ParseSecretRef(raw)
	if err != nil {
		return SecretRef{}, configErr(ErrMissingCredential, "wallet.secret", "", err)
	}
	return ref, nil
}

func selectNetwork(settings *Settings, name string) (string, NetworkSettings, error) {
	if len(settings.Networks) == 0 {
		return "", NetworkSettings{}, configErr(ErrInvalidSettings, "networks", "", nil)
	}
	if name == "" {
		if len(settings.Networks) > 1 {
			names := make([]string, 0, len(settings.Networks))
			for n := range settings.Networks {
				names = append(names, n)
			}
			sort.Strings(names)
			return "", NetworkSettings{}, configErr(ErrInvalidSettings, "network",
				"", &ambiguousNetworkError{names: names})
		}
		for n, ns := range settings.Networks {
			return n, ns, nil
		}
	}
	ns, ok := settings.Networks[name]
	if !ok {
		return "", NetworkSettings{}, configErr(ErrInvalidSettings, "network", name, nil)
	}
	return name, ns, nil
}

func chainIdentifier(ns NetworkSettings) (ChainIdentifier, error) {
	var id ChainIdentifier
	if ns.Preset != "" {
		preset, ok := Networks[ns.Preset]
		if !ok {
			return ChainIdentifier{}, configErr(ErrInvalidSettings, "preset", ns.Preset, nil)
		}
		id = preset.Chain
	}
	if ns.ChainType != "" {
		id.Type = ChainType(strings.ToLower(ns.ChainType))
	}
	if ns.ChainID != 0 {
		id.ID = ns.ChainID
	}
	if ns.EthChainIDBase != 0 {
		id.EthChainIDBase = ns.EthChainIDBase
	}
	if id.Type == "" {
		id.Type = ChainTypeHarmony
	}
	if !id.Type.Valid() {
		return ChainIdentifier{}, configErr(ErrInvalidSettings, "chain_type", string(id.Type), nil)
	}
	if id.ID == 0 {
		return ChainIdentifier{}, configErr(ErrInvalidSettings, "chain_id", "", nil)
	}
	return id, nil
}

type ambiguousNetworkError struct {
	names []string
}

func (e *ambiguousNetworkError) Error() string {
	return "network not selected, settings define " + strings.Join(e.names, ", ")
}
