package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings mirrors the static settings file. Numeric values that may also
// come from the environment (shard, gas) are kept as strings here and parsed
// by the loader.
type Settings struct {
	Networks    map[string]NetworkSettings `json:"networks" toml:"networks" yaml:"networks"`
	Compiler    CompilerSettings           `json:"compiler" toml:"compiler" yaml:"compiler"`
	Storage     Storage                    `json:"storage" toml:"storage" yaml:"storage"`
	GasReporter GasReporter                `json:"gas_reporter" toml:"gas_reporter" yaml:"gas_reporter"`
	Timeouts    TimeoutSettings            `json:"timeouts" toml:"timeouts" yaml:"timeouts"`
	Debug       bool                       `json:"debug" toml:"debug" yaml:"debug"`
}

// NetworkSettings is one entry of the networks table. Preset names one of
// the predefined networks; explicit fields override it.
type NetworkSettings struct {
	Preset         string         `json:"preset,omitempty" toml:"preset,omitempty" yaml:"preset,omitempty"`
	Endpoint       string         `json:"endpoint,omitempty" toml:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ChainType      string         `json:"chain_type,omitempty" toml:"chain_type,omitempty" yaml:"chain_type,omitempty"`
	ChainID        uint64         `json:"chain_id,omitempty" toml:"chain_id,omitempty" yaml:"chain_id,omitempty"`
	EthChainIDBase uint64         `json:"eth_chain_id_base,omitempty" toml:"eth_chain_id_base,omitempty" yaml:"eth_chain_id_base,omitempty"`
	Shard          Numeric        `json:"shard,omitempty" toml:"shard,omitempty" yaml:"shard,omitempty"`
	GasLimit       Numeric        `json:"gas_limit,omitempty" toml:"gas_limit,omitempty" yaml:"gas_limit,omitempty"`
	GasPrice       Numeric        `json:"gas_price,omitempty" toml:"gas_price,omitempty" yaml:"gas_price,omitempty"`
	Wallet         WalletSettings `json:"wallet" toml:"wallet" yaml:"wallet"`
}

// Numeric holds a value written either as an integer or as a string
// ("auto" for the gas limit). The loader applies the numeric rules, so
// both forms go through the same validation as the environment values.
type Numeric string

// UnmarshalJSON accepts a JSON number or string.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = Numeric(v)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("want a number or a string, got %s", data)
	}
	*n = Numeric(num.String())
	return nil
}

// numericKeys are the network keys that may hold a bare TOML integer.
var numericKeys = []string{"shard", "gas_limit", "gas_price"}

// normalizeTOML rewrites integer values of numericKeys as strings so the
// strict struct decode accepts both forms.
func normalizeTOML(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	networks, ok := raw["networks"].(map[string]any)
	if !ok {
		return data, nil
	}
	changed := false
	for _, entry := range networks {
		ns, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range numericKeys {
			if v, ok := ns[key].(int64); ok {
				ns[key] = strconv.FormatInt(v, 10)
				changed = true
			}
		}
	}
	if !changed {
		return data, nil
	}
	return toml.Marshal(raw)
}

// WalletSettings selects the account derived from the secret phrase.
// Count defaults to 1 when omitted.
type WalletSettings struct {
	Secret string  `json:"secret,omitempty" toml:"secret,omitempty" yaml:"secret,omitempty"`
	Index  uint32  `json:"index" toml:"index" yaml:"index"`
	Count  *uint32 `json:"count,omitempty" toml:"count,omitempty" yaml:"count,omitempty"`
}

// CompilerSettings follows the layout of the solc section of a Truffle config.
type CompilerSettings struct {
	Version    string            `json:"version" toml:"version" yaml:"version"`
	Optimizer  OptimizerSettings `json:"optimizer" toml:"optimizer" yaml:"optimizer"`
	EVMVersion string            `json:"evm_version,omitempty" toml:"evm_version,omitempty" yaml:"evm_version,omitempty"`
}

// OptimizerSettings toggles the solc optimizer.
type OptimizerSettings struct {
	Enabled bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Runs    uint64 `json:"runs" toml:"runs" yaml:"runs"`
}

// TimeoutSettings holds durations as Go duration strings ("5s", "2m").
type TimeoutSettings struct {
	Dial        string `json:"dial,omitempty" toml:"dial,omitempty" yaml:"dial,omitempty"`
	ChainRead   string `json:"chain_read,omitempty" toml:"chain_read,omitempty" yaml:"chain_read,omitempty"`
	ChainSubmit string `json:"chain_submit,omitempty" toml:"chain_submit,omitempty" yaml:"chain_submit,omitempty"`
	ReceiptWait string `json:"receipt_wait,omitempty" toml:"receipt_wait,omitempty" yaml:"receipt_wait,omitempty"`
	Compile     string `json:"compile,omitempty" toml:"compile,omitempty" yaml:"compile,omitempty"`
	Storage     string `json:"storage,omitempty" toml:"storage,omitempty" yaml:"storage,omitempty"`
}

// Timeouts parses the durations. Empty strings stay zero.
func (t TimeoutSettings) Timeouts() (Timeouts, error) {
	var out Timeouts
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"dial", t.Dial, &out.Dial},
		{"chain_read", t.ChainRead, &out.ChainRead},
		{"chain_submit", t.ChainSubmit, &out.ChainSubmit},
		{"receipt_wait", t.ReceiptWait, &out.ReceiptWait},
		{"compile", t.Compile, &out.Compile},
		{"storage", t.Storage, &out.Storage},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil || d < 0 {
			return Timeouts{}, configErr(ErrInvalidSettings, "timeouts."+f.name, f.raw, err)
		}
		*f.dst = d
	}
	return out, nil
}

// ReadSettings reads a settings file. The format is picked by extension:
// .json, .toml, .yaml or .yml. Unknown keys are rejected.
func ReadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configErr(ErrInvalidSettings, path, "", err)
	}
	s, err := ParseSettings(data, filepath.Ext(path))
	if err != nil {
		return nil, configErr(ErrInvalidSettings, path, "", err)
	}
	return s, nil
}

// ParseSettings decodes settings of the given format (".json", ".toml",
// ".yaml", ".yml"; the leading dot is optional).
func ParseSettings(data []byte, format string) (*Settings, error) {
	var s Settings
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "toml":
		data, err := normalizeTOML(data)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
	return &s, nil
}
