package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const tomlSettings = `
debug = true

[networks.testnet]
endpoint   = "https://api.s0.b.hmny.io"
chain_type = "harmony"
chain_id   = 2
gas_limit  = "auto"

[networks.testnet.wallet]
secret = "env:HMY_MNEMONIC"
index  = 0
count  = 1

[compiler]
version = "0.5.17"

[compiler.optimizer]
enabled = true
runs    = 200

[gas_reporter]
currency    = "USD"
gas_price   = 31
token_price = "0.0123"

[timeouts]
receipt_wait = "2m"
`

const yamlSettings = `
networks:
  testnet:
    endpoint: https://api.s0.b.hmny.io
    chain_type: harmony
    chain_id: 2
    shard: "1"
compiler:
  version: 0.5.17
  optimizer:
    enabled: true
    runs: 200
storage:
  ipfs_url: http://localhost:5001
`

const jsonSettings = `{
  "networks": {"testnet": {"preset": "testnet"}},
  "compiler": {"version": "0.5.17", "optimizer": {"enabled": false, "runs": 0}}
}`

func TestParseSettings_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
		check  func(t *testing.T, s *Settings)
	}{
		{
			name:   "toml",
			format: ".toml",
			data:   tomlSettings,
			check: func(t *testing.T, s *Settings) {
				ns := s.Networks["testnet"]
				if ns.ChainID != 2 || ns.GasLimit != "auto" {
					t.Errorf("network = %+v", ns)
				}
				if ns.Wallet.Secret != "env:HMY_MNEMONIC" || ns.Wallet.Count == nil || *ns.Wallet.Count != 1 {
					t.Errorf("wallet = %+v", ns.Wallet)
				}
				if !s.Compiler.Optimizer.Enabled || s.Compiler.Optimizer.Runs != 200 {
					t.Errorf("compiler = %+v", s.Compiler)
				}
				if s.GasReporter.GasPriceGwei != 31 || s.GasReporter.Currency != "USD" {
					t.Errorf("gas reporter = %+v", s.GasReporter)
				}
				if !s.Debug {
					t.Error("debug should be set")
				}
			},
		},
		{
			name:   "yaml",
			format: "yml",
			data:   yamlSettings,
			check: func(t *testing.T, s *Settings) {
				if s.Networks["testnet"].Shard != "1" {
					t.Errorf("shard = %q, want 1", s.Networks["testnet"].Shard)
				}
				if s.Compiler.Version != "0.5.17" {
					t.Errorf("version = %q, want 0.5.17", s.Compiler.Version)
				}
				if s.Storage.IpfsURL != "http://localhost:5001" {
					t.Errorf("ipfs url = %q", s.Storage.IpfsURL)
				}
			},
		},
		{
			name:   "json",
			format: ".json",
			data:   jsonSettings,
			check: func(t *testing.T, s *Settings) {
				if s.Networks["testnet"].Preset != "testnet" {
					t.Errorf("preset = %q", s.Networks["testnet"].Preset)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSettings([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ParseSettings() error = %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestParseSettings_IntegerNetworkValues(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"toml", "[networks.testnet]\npreset = \"testnet\"\nshard = 1\ngas_limit = 6721975\ngas_price = 1000000000\n"},
		{"json", `{"networks": {"testnet": {"preset": "testnet", "shard": 1, "gas_limit": 6721975, "gas_price": 1000000000}}}`},
		{"yaml", "networks:\n  testnet:\n    preset: testnet\n    shard: 1\n    gas_limit: 6721975\n    gas_price: 1000000000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			s, err := ParseSettings([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ParseSettings() error = %v", err)
			}
			ns := s.Networks["testnet"]
			if ns.Shard != "1" || ns.GasLimit != "6721975" || ns.GasPrice != "1000000000" {
				t.Errorf("network = %+v, want shard 1, gas 6721975 / 1000000000", ns)
			}
			if ns.Preset != "testnet" {
				t.Errorf("preset = %q, want testnet", ns.Preset)
			}
		})
	}
}

func TestParseSettings_IntegerValuesReachProfile(t *testing.T) {
	s, err := ParseSettings([]byte(`{
		"networks": {"testnet": {"preset": "testnet", "shard": 1, "gas_limit": 6721975, "gas_price": 1000000000}},
		"compiler": {"version": "0.5.17"}
	}`), "json")
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}
	p, err := Build(s, "testnet", EnvKeys{}, MapLookup(map[string]string{"MNEMONIC": "test test test test test test test test test test test junk"}))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.ShardID != 1 || p.Gas.Limit.Value != 6721975 || p.Gas.Price != 1000000000 {
		t.Errorf("profile shard %d gas %+v price %d", p.ShardID, p.Gas.Limit, p.Gas.Price)
	}
}

func TestParseSettings_NumericRejectsOtherTypes(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"json", `{"networks": {"testnet": {"shard": true}}}`},
		{"json", `{"networks": {"testnet": {"gas_limit": {"value": 1}}}}`},
		{"toml", "[networks.testnet]\nshard = true\n"},
		{"toml", "[networks.testnet]\ngas_price = 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format+" "+tt.data, func(t *testing.T) {
			if _, err := ParseSettings([]byte(tt.data), tt.format); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseSettings_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"json", `{"networks": {}, "mnemonic": "oops"}`},
		{"toml", "mnemonic = \"oops\"\n"},
		{"yaml", "mnemonic: oops\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if _, err := ParseSettings([]byte(tt.data), tt.format); err == nil {
				t.Fatal("expected error for unknown key")
			}
		})
	}
}

func TestParseSettings_UnsupportedFormat(t *testing.T) {
	if _, err := ParseSettings([]byte("{}"), ".ini"); err == nil {
		t.Fatal("expected error for .ini")
	}
}

func TestReadSettings_LoadsTOMLProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.toml")
	if err := os.WriteFile(path, []byte(tomlSettings), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Loader{
		SettingsPath: path,
		Lookup:       MapLookup(map[string]string{"HMY_MNEMONIC": "phrase"}),
	}.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !p.Gas.Limit.Auto {
		t.Errorf("Gas.Limit = %+v, want auto", p.Gas.Limit)
	}
	if p.Timeouts.ReceiptWait != 2*time.Minute {
		t.Errorf("ReceiptWait = %v, want 2m", p.Timeouts.ReceiptWait)
	}
	if !p.Debug {
		t.Error("Debug should be carried into the profile")
	}
}

func TestTimeoutSettings_Invalid(t *testing.T) {
	_, err := TimeoutSettings{Dial: "soon"}.Timeouts()
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("error = %v, want invalid settings", err)
	}
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in      string
		want    SecretRef
		wantErr bool
	}{
		{in: "env:MNEMONIC", want: SecretRef{Source: SecretFromEnv, Key: "MNEMONIC"}},
		{in: "MNEMONIC", want: SecretRef{Source: SecretFromEnv, Key: "MNEMONIC"}},
		{in: "file:/run/secrets/m", want: SecretRef{Source: SecretFromFile, Key: "/run/secrets/m"}},
		{in: "vault:x", wantErr: true},
		{in: "env:", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSecretRef(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSecretRef() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSecretRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
