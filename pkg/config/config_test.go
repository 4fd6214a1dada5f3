package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeouts_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		timeouts Timeouts
		want     Timeouts
	}{
		{
			name:     "empty timeouts",
			timeouts: Timeouts{},
			want: Timeouts{
				Dial:        5 * time.Second,
				ChainRead:   12 * time.Second,
				ChainSubmit: 25 * time.Second,
				ReceiptWait: 90 * time.Second,
				Compile:     60 * time.Second,
				Storage:     60 * time.Second,
			},
		},
		{
			name: "partial timeouts",
			timeouts: Timeouts{
				Dial:      time.Second,
				ChainRead: 10 * time.Second,
			},
			want: Timeouts{
				Dial:        time.Second,
				ChainRead:   10 * time.Second,
				ChainSubmit: 25 * time.Second,
				ReceiptWait: 90 * time.Second,
				Compile:     60 * time.Second,
				Storage:     60 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.timeouts.WithDefaults()
			if got != tt.want {
				t.Errorf("WithDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChainIdentifier_EVMChainID(t *testing.T) {
	tests := []struct {
		name  string
		chain ChainIdentifier
		shard uint32
		want  string
	}{
		{"testnet shard 0", HarmonyTestnet.Chain, 0, "1666700000"},
		{"testnet shard 3", HarmonyTestnet.Chain, 3, "1666700003"},
		{"mainnet shard 1", HarmonyMainnet.Chain, 1, "1666600001"},
		{"harmony without base", ChainIdentifier{Type: ChainTypeHarmony, ID: 1}, 0, "1666600000"},
		{"pangaea without base", ChainIdentifier{Type: ChainTypeHarmony, ID: 3}, 2, "1666800002"},
		{"ethereum", ChainIdentifier{Type: ChainTypeEthereum, ID: 1337}, 5, "1337"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chain.EVMChainID(tt.shard).String(); got != tt.want {
				t.Errorf("EVMChainID() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNetwork_Presets(t *testing.T) {
	if HarmonyTestnet.Chain.ID != 2 {
		t.Errorf("HarmonyTestnet.Chain.ID = %d, want 2", HarmonyTestnet.Chain.ID)
	}
	if HarmonyMainnet.Chain.ID != 1 {
		t.Errorf("HarmonyMainnet.Chain.ID = %d, want 1", HarmonyMainnet.Chain.ID)
	}
	for name, n := range Networks {
		if n.Name != name {
			t.Errorf("Networks[%q].Name = %q", name, n.Name)
		}
		if _, err := ValidateEndpoint(n.Endpoint); err != nil {
			t.Errorf("preset %s has invalid endpoint: %v", name, err)
		}
	}
}

func TestGas_PriceWeiIsACopy(t *testing.T) {
	g := Gas{Price: 1000000000}
	p := g.PriceWei()
	p.SetInt64(1)
	if g.PriceWei().Uint64() != 1000000000 {
		t.Fatal("PriceWei must not alias the profile")
	}
}

func TestGasLimit_String(t *testing.T) {
	if got := (GasLimit{Auto: true}).String(); got != "auto" {
		t.Errorf("String() = %q, want auto", got)
	}
	if got := (GasLimit{Value: 6721975}).String(); got != "6721975" {
		t.Errorf("String() = %q, want 6721975", got)
	}
}

func TestNetworkProfile_LogNeverContainsSecret(t *testing.T) {
	const phrase = "test test test test test test test test test test test junk"
	lookup := MapLookup(map[string]string{"MNEMONIC": phrase})

	p, err := Build(validSettings(), "testnet", EnvKeys{}, lookup)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Info("profile", zap.Object("profile", p))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()["profile"].(map[string]interface{})
	if fields["secret"] != "env:MNEMONIC" {
		t.Errorf("secret field = %v, want env:MNEMONIC", fields["secret"])
	}
	for k, v := range fields {
		if s, ok := v.(string); ok && strings.Contains(s, "junk") {
			t.Fatalf("field %s leaks the secret phrase", k)
		}
	}
}

func TestProviderOptions(t *testing.T) {
	lookup := MapLookup(map[string]string{"MNEMONIC": "x", "SHARD": "1"})
	p, err := Build(validSettings(), "testnet", EnvKeys{}, lookup)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	opts := p.ProviderOptions()
	if opts.Endpoint != p.Endpoint {
		t.Errorf("Endpoint = %v, want %v", opts.Endpoint, p.Endpoint)
	}
	if opts.ShardID != 1 {
		t.Errorf("ShardID = %v, want 1", opts.ShardID)
	}
	if opts.EVMChainID().Cmp(p.EVMChainID()) != 0 {
		t.Errorf("EVMChainID = %v, want %v", opts.EVMChainID(), p.EVMChainID())
	}
	if opts.EVMChainID().String() != "1666700001" {
		t.Errorf("EVMChainID = %v, want 1666700001", opts.EVMChainID())
	}
}
