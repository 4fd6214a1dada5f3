package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvKeys names the environment variables read by the loader.
type EnvKeys struct {
	Mnemonic string
	Shard    string
	GasLimit string
	GasPrice string
}

// DefaultEnvKeys are the variable names used by the Truffle setup this
// tool replaces.
var DefaultEnvKeys = EnvKeys{
	Mnemonic: "MNEMONIC",
	Shard:    "SHARD",
	GasLimit: "GASLIMIT",
	GasPrice: "GASPRICE",
}

func (k EnvKeys) withDefaults() EnvKeys {
	if k.Mnemonic == "" {
		k.Mnemonic = DefaultEnvKeys.Mnemonic
	}
	if k.Shard == "" {
		k.Shard = DefaultEnvKeys.Shard
	}
	if k.GasLimit == "" {
		k.GasLimit = DefaultEnvKeys.GasLimit
	}
	if k.GasPrice == "" {
		k.GasPrice = DefaultEnvKeys.GasPrice
	}
	return k
}

// MapLookup returns a LookupFunc over a fixed map.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// WithDotEnv layers the variables of a dotenv file under base: a variable
// present in base wins. The file is read once; its values are not exported
// to the process environment.
func WithDotEnv(base LookupFunc, path string) (LookupFunc, error) {
	if base == nil {
		base = os.LookupEnv
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if v, ok := base(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}
