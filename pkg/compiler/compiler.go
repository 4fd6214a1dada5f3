// Package compiler drives the Solidity compiler selected by a network
// profile. It builds solc standard-JSON input from the profile's optimizer
// settings, runs solc and turns its output into artifacts.
package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/singnet/hmy-deploy-go/pkg/config"
)

var (
	// ErrCompilationFailed is returned when solc reports errors.
	ErrCompilationFailed = errors.New("failed to compile contract code")
	// ErrVersionMismatch is returned when the solc binary is not the
	// configured release.
	ErrVersionMismatch = errors.New("solc version mismatch")
	// ErrUnsupportedForChain flags a compiler release the chain is known
	// not to handle well.
	ErrUnsupportedForChain = errors.New("compiler version not recommended for chain")
	// ErrDuplicateContract is returned when two sources declare a contract
	// of the same name, which would map to the same artifact file.
	ErrDuplicateContract = errors.New("duplicate contract name")
)

// harmonyMaxSolc: Harmony is only known to work with solc releases strictly below 0.6.0.
var harmonyMaxSolc = semver.MustParse("0.6.0")

// Settings is the compiler view of a network profile.
type Settings struct {
	Version          string
	OptimizerEnabled bool
	OptimizerRuns    uint64
	EVMVersion       string
}

// FromProfile extracts the compiler settings of a profile.
func FromProfile(p config.NetworkProfile) Settings {
	return Settings{
		Version:          p.Compiler.Version,
		OptimizerEnabled: p.Compiler.OptimizerEnabled,
		OptimizerRuns:    p.Compiler.OptimizerRuns,
		EVMVersion:       p.Compiler.EVMVersion,
	}
}

// CheckChainCompatibility returns an error wrapping ErrUnsupportedForChain
// when version is known to misbehave on the chain type. Callers usually
// log it as a warning.
func CheckChainCompatibility(version string, chain config.ChainType) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parse compiler version %q: %w", version, err)
	}
	if chain == config.ChainTypeHarmony && !v.LessThan(harmonyMaxSolc) {
		return fmt.Errorf("%w: solc %s on %s, use < %s", ErrUnsupportedForChain, v, chain, harmonyMaxSolc)
	}
	return nil
}

// Source is a single Solidity source unit.
type Source struct {
	Content string `json:"content"`
}

// StandardInput is the solc --standard-json input document.
type StandardInput struct {
	Language string            `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings InputSettings     `json:"settings"`
}

// InputSettings is the "settings" object of the standard-JSON input.
type InputSettings struct {
	Optimizer       OptimizerInput                 `json:"optimizer"`
	EVMVersion      string                         `json:"evmVersion,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

// OptimizerInput is the optimizer section. Runs is omitted when the
// optimizer is disabled.
type OptimizerInput struct {
	Enabled bool    `json:"enabled"`
	Runs    *uint64 `json:"runs,omitempty"`
}

// StandardInput builds the solc standard-JSON input for sources
// (source name to content).
func (s Settings) StandardInput(sources map[string]string) StandardInput {
	in := StandardInput{
		Language: "Solidity",
		Sources:  make(map[string]Source, len(sources)),
		Settings: InputSettings{
			Optimizer:  OptimizerInput{Enabled: s.OptimizerEnabled},
			EVMVersion: s.EVMVersion,
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode.object", "evm.deployedBytecode.object"}},
			},
		},
	}
	if s.OptimizerEnabled {
		runs := s.OptimizerRuns
		in.Settings.Optimizer.Runs = &runs
	}
	for name, content := range sources {
		in.Sources[name] = Source{Content: content}
	}
	return in
}

// StandardOutput is the part of the solc --standard-json output we use.
type StandardOutput struct {
	Errors    []Diagnostic                         `json:"errors"`
	Contracts map[string]map[string]ContractOutput `json:"contracts"`
}

// Diagnostic is an error or warning reported by solc.
type Diagnostic struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

func (d Diagnostic) String() string {
	if d.FormattedMessage != "" {
		return d.FormattedMessage
	}
	return d.Type + ": " + d.Message
}

// ContractOutput is the compiled output of one contract.
type ContractOutput struct {
	ABI json.RawMessage `json:"abi"`
	EVM struct {
		Bytecode         bytecodeOutput `json:"bytecode"`
		DeployedBytecode bytecodeOutput `json:"deployedBytecode"`
	} `json:"evm"`
}

type bytecodeOutput struct {
	Object string `json:"object"`
}

// errorsOf splits diagnostics into errors and warnings.
func (o StandardOutput) errorsOf() (errs, warnings []Diagnostic) {
	for _, d := range o.Errors {
		if d.Severity == "error" {
			errs = append(errs, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	return errs, warnings
}

// contractNames returns "source:contract" keys in a stable order.
func (o StandardOutput) contractNames() [][2]string {
	var names [][2]string
	for source, contracts := range o.Contracts {
		for name := range contracts {
			names = append(names, [2]string{source, name})
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i][0] != names[j][0] {
			return names[i][0] < names[j][0]
		}
		return names[i][1] < names[j][1]
	})
	return names
}
