package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact describes one compiled contract and where it has been deployed.
type Artifact struct {
	ContractName     string                `json:"contractName"`
	ABI              json.RawMessage       `json:"abi"`
	Bytecode         string                `json:"bytecode"`
	DeployedBytecode string                `json:"deployedBytecode"`
	SourceName       string                `json:"sourceName"`
	Compiler         CompilerInfo          `json:"compiler"`
	Networks         map[string]Deployment `json:"networks"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// CompilerInfo records the compiler that produced an artifact.
type CompilerInfo struct {
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	Optimizer OptimizerInfo `json:"optimizer"`
}

// OptimizerInfo mirrors the solc optimizer settings used.
type OptimizerInfo struct {
	Enabled bool   `json:"enabled"`
	Runs    uint64 `json:"runs,omitempty"`
}

// Deployment is one deployment of the contract, keyed in Artifact.Networks
// by EIP-155 chain ID.
type Deployment struct {
	Address         common.Address `json:"address"`
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     uint64         `json:"blockNumber,omitempty"`
	GasUsed         uint64         `json:"gasUsed,omitempty"`
}

// ParsedABI decodes the ABI.
func (a *Artifact) ParsedABI() (abi.ABI, error) {
	if len(a.ABI) == 0 {
		return abi.ABI{}, errors.New("artifact has no abi")
	}
	return abi.JSON(strings.NewReader(string(a.ABI)))
}

// BytecodeBytes decodes the creation bytecode.
func (a *Artifact) BytecodeBytes() ([]byte, error) {
	code := a.Bytecode
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	b, err := hexutil.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("bytecode of %s: %w", a.ContractName, err)
	}
	return b, nil
}

// Deployable reports whether the artifact has creation code. Interfaces and
// abstract contracts compile to empty bytecode.
func (a *Artifact) Deployable() bool {
	code := strings.TrimPrefix(a.Bytecode, "0x")
	return code != ""
}

// Validate checks the name, ABI and bytecode encoding.
func (a *Artifact) Validate() error {
	if a.ContractName == "" {
		return errors.New("artifact has no contract name")
	}
	if _, err := a.ParsedABI(); err != nil {
		return fmt.Errorf("abi of %s: %w", a.ContractName, err)
	}
	if a.Deployable() {
		if _, err := a.BytecodeBytes(); err != nil {
			return err
		}
	}
	return nil
}

// RecordDeployment returns a copy of the artifact with d recorded under
// chainID. The receiver is left unchanged.
func (a Artifact) RecordDeployment(chainID string, d Deployment, at time.Time) Artifact {
	out := a
	out.Networks = make(map[string]Deployment, len(a.Networks)+1)
	maps.Copy(out.Networks, a.Networks)
	out.Networks[chainID] = d
	out.UpdatedAt = at.UTC()
	return out
}

// Deployment returns the recorded deployment on chainID, if any.
func (a *Artifact) Deployment(chainID string) (Deployment, bool) {
	d, ok := a.Networks[chainID]
	return d, ok
}
