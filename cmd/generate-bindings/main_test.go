package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/singnet/hmy-deploy-go/pkg/model"
)

const counterABI = `[{"inputs":[],"name":"increment","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[],"name":"count","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

func TestBind(t *testing.T) {
	artifacts := []model.Artifact{{
		ContractName: "Counter",
		ABI:          json.RawMessage(counterABI),
		Bytecode:     "0x6080604052",
	}}
	code, err := bind("contracts", artifacts)
	if err != nil {
		t.Fatalf("bind() error = %v", err)
	}
	for _, want := range []string{"package contracts", "func DeployCounter(", "func (_Counter *CounterCaller) Count("} {
		if !strings.Contains(code, want) {
			t.Errorf("bindings lack %q", want)
		}
	}
}

func TestModuleRoot(t *testing.T) {
	root, err := moduleRoot()
	if err != nil {
		t.Fatalf("moduleRoot() error = %v", err)
	}
	if strings.HasSuffix(root, "generate-bindings") {
		t.Errorf("moduleRoot() = %s, want the directory holding go.mod", root)
	}
}
