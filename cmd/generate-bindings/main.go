// Command generate-bindings writes Go bindings for compiled artifacts.
//
//	generate-bindings --pkg contracts --out pkg/contracts/bindings.go build/contracts/*.json
//
// A relative --out is resolved against the module root.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi/abigen"
	"github.com/singnet/hmy-deploy-go/pkg/compiler"
	"github.com/singnet/hmy-deploy-go/pkg/model"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "generate-bindings",
		Usage:     "generate Go bindings from contract artifacts",
		ArgsUsage: "<artifact.json>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pkg", Value: "contracts", Usage: "package name of the bindings"},
			&cli.StringFlag{Name: "out", Value: filepath.Join("pkg", "contracts", "bindings.go"), Usage: "output file"},
		},
		Action: generate,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Failed to generate binding: %v", err)
	}
}

func generate(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no artifacts given")
	}
	artifacts := make([]model.Artifact, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		a, err := compiler.ReadArtifact(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		artifacts = append(artifacts, a)
	}

	bindContent, err := bind(c.String("pkg"), artifacts)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if !filepath.IsAbs(outPath) {
		root, err := moduleRoot()
		if err != nil {
			return fmt.Errorf("locate module root: %w", err)
		}
		outPath = filepath.Join(root, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(bindContent), 0o600)
}

func bind(pkg string, artifacts []model.Artifact) (string, error) {
	names := make([]string, 0, len(artifacts))
	abis := make([]string, 0, len(artifacts))
	codes := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.ContractName)
		abis = append(abis, string(a.ABI))
		codes = append(codes, a.Bytecode)
	}
	return abigen.Bind(names, abis, codes, nil, pkg, nil, nil)
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", fmt.Errorf("go.mod not found from %q", dir)
		}
		dir = next
	}
}
