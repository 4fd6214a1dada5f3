package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/singnet/hmy-deploy-go/pkg/compiler"
	"github.com/singnet/hmy-deploy-go/pkg/model"
	"github.com/singnet/hmy-deploy-go/pkg/sdk"
	"github.com/singnet/hmy-deploy-go/pkg/storage"
	"github.com/urfave/cli/v2"
)

// CompileCommand compiles a source directory or bundle into artifacts.
var CompileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "Compile Solidity sources into artifacts",
	ArgsUsage: "<dir>",
	Description: `The compile command compiles every .sol file under <dir> with the solc
release selected in the settings file and writes one artifact per contract.
With --bundle, sources are read from a tar or tar.gz archive instead.`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "build/contracts", Usage: "artifact directory"},
		&cli.StringFlag{Name: "bundle", Usage: "source bundle URI (ipfs://, filecoin:// or file://)"},
	},
	Action: compileContracts,
}

// DeployCommand deploys an artifact.
var DeployCommand = &cli.Command{
	Name:      "deploy",
	Usage:     "Deploy compiled artifacts",
	ArgsUsage: "<artifact.json>...",
	Description: `The deploy command sends the creation transaction of each artifact, waits
for it to be mined and records the deployment in the artifact file.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "gas-report", Value: true, Usage: "print the gas report"},
	},
	Action: deployContracts,
}

// PublishCommand uploads an artifact to IPFS.
var PublishCommand = &cli.Command{
	Name:      "publish",
	Usage:     "Publish an artifact to IPFS",
	ArgsUsage: "<artifact.json>",
	Action:    publishArtifact,
}

func compileContracts(c *cli.Context) error {
	profile, _, err := loadProfile(c)
	if err != nil {
		return err
	}
	if err := compiler.CheckChainCompatibility(profile.Compiler.Version, profile.Chain.Type); err != nil {
		fmt.Fprintln(c.App.ErrWriter, color.YellowString("warning: %v", err))
	}

	var sources map[string]string
	if uri := c.String("bundle"); uri != "" {
		st, err := storage.NewStorage(profile.Storage.IpfsURL, profile.Storage.LighthouseURL)
		if err != nil {
			return err
		}
		data, err := st.ReadFile(c.Context, uri)
		if err != nil {
			return err
		}
		sources, err = storage.ParseSourceBundle(data)
		if err != nil {
			return err
		}
	} else {
		if c.NArg() != 1 {
			return errors.New("compile needs a source directory or --bundle")
		}
		sources, err = compiler.LoadSources(c.Args().First())
		if err != nil {
			return err
		}
	}

	solc, err := compiler.NewSolc(compiler.FromProfile(profile))
	if err != nil {
		return err
	}
	artifacts, err := solc.Compile(c.Context, sources)
	if err != nil {
		return err
	}
	paths, err := compiler.WriteArtifacts(c.String("out"), artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(c.App.Writer, p)
	}
	return nil
}

func deployContracts(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("deploy needs at least one artifact file")
	}
	artifacts := make([]model.Artifact, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		a, err := compiler.ReadArtifact(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		artifacts = append(artifacts, a)
	}

	profile, lookup, err := loadProfile(c)
	if err != nil {
		return err
	}
	deployer, err := sdk.NewSDK(c.Context, profile, lookup)
	if err != nil {
		return err
	}
	defer deployer.Close()

	for i, a := range artifacts {
		path := c.Args().Get(i)
		if !a.Deployable() {
			fmt.Fprintln(c.App.Writer, color.YellowString("skipping %s: no bytecode", a.ContractName))
			continue
		}
		deployed, err := deployer.Deploy(c.Context, a)
		if err != nil {
			return fmt.Errorf("deploy %s: %w", a.ContractName, err)
		}
		if err := compiler.WriteArtifact(path, deployed); err != nil {
			return err
		}
		d, _ := deployed.Deployment(deployer.GetEvm().ChainID.String())
		fmt.Fprintf(c.App.Writer, "%s deployed at %s (tx %s)\n",
			color.GreenString(a.ContractName), d.Address.Hex(), d.TransactionHash.Hex())
	}

	if c.Bool("gas-report") {
		deployer.Report().WriteTable(c.App.Writer)
	}
	return nil
}

func publishArtifact(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("publish needs one artifact file")
	}
	artifact, err := compiler.ReadArtifact(c.Args().First())
	if err != nil {
		return err
	}
	profile, _, err := loadProfile(c)
	if err != nil {
		return err
	}
	st, err := storage.NewStorage(profile.Storage.IpfsURL, profile.Storage.LighthouseURL)
	if err != nil {
		return err
	}
	st.Timeout = profile.Timeouts.Storage
	uri, err := st.UploadJSON(c.Context, artifact)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, uri)
	return nil
}
