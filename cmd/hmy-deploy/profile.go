package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/singnet/hmy-deploy-go/pkg/blockchain"
	"github.com/singnet/hmy-deploy-go/pkg/config"
	"github.com/singnet/hmy-deploy-go/pkg/sdk"
	"github.com/singnet/hmy-deploy-go/pkg/wallet"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ProfileCommand prints the validated profile.
var ProfileCommand = &cli.Command{
	Name:  "profile",
	Usage: "Print the validated network profile",
	Description: `The profile command loads the settings file and environment, validates
them and prints the resulting profile. The secret phrase is shown by
reference only.`,
	Action: printProfile,
}

// AddressCommand prints the signing address.
var AddressCommand = &cli.Command{
	Name:   "address",
	Usage:  "Print the signing account address",
	Action: printAddress,
}

// BalanceCommand prints the signer balance.
var BalanceCommand = &cli.Command{
	Name:   "balance",
	Usage:  "Print the signing account balance",
	Action: printBalance,
}

type profileView struct {
	Network    string `yaml:"network"`
	Chain      string `yaml:"chain"`
	EVMChainID string `yaml:"evm_chain_id"`
	Shard      uint32 `yaml:"shard"`
	Endpoint   string `yaml:"endpoint"`
	Wallet     struct {
		Secret string `yaml:"secret"`
		Index  uint32 `yaml:"index"`
		Count  uint32 `yaml:"count"`
	} `yaml:"wallet"`
	Gas struct {
		Limit string `yaml:"limit"`
		Price uint64 `yaml:"price"`
	} `yaml:"gas"`
	Compiler struct {
		Version   string  `yaml:"version"`
		Optimizer bool    `yaml:"optimizer"`
		Runs      *uint64 `yaml:"runs,omitempty"`
	} `yaml:"compiler"`
	Storage config.Storage `yaml:"storage"`
}

func newProfileView(p config.NetworkProfile) profileView {
	var v profileView
	v.Network = p.Name
	v.Chain = p.Chain.String()
	v.EVMChainID = p.EVMChainID().String()
	v.Shard = p.ShardID
	v.Endpoint = p.Endpoint
	v.Wallet.Secret = p.Wallet.Secret.String()
	v.Wallet.Index = p.Wallet.Index
	v.Wallet.Count = p.Wallet.Count
	v.Gas.Limit = p.Gas.Limit.String()
	v.Gas.Price = p.Gas.Price
	v.Compiler.Version = p.Compiler.Version
	v.Compiler.Optimizer = p.Compiler.OptimizerEnabled
	if p.Compiler.OptimizerEnabled {
		runs := p.Compiler.OptimizerRuns
		v.Compiler.Runs = &runs
	}
	v.Storage = p.Storage
	return v
}

func printProfile(c *cli.Context) error {
	profile, _, err := loadProfile(c)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(newProfileView(profile)); err != nil {
		return err
	}
	return enc.Close()
}

func printAddress(c *cli.Context) error {
	profile, lookup, err := loadProfile(c)
	if err != nil {
		return err
	}
	account, err := wallet.FromProfile(profile, lookup)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, account.Address.Hex())
	if profile.Chain.Type == config.ChainTypeHarmony {
		one, err := account.Bech32()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, one)
	}
	return nil
}

func printBalance(c *cli.Context) error {
	profile, lookup, err := loadProfile(c)
	if err != nil {
		return err
	}
	deployer, err := sdk.NewSDK(c.Context, profile, lookup)
	if err != nil {
		return err
	}
	defer deployer.Close()

	bal, err := deployer.Balance(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s ONE\n", color.CyanString(deployer.Account().Address.Hex()), blockchain.AttoToOne(bal).String())
	return nil
}
