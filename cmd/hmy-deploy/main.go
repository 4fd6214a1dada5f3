// Command hmy-deploy compiles, deploys and publishes Solidity contracts on
// Harmony networks described by a settings file and the MNEMONIC, SHARD,
// GASLIMIT and GASPRICE environment variables.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/singnet/hmy-deploy-go/pkg/config"
	"github.com/singnet/hmy-deploy-go/pkg/sdk"
	"github.com/urfave/cli/v2"
)

const (
	exitFailure = 1
	exitConfig  = 2
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "settings file (.toml, .yaml or .json)",
		Value:   "hmy.toml",
		EnvVars: []string{"HMY_CONFIG"},
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "dotenv file read under the process environment",
	}
	networkFlag = &cli.StringFlag{
		Name:    "network",
		Aliases: []string{"n"},
		Usage:   "network entry of the settings file",
		EnvVars: []string{"HMY_NETWORK"},
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug logging",
	}
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err and returns the process exit code.
func report(w io.Writer, err error) int {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(w, "%s %v\n", color.RedString("configuration error:"), err)
		return exitConfig
	}
	fmt.Fprintf(w, "%s %v\n", color.RedString("error:"), err)
	return exitFailure
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "hmy-deploy",
		Usage:     "compile and deploy Solidity contracts on Harmony",
		Writer:    out,
		ErrWriter: out,
		Flags:     []cli.Flag{configFlag, envFileFlag, networkFlag, debugFlag},
		Before: func(c *cli.Context) error {
			sdk.SetDebug(c.Bool(debugFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			ProfileCommand,
			AddressCommand,
			BalanceCommand,
			CompileCommand,
			DeployCommand,
			PublishCommand,
		},
	}
}

// loadProfile builds the profile from the global flags and returns it with
// the environment lookup used to resolve the secret. It never touches the
// network.
func loadProfile(c *cli.Context) (config.NetworkProfile, config.LookupFunc, error) {
	lookup := config.LookupFunc(os.LookupEnv)
	if path := c.String(envFileFlag.Name); path != "" {
		var err error
		lookup, err = config.WithDotEnv(lookup, path)
		if err != nil {
			return config.NetworkProfile{}, nil, &config.ConfigurationError{Kind: config.ErrInvalidSettings, Field: path, Err: err}
		}
	}

	profile, err := config.Loader{
		SettingsPath: c.String(configFlag.Name),
		Network:      c.String(networkFlag.Name),
		Lookup:       lookup,
	}.Load()
	if err != nil {
		return config.NetworkProfile{}, nil, err
	}
	if c.Bool(debugFlag.Name) {
		profile.Debug = true
	}
	return profile, lookup, nil
}
