// Package model defines the compiled contract artifact.
//
// An Artifact follows the layout of the JSON files Truffle writes to
// build/contracts, so existing tooling can read it:
//
//	{
//	  "contractName": "Counter",
//	  "abi": [...],
//	  "bytecode": "0x6080...",
//	  "deployedBytecode": "0x6080...",
//	  "compiler": {"name": "solc", "version": "0.5.17", "optimizer": {"enabled": true, "runs": 200}},
//	  "networks": {
//	    "1666700000": {"address": "0x...", "transactionHash": "0x..."}
//	  }
//	}
//
// Networks is keyed by the EIP-155 chain ID the contract was deployed to,
// which on Harmony encodes the shard (1666700000 is testnet shard 0).
//
// Artifacts are values. RecordDeployment returns an updated copy rather
// than mutating the artifact it is called on.
package model
