// Package storage fetches Solidity source bundles and publishes compiled
// artifacts on decentralized storage: IPFS through a Kubo RPC endpoint and
// Filecoin content through a Lighthouse gateway.
//
// # Supported Backends
//
// IPFS:
//   - Content-addressed storage
//   - Access via the Kubo HTTP API (for example http://localhost:5001)
//   - Reads and uploads
//
// Lighthouse (Filecoin Gateway):
//   - Read-only HTTP gateway, e.g. https://gateway.lighthouse.storage/ipfs/
//   - Addressed with the "filecoin://" scheme
//
// # Reading
//
//	client, err := storage.NewStorage(profile.Storage.IpfsURL, profile.Storage.LighthouseURL)
//	if err != nil {
//		log.Fatal(err)
//	}
//	bundle, err := client.ReadFile(ctx, "ipfs://bafkrei...")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sources, err := storage.ParseSourceBundle(bundle)
//
// ReadFile accepts "ipfs://", "filecoin://" and "file://" URIs as well as
// bare CIDs. Content addressed by a raw CIDv1 is rehashed after download and
// rejected with ErrCIDMismatch if it does not match.
//
// # Source Bundles
//
// ParseSourceBundle extracts .sol files from a tar or tar.gz archive, keyed
// by their path inside the archive. Other files are skipped.
//
// # Publishing
//
// UploadJSON pins a JSON document (typically a model.Artifact) as a CIDv1
// raw-leaves file and returns its "ipfs://" URI. ComputeCID gives the same
// identifier locally for single-chunk documents, which is handy for
// fingerprinting artifacts without a node.
package storage
