package storage

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"github.com/multiformats/go-multihash"
	"go.uber.org/zap"
)

// ErrCIDMismatch is returned when fetched content does not hash to the
// requested CID.
var ErrCIDMismatch = errors.New("content does not match cid")

// ParseSourceBundle extracts .sol files from a tar or tar.gz archive.
//
// The input is inspected for a gzip magic header; if present, it is
// transparently decompressed before reading tar entries. Directory entries
// and non-.sol files are skipped. Keys are the cleaned archive paths, which
// become solc source names.
func ParseSourceBundle(compressedFile []byte) (sources map[string]string, err error) {
	var reader io.Reader = bytes.NewReader(compressedFile)

	if isGzipFile(compressedFile) {
		zap.L().Debug("Detected gzip-compressed tar file, decompressing...")
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func(gzr *gzip.Reader) {
			if cerr := gzr.Close(); cerr != nil {
				zap.L().Error("failed to close gzip reader", zap.Error(cerr))
			}
		}(gzr)
		reader = gzr
	}

	tarReader := tar.NewReader(reader)
	sources = make(map[string]string)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			zap.L().Error("Failed to read tar entry", zap.Error(err))
			return nil, err
		}

		switch header.Typeflag {
		case tar.TypeDir, tar.TypeXGlobalHeader:
			continue
		case tar.TypeReg:
			name := path.Clean(strings.TrimPrefix(header.Name, "./"))
			if !strings.HasSuffix(name, ".sol") {
				zap.L().Debug("Skipping non-solidity file in archive", zap.String("name", header.Name))
				continue
			}
			if strings.HasPrefix(name, "../") || path.IsAbs(name) {
				return nil, fmt.Errorf("unsafe path %q in archive", header.Name)
			}
			data, err := io.ReadAll(tarReader)
			if err != nil {
				zap.L().Error("Failed to read file from tar", zap.Error(err))
				return nil, err
			}
			sources[name] = string(data)
		default:
			err = fmt.Errorf("unknown file type %c in file %s", header.Typeflag, header.Name)
			zap.L().Error(err.Error())
			return nil, err
		}
	}
	if len(sources) == 0 {
		return nil, errors.New("archive contains no .sol files")
	}
	return sources, nil
}

// isGzipFile reports whether data appears to be gzip-compressed,
// based on the 0x1F 0x8B magic bytes.
func isGzipFile(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1F && data[1] == 0x8B
}

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data. It matches
// what Kubo assigns to a single-chunk file added with raw leaves.
func ComputeCID(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// ipfsFetcher reads and writes through the Kubo HTTP API.
type ipfsFetcher struct {
	api *rpc.HttpApi
}

func newIPFSFetcher(api *rpc.HttpApi) *ipfsFetcher {
	return &ipfsFetcher{api: api}
}

// Fetch retrieves hash with "ipfs cat". Content addressed by a raw CID is
// verified by rehashing it; other codecs hash the DAG node rather than the
// bytes, so they are only checked for a parseable CID.
func (f *ipfsFetcher) Fetch(ctx context.Context, hash string) (content []byte, err error) {
	hash = formatHash(hash)
	zap.L().Debug("Hash Used to retrieve from IPFS", zap.String("hash", hash))

	if f == nil || f.api == nil {
		return nil, fmt.Errorf("%w: ipfs url is empty", ErrNotConfigured)
	}

	cID, err := cid.Parse(hash)
	if err != nil {
		zap.L().Error("error parsing the ipfs hash", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("parse cid %q: %w", hash, err)
	}

	resp, err := f.api.Request("cat", cID.String()).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing response in ipfs", zap.String("hash", hash), zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(resp.Error))
		return nil, resp.Error
	}
	content, err = io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs content", zap.Error(err), zap.String("hash", hash))
		return nil, err
	}

	if cID.Prefix().Codec == cid.Raw {
		c, err := cID.Prefix().Sum(content)
		if err != nil {
			return nil, fmt.Errorf("hash ipfs content: %w", err)
		}
		if !c.Equals(cID) {
			zap.L().Error("IPFS hash verification failed. Generated hash does not match with expected hash",
				zap.String("expectedHash", hash),
				zap.String("hashFromIPFSContent", c.String()))
			return nil, fmt.Errorf("%w: want %s, got %s", ErrCIDMismatch, cID, c)
		}
	}
	return content, nil
}

// Upload adds data to IPFS as a CIDv1 raw-leaves file and returns
// "ipfs://<cid>".
func (f *ipfsFetcher) Upload(ctx context.Context, data []byte) (string, error) {
	if f == nil || f.api == nil {
		return "", fmt.Errorf("%w: ipfs url is empty", ErrNotConfigured)
	}

	resp, err := f.api.Request("add").
		Option("cid-version", 1).
		Option("raw-leaves", true).
		Option("pin", true).
		FileBody(bytes.NewReader(data)).
		Send(ctx)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.Error(err))
		return "", err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing ipfs response", zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs add command returned error", zap.Error(resp.Error))
		return "", resp.Error
	}

	var addResp struct {
		Hash string `json:"Hash"`
	}
	if err := json.NewDecoder(resp.Output).Decode(&addResp); err != nil {
		zap.L().Error("error unmarshaling ipfs add response", zap.Error(err))
		return "", err
	}
	if addResp.Hash == "" {
		return "", errors.New("ipfs add returned no hash")
	}

	if want, err := ComputeCID(data); err == nil && want.String() != addResp.Hash {
		zap.L().Warn("ipfs returned a cid different from the local fingerprint",
			zap.String("local", want.String()),
			zap.String("remote", addResp.Hash))
	}

	zap.L().Debug("Successfully uploaded to IPFS", zap.String("hash", addResp.Hash))
	return IpfsPrefix + addResp.Hash, nil
}

// UploadJSON serializes data to JSON and uploads it to IPFS.
// Returns the IPFS URI (ipfs://<hash>) on success.
func (s *Client) UploadJSON(ctx context.Context, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("error marshaling data to json", zap.Error(err))
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uploader().Upload(ctx, jsonData)
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 30 * time.Second,
	}
	client, err := rpc.NewURLApiWithClient(url, &httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return client, nil
}
