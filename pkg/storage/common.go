package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
	// FilePrefix marks a local file.
	FilePrefix = "file://"

	defaultTimeout = 60 * time.Second
)

// ErrNotConfigured is returned when the backend a URI needs has no endpoint.
var ErrNotConfigured = errors.New("storage backend not configured")

// Storage fetches contract source bundles and publishes artifacts.
type Storage interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
	UploadJSON(ctx context.Context, data any) (string, error)
}

// LighthouseFetcher fetches content from a Lighthouse gateway.
type LighthouseFetcher interface {
	Fetch(ctx context.Context, endpoint, cid string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID from IPFS.
type IPFSFetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// Client aggregates the configured storage backends.
type Client struct {
	// LighthouseURL is the base URL of the Lighthouse HTTP gateway.
	LighthouseURL string
	// Timeout bounds each request on top of the caller's context.
	Timeout time.Duration

	api               *rpc.HttpApi
	ipfs              *ipfsFetcher
	lighthouseFetcher LighthouseFetcher
	ipfsFetcher       IPFSFetcher
}

// NewStorage constructs a storage client for the given Kubo RPC endpoint and
// Lighthouse gateway URL. Either may be empty; reads needing the missing
// backend then fail with ErrNotConfigured.
func NewStorage(ipfsURL, lighthouseURL string) (*Client, error) {
	s := &Client{
		LighthouseURL:     lighthouseURL,
		Timeout:           defaultTimeout,
		lighthouseFetcher: defaultLighthouseFetcher{},
	}
	if ipfsURL != "" {
		api, err := NewIPFSClient(ipfsURL)
		if err != nil {
			return nil, err
		}
		s.api = api
	}
	s.ipfs = newIPFSFetcher(s.api)
	s.ipfsFetcher = s.ipfs
	return s, nil
}

// ReadFile fetches the content behind uri. "filecoin://" URIs are read from
// the Lighthouse gateway, "file://" URIs from disk and anything else is
// treated as an IPFS CID, with or without the "ipfs://" prefix.
func (s *Client) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	if s.lighthouseFetcher == nil {
		s.lighthouseFetcher = defaultLighthouseFetcher{}
	}
	if s.ipfsFetcher == nil {
		s.ipfsFetcher = s.uploader()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	switch {
	case strings.HasPrefix(uri, FilePrefix):
		return os.ReadFile(strings.TrimPrefix(uri, FilePrefix))
	case strings.HasPrefix(uri, FilecoinPrefix):
		if s.LighthouseURL == "" {
			return nil, fmt.Errorf("%w: lighthouse url is empty", ErrNotConfigured)
		}
		return s.lighthouseFetcher.Fetch(ctx, s.LighthouseURL, formatHash(uri))
	default:
		return s.ipfsFetcher.Fetch(ctx, formatHash(uri))
	}
}

func (s *Client) uploader() *ipfsFetcher {
	if s.ipfs == nil {
		s.ipfs = newIPFSFetcher(s.api)
	}
	return s.ipfs
}

func (s *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// defaultLighthouseFetcher is the production implementation of LighthouseFetcher.
type defaultLighthouseFetcher struct{}

func (defaultLighthouseFetcher) Fetch(ctx context.Context, endpoint, cid string) ([]byte, error) {
	return GetLighthouseFileCtx(ctx, endpoint, cid, 0)
}

var specialCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

// formatHash removes known URI scheme prefixes and any non-alphanumeric
// characters (except '=') from the supplied hash/URI to produce a clean CID
// string suitable for the underlying backends.
func formatHash(hash string) string {
	hash = strings.ReplaceAll(hash, IpfsPrefix, "")
	hash = strings.ReplaceAll(hash, FilecoinPrefix, "")
	hash = removeSpecialCharacters(hash)
	zap.L().Debug("formatted storage hash", zap.String("hash", hash))
	return hash
}

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString.
func removeSpecialCharacters(pString string) string {
	return specialCharacters.ReplaceAllString(pString, "")
}
