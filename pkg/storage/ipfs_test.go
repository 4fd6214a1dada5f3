package storage

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

type tarEntry struct {
	name     string
	body     string
	typeflag byte
}

func buildTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Typeflag: e.typeflag}
		if e.typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		if e.typeflag == tar.TypeSymlink {
			hdr.Linkname = "elsewhere"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", e.name, err)
		}
		if e.typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("write body %s: %v", e.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes()
}

func TestParseSourceBundle_TarArchive(t *testing.T) {
	data := buildTar(t, []tarEntry{
		{name: "contracts/", typeflag: tar.TypeDir},
		{name: "contracts/Counter.sol", body: "contract Counter {}", typeflag: tar.TypeReg},
		{name: "./lib/Math.sol", body: "library Math {}", typeflag: tar.TypeReg},
		{name: "README.md", body: "ignore me", typeflag: tar.TypeReg},
	})

	sources, err := ParseSourceBundle(data)
	if err != nil {
		t.Fatalf("ParseSourceBundle returned error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d: %v", len(sources), sources)
	}
	if got := sources["contracts/Counter.sol"]; got != "contract Counter {}" {
		t.Fatalf("unexpected source content: %q", got)
	}
	if _, ok := sources["lib/Math.sol"]; !ok {
		t.Fatalf("expected lib/Math.sol with ./ stripped, got %v", sources)
	}
}

func TestParseSourceBundle_GzipArchive(t *testing.T) {
	tarData := buildTar(t, []tarEntry{{name: "Ping.sol", body: "contract Ping {}", typeflag: tar.TypeReg}})

	var gzBuf bytes.Buffer
	gzw := gzip.NewWriter(&gzBuf)
	if _, err := gzw.Write(tarData); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	sources, err := ParseSourceBundle(gzBuf.Bytes())
	if err != nil {
		t.Fatalf("ParseSourceBundle returned error: %v", err)
	}
	if _, ok := sources["Ping.sol"]; !ok {
		t.Fatalf("expected Ping.sol in result map, got %v", sources)
	}
}

func TestParseSourceBundle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []tarEntry
	}{
		{"symlink", []tarEntry{{name: "link.sol", typeflag: tar.TypeSymlink}}},
		{"no sources", []tarEntry{{name: "notes.txt", body: "x", typeflag: tar.TypeReg}}},
		{"escaping path", []tarEntry{{name: "../Evil.sol", body: "x", typeflag: tar.TypeReg}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSourceBundle(buildTar(t, tt.entries)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestIsGzipFile(t *testing.T) {
	gz := []byte{0x1F, 0x8B, 0x08}
	plain := []byte("hello")

	if !isGzipFile(gz) {
		t.Fatal("expected gzip magic to be detected")
	}
	if isGzipFile(plain) {
		t.Fatal("plain bytes reported as gzip")
	}
}

func TestComputeCID(t *testing.T) {
	c, err := ComputeCID([]byte("hello world"))
	if err != nil {
		t.Fatalf("ComputeCID: %v", err)
	}
	const want = "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"
	if c.String() != want {
		t.Fatalf("ComputeCID = %s, want %s", c, want)
	}
	again, _ := ComputeCID([]byte("hello world"))
	if !again.Equals(c) {
		t.Fatal("ComputeCID is not deterministic")
	}
}

func newKuboStub(t *testing.T, content []byte, addHash string) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/cat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(content)
	})
	mux.HandleFunc("/api/v0/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"Version": "0.36.0"})
	})
	mux.HandleFunc("/api/v0/add", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("cid-version") != "1" {
			t.Errorf("cid-version = %q", q.Get("cid-version"))
		}
		if q.Get("raw-leaves") != "true" || q.Get("pin") != "true" {
			t.Errorf("add options = %v, want raw-leaves and pin", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"Name": "file", "Hash": addHash, "Size": "1"})
	})
	srv := startHTTPServer(t, mux)
	t.Cleanup(srv.Close)

	c, err := NewStorage(srv.URL, "")
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return c
}

func TestClient_ReadFileIPFS(t *testing.T) {
	content := []byte(`{"contractName":"Counter"}`)
	id, err := ComputeCID(content)
	if err != nil {
		t.Fatal(err)
	}
	c := newKuboStub(t, content, "")

	got, err := c.ReadFile(context.Background(), IpfsPrefix+id.String())
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("ReadFile = %q", got)
	}
}

func TestClient_ReadFileIPFSMismatch(t *testing.T) {
	id, err := ComputeCID([]byte("expected"))
	if err != nil {
		t.Fatal(err)
	}
	c := newKuboStub(t, []byte("tampered"), "")

	_, err = c.ReadFile(context.Background(), id.String())
	if !errors.Is(err, ErrCIDMismatch) {
		t.Fatalf("ReadFile error = %v, want ErrCIDMismatch", err)
	}
}

func TestClient_UploadJSON(t *testing.T) {
	payload := map[string]string{"contractName": "Counter"}
	raw, _ := json.Marshal(payload)
	id, err := ComputeCID(raw)
	if err != nil {
		t.Fatal(err)
	}
	c := newKuboStub(t, nil, id.String())

	uri, err := c.UploadJSON(context.Background(), payload)
	if err != nil {
		t.Fatalf("UploadJSON error: %v", err)
	}
	if uri != IpfsPrefix+id.String() {
		t.Fatalf("UploadJSON = %s", uri)
	}
}

func TestClient_UploadJSON_MarshalError(t *testing.T) {
	data := map[string]any{
		"channel": make(chan int),
	}

	_, err := (&Client{}).UploadJSON(context.Background(), data)
	if err == nil {
		t.Fatal("expected error for unmarshalable data")
	}
	if !strings.Contains(err.Error(), "failed to marshal JSON") {
		t.Fatalf("expected marshal error, got: %v", err)
	}
}

func TestClient_UploadJSON_NotConfigured(t *testing.T) {
	c, err := NewStorage("", "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.UploadJSON(context.Background(), map[string]string{"test": "data"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("UploadJSON error = %v, want ErrNotConfigured", err)
	}
}
