package sdk

import (
	"archive/tar"
	"bytes"
	"testing"
)

func bundle(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := []byte("pragma solidity 0.5.17; contract Counter {}")
	if err := tw.WriteHeader(&tar.Header{Name: "Counter.sol", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
