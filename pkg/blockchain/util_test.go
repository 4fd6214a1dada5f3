package blockchain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOneToAtto(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{int64(2), "2000000000000000000"},
		{1.25, "1250000000000000000"},
		{decimal.RequireFromString("0.000000000000000001"), "1"},
	}
	for _, tt := range tests {
		got, err := OneToAtto(tt.in)
		if err != nil {
			t.Fatalf("OneToAtto(%v) error = %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("OneToAtto(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := OneToAtto("abc"); err == nil {
		t.Error("expected error for invalid string")
	}
	if _, err := OneToAtto(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestAttoToOne(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := AttoToOne(v); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("AttoToOne(big) = %s, want 1.5", got)
	}
	if got := AttoToOne("1"); !got.Equal(decimal.RequireFromString("0.000000000000000001")) {
		t.Errorf("AttoToOne(string) = %s", got)
	}
	if got := AttoToOne(3.0); !got.Equal(decimal.Zero) {
		t.Errorf("AttoToOne(float) = %s, want 0", got)
	}
}

func TestGweiToWei(t *testing.T) {
	got, err := GweiToWei(int64(31))
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "31000000000" {
		t.Errorf("GweiToWei(31) = %s", got)
	}
}
