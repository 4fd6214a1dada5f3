// Package gasreport prices contract deployments the way eth-gas-reporter
// does: gas used times a fixed gas price, converted to the native token and
// to a fiat currency.
package gasreport

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/singnet/hmy-deploy-go/pkg/blockchain"
	"github.com/singnet/hmy-deploy-go/pkg/config"
)

const (
	// DefaultCurrency is the fiat currency used when none is configured.
	DefaultCurrency = "USD"
	// DefaultGasPriceGwei is the gas price used when none is configured.
	DefaultGasPriceGwei = 31

	gweiDecimals = 9
)

// Entry is the cost of one recorded deployment.
type Entry struct {
	Name    string
	GasUsed uint64
	// Cost is in native tokens (ONE on Harmony).
	Cost decimal.Decimal
	// Fiat is zero when no token price is known.
	Fiat decimal.Decimal
}

// Reporter accumulates gas usage. It is safe for concurrent use.
type Reporter struct {
	Currency     string
	GasPriceGwei uint64
	TokenPrice   decimal.Decimal

	mu      sync.Mutex
	entries []Entry
}

// New returns a reporter for currency at gasPriceGwei, with tokenPrice the
// fiat price of one native token.
func New(currency string, gasPriceGwei uint64, tokenPrice decimal.Decimal) *Reporter {
	if currency == "" {
		currency = DefaultCurrency
	}
	if gasPriceGwei == 0 {
		gasPriceGwei = DefaultGasPriceGwei
	}
	return &Reporter{Currency: currency, GasPriceGwei: gasPriceGwei, TokenPrice: tokenPrice}
}

// FromProfile builds a reporter from the profile gas reporter settings.
func FromProfile(cfg config.GasReporter) (*Reporter, error) {
	price := decimal.Zero
	if cfg.TokenPrice != "" {
		p, err := decimal.NewFromString(cfg.TokenPrice)
		if err != nil {
			return nil, fmt.Errorf("gas reporter token price %q: %w", cfg.TokenPrice, err)
		}
		if p.IsNegative() {
			return nil, fmt.Errorf("gas reporter token price %q is negative", cfg.TokenPrice)
		}
		price = p
	}
	return New(cfg.Currency, cfg.GasPriceGwei, price), nil
}

// Add records gasUsed under name and returns the priced entry.
func (r *Reporter) Add(name string, gasUsed uint64) Entry {
	price := decimal.NewFromBigInt(new(big.Int).SetUint64(r.GasPriceGwei), 0).Shift(gweiDecimals).BigInt()
	cost := blockchain.AttoToOne(new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), price))
	e := Entry{
		Name:    name,
		GasUsed: gasUsed,
		Cost:    cost,
		Fiat:    cost.Mul(r.TokenPrice),
	}

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// Entries returns the recorded entries sorted by name.
func (r *Reporter) Entries() []Entry {
	r.mu.Lock()
	out := append([]Entry(nil), r.entries...)
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Total sums all entries.
func (r *Reporter) Total() Entry {
	total := Entry{Name: "Total", Cost: decimal.Zero, Fiat: decimal.Zero}
	for _, e := range r.Entries() {
		total.GasUsed += e.GasUsed
		total.Cost = total.Cost.Add(e.Cost)
		total.Fiat = total.Fiat.Add(e.Fiat)
	}
	return total
}

// WriteTable renders the report as a text table.
func (r *Reporter) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Contract", "Gas", "Cost (ONE)", "Cost (" + r.Currency + ")"})
	for _, e := range r.Entries() {
		table.Append(r.row(e))
	}
	total := r.Total()
	table.SetFooter(r.row(total))
	table.SetCaption(true, fmt.Sprintf("gas price %d gwei", r.GasPriceGwei))
	table.Render()
}

func (r *Reporter) row(e Entry) []string {
	fiat := "-"
	if !r.TokenPrice.IsZero() {
		fiat = e.Fiat.StringFixed(2)
	}
	return []string{e.Name, strconv.FormatUint(e.GasUsed, 10), e.Cost.String(), fiat}
}
