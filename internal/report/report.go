// Package report renders pricing results for people and for charting tools.
// It only consumes values produced by the pricing package.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-greeks/internal/pricing"
)

// Places is the number of decimals used for every displayed value.
const Places = 4

// BreakEven holds the expiry spots where each P&L line crosses zero.
type BreakEven struct {
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// Document is the JSON shape written by WriteJSON.
type Document struct {
	Underlying string                `json:"underlying,omitempty"`
	Inputs     pricing.MarketInputs  `json:"inputs"`
	Result     pricing.Result        `json:"result"`
	BreakEven  BreakEven             `json:"break_even"`
	Payoff     []pricing.PayoffPoint `json:"payoff,omitempty"`
}

// NewDocument assembles a report document from one pricing run.
func NewDocument(underlying string, in pricing.MarketInputs, res pricing.Result, curve []pricing.PayoffPoint) Document {
	call, put := pricing.BreakEvens(in.K, res.CallPrice, res.PutPrice)
	return Document{
		Underlying: underlying,
		Inputs:     in,
		Result:     res,
		BreakEven:  BreakEven{Call: call, Put: put},
		Payoff:     curve,
	}
}

// Fixed formats v with Places decimals. NaN and infinities are printed as-is.
// Negative values that round to zero keep their sign ("-0.0000"), which
// decimal drops since it has no negative zero.
func Fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := decimal.NewFromFloat(v).StringFixed(Places)
	if math.Signbit(v) && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// Print writes one "name: value" line per result field.
func Print(w io.Writer, res pricing.Result) error {
	rows := []struct {
		name string
		v    float64
	}{
		{"call_price", res.CallPrice},
		{"put_price", res.PutPrice},
		{"delta_call", res.DeltaCall},
		{"delta_put", res.DeltaPut},
		{"gamma", res.Gamma},
		{"vega", res.Vega},
		{"theta_call", res.ThetaCall},
		{"theta_put", res.ThetaPut},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.name, Fixed(r.v)); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(doc Document, outdir string) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "greeks.json"), b, 0644)
}

// EncodeCSV writes the payoff curve with a zero break-even reference column.
func EncodeCSV(w io.Writer, curve []pricing.PayoffPoint) error {
	cw := csv.NewWriter(w)
	headers := []string{"spot", "call_pnl", "put_pnl", "break_even"}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, p := range curve {
		row := []string{Fixed(p.Spot), Fixed(p.CallPnL), Fixed(p.PutPnL), "0"}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSV(curve []pricing.PayoffPoint, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "payoff.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeCSV(f, curve)
}
