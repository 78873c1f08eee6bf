package token

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRawFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
		wantErr  bool
	}{
		{name: "whole_tokens_6dp", amount: "2.5", decimals: 6, want: "2500000"},
		{name: "whole_tokens_18dp", amount: "5", decimals: 18, want: "5000000000000000000"},
		{name: "fraction_floors", amount: "0.0000015", decimals: 6, want: "1"},
		{name: "below_one_raw_unit_floors_to_zero", amount: "0.0000001", decimals: 6, want: "0"},
		{name: "zero_decimals", amount: "42.9", decimals: 0, want: "42"},
		{name: "zero_amount", amount: "0", decimals: 18, want: "0"},
		{name: "negative_rejected", amount: "-1", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RawFromDecimal(decimal.RequireFromString(tt.amount), tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecimalFromRaw(t *testing.T) {
	raw, _ := new(big.Int).SetString("2500500000", 10)
	got := DecimalFromRaw(raw, 6)
	if !got.Equal(decimal.RequireFromString("2500.5")) {
		t.Errorf("got %s, want 2500.5", got)
	}

	if !DecimalFromRaw(nil, 6).IsZero() {
		t.Error("nil raw must convert to zero")
	}
}

func TestRoundTrip(t *testing.T) {
	tok := NewToken("USDC", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6)

	raw, err := tok.Raw(decimal.RequireFromString("1234.567891"))
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	back := tok.Human(raw)
	if !back.Equal(decimal.RequireFromString("1234.567891")) {
		t.Errorf("round trip = %s", back)
	}
}

func TestParseRaw(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "valid", in: "1000000000000000000", want: "1000000000000000000"},
		{name: "zero", in: "0", want: "0"},
		{name: "empty", in: "", wantErr: true},
		{name: "not_a_number", in: "12a4", wantErr: true},
		{name: "negative", in: "-5", wantErr: true},
		{name: "scientific_notation_rejected", in: "1e18", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRaw(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
