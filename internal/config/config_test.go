package config

import (
	"strings"
	"testing"
)

const (
	wethAddr = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdcAddr = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

func validConfig() *Config {
	return &Config{
		Chains: []ChainConfig{
			{
				ID:        1,
				Name:      "ethereum",
				Providers: []string{"zeroex", "oneinch"},
				Pairs: []PairConfig{
					{
						Name:         "WETH/USDC",
						FromSymbol:   "WETH",
						FromAddress:  wethAddr,
						FromDecimals: 18,
						ToSymbol:     "USDC",
						ToAddress:    usdcAddr,
						ToDecimals:   6,
					},
				},
			},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no chains",
			mutate:  func(c *Config) { c.Chains = nil },
			wantErr: "at least one chain",
		},
		{
			name:    "invalid chain id",
			mutate:  func(c *Config) { c.Chains[0].ID = 0 },
			wantErr: "invalid id",
		},
		{
			name: "duplicate chain id",
			mutate: func(c *Config) {
				dup := c.Chains[0]
				c.Chains = append(c.Chains, dup)
			},
			wantErr: "duplicate chain id",
		},
		{
			name:    "no providers",
			mutate:  func(c *Config) { c.Chains[0].Providers = nil },
			wantErr: "no enabled providers",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Chains[0].Providers = []string{"uniswapx"} },
			wantErr: "unknown provider",
		},
		{
			name:    "pair without name",
			mutate:  func(c *Config) { c.Chains[0].Pairs[0].Name = "" },
			wantErr: "without a name",
		},
		{
			name:    "bad from address",
			mutate:  func(c *Config) { c.Chains[0].Pairs[0].FromAddress = "0x123" },
			wantErr: "invalid from_address",
		},
		{
			name:    "bad to address",
			mutate:  func(c *Config) { c.Chains[0].Pairs[0].ToAddress = "not-an-address" },
			wantErr: "invalid to_address",
		},
		{
			name:    "negative decimals",
			mutate:  func(c *Config) { c.Chains[0].Pairs[0].ToDecimals = -1 },
			wantErr: "decimals cannot be negative",
		},
		{
			name:    "webhook enabled without url",
			mutate:  func(c *Config) { c.Webhook.Enabled = true },
			wantErr: "webhook.url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestProviderEndpoint(t *testing.T) {
	p := ProviderConfig{Endpoints: map[string]string{
		"1":   "https://api.example.com/ethereum",
		"137": "https://api.example.com/polygon",
	}}

	if got := p.Endpoint(1); got != "https://api.example.com/ethereum" {
		t.Fatalf("Endpoint(1) = %q", got)
	}
	if got := p.Endpoint(10); got != "" {
		t.Fatalf("Endpoint(10) = %q, want empty for unconfigured chain", got)
	}
}

func TestDefaultUSDSellAmountDecimal(t *testing.T) {
	set := ChainConfig{DefaultUSDSellAmount: 25}
	if got := set.DefaultUSDSellAmountDecimal(); got.String() != "25" {
		t.Fatalf("DefaultUSDSellAmountDecimal() = %s, want 25", got)
	}

	var unset ChainConfig
	if got := unset.DefaultUSDSellAmountDecimal(); got.String() != "10" {
		t.Fatalf("DefaultUSDSellAmountDecimal() = %s, want 10", got)
	}
}
