package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetYaml(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
quote: usdt
quote_proxy: usdcusdt
universe_size: "50"
windows: [30, 7]
sources: [Binance, Bybit, coingecko]
out_dir: /tmp/corr
file_prefix: corr
workers: "8"
max_gap_fill: "2"
min_overlap_ratio: "0.9"
call_timeout: 10s
cache_ttl: 5m
exchange_spacing: 100ms
coingecko_spacing: 1s
refresh_interval: 1h
`)

		cfg, err := getYaml(path)
		require.NoError(t, err)

		assert.Equal(t, "USDT", cfg.Quote)
		assert.Equal(t, "USDCUSDT", cfg.QuoteProxy)
		assert.Equal(t, 50, cfg.UniverseSize)
		assert.Equal(t, []domain.Window{7, 30}, cfg.Windows, "windows are sorted ascending")
		assert.Equal(t, []string{"binance", "bybit", "coingecko"}, cfg.Sources)
		assert.Equal(t, "/tmp/corr", cfg.OutDir)
		assert.Equal(t, "corr", cfg.FilePrefix)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, 2, cfg.MaxGapFill)
		assert.Equal(t, 0.9, cfg.MinOverlapRatio)
		assert.Equal(t, 10*time.Second, cfg.CallTimeout)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, 100*time.Millisecond, cfg.ExchangeSpacing)
		assert.Equal(t, time.Second, cfg.CoinGeckoSpacing)
		assert.Equal(t, time.Hour, cfg.RefreshInterval)
	})

	t.Run("empty config keeps every default", func(t *testing.T) {
		path := writeConfig(t, "")

		cfg, err := getYaml(path)
		require.NoError(t, err)

		want := Defaults()
		require.NoError(t, finish(&want))
		assert.Equal(t, want, cfg)
		assert.Equal(t, time.Duration(0), cfg.RefreshInterval, "default is run once")
	})

	t.Run("default proxy is dropped for a non-default quote", func(t *testing.T) {
		path := writeConfig(t, "quote: usdc\n")

		cfg, err := getYaml(path)
		require.NoError(t, err)
		assert.Equal(t, "USDC", cfg.Quote)
		assert.Empty(t, cfg.QuoteProxy)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := getYaml(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		tmp     ConfigTmp
		wantErr string
	}{
		{
			name:    "duplicate windows",
			tmp:     ConfigTmp{Windows: []int{7, 7}},
			wantErr: "duplicate lookback window",
		},
		{
			name:    "window too short",
			tmp:     ConfigTmp{Windows: []int{1}},
			wantErr: "at least 2 days",
		},
		{
			name:    "unknown source",
			tmp:     ConfigTmp{Sources: []string{"kraken"}},
			wantErr: "unknown price source",
		},
		{
			name:    "overlap ratio above one",
			tmp:     ConfigTmp{MinOverlapRatioStr: "1.5"},
			wantErr: "min_overlap_ratio",
		},
		{
			name:    "zero universe",
			tmp:     ConfigTmp{UniverseSizeStr: "0"},
			wantErr: "universe_size",
		},
		{
			name:    "universe not a number",
			tmp:     ConfigTmp{UniverseSizeStr: "many"},
			wantErr: "must be an integer",
		},
		{
			name:    "negative workers",
			tmp:     ConfigTmp{WorkersStr: "-1"},
			wantErr: "workers",
		},
		{
			name:    "proxy quoted in the wrong asset",
			tmp:     ConfigTmp{QuoteProxy: "USDCUSDC"},
			wantErr: "quote_proxy",
		},
		{
			name:    "negative refresh interval",
			tmp:     ConfigTmp{RefreshIntervalStr: "-5m"},
			wantErr: "refresh_interval",
		},
		{
			name:    "bad duration",
			tmp:     ConfigTmp{CallTimeoutStr: "soon"},
			wantErr: "must be a duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(tt.tmp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseWindows(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      []domain.Window
		shouldErr bool
	}{
		{
			name:  "plain list",
			input: "7,30,90",
			want:  []domain.Window{7, 30, 90},
		},
		{
			name:  "spaces and empty items",
			input: " 7 , ,30",
			want:  []domain.Window{7, 30},
		},
		{
			name:      "not a number",
			input:     "7,soon",
			shouldErr: true,
		},
		{
			name:  "empty input",
			input: "",
			want:  []domain.Window{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindows(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
