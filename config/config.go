package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

// Defaults applied when a setting is absent from the YAML file and CLI.
const (
	DefaultQuote        = "USDT"
	DefaultQuoteProxy   = "USDCUSDT"
	DefaultUniverseSize = 300
	DefaultOutDir       = "."
	DefaultFilePrefix   = "crypto_correlations"

	defaultWorkers         = 4
	defaultMaxGapFill      = 3
	defaultMinOverlapRatio = 0.8
	defaultCallTimeout     = 20 * time.Second
	defaultCacheTTL        = 10 * time.Minute
	defaultExchangeSpacing = 250 * time.Millisecond
	defaultGeckoSpacing    = 2 * time.Second
)

var (
	defaultWindows = []domain.Window{7, 30, 90}
	defaultSources = []string{"binance", "coingecko"}

	validSources = map[string]struct{}{"binance": {}, "bybit": {}, "coingecko": {}}
)

// Config is the resolved runtime configuration.
type Config struct {
	// Init requests the interactive setup wizard instead of a run.
	Init bool

	// Quote is the exchange quote asset tokens are paired against.
	Quote string
	// QuoteProxy is the pair used to price the quote asset itself, inverted.
	// Empty disables pricing the quote asset on exchanges.
	QuoteProxy string
	// UniverseSize is how many top market cap tokens to correlate.
	UniverseSize int
	// Windows are the lookback windows in days, ascending.
	Windows []domain.Window
	// Sources are the price providers tried in order for history.
	Sources []string
	// OutDir is where snapshot CSV files are written.
	OutDir string
	// FilePrefix names the snapshot files: <prefix>_<window>d.csv.
	FilePrefix string

	Workers          int
	MaxGapFill       int
	MinOverlapRatio  float64
	CallTimeout      time.Duration
	CacheTTL         time.Duration
	ExchangeSpacing  time.Duration
	CoinGeckoSpacing time.Duration
	// RefreshInterval reruns the pipeline on a ticker when positive;
	// zero runs once and exits.
	RefreshInterval time.Duration
}

// ConfigTmp mirrors the YAML file. Numbers and durations are strings so the
// file can say "300" and "5m"; an empty value means the default.
type ConfigTmp struct {
	Quote               string   `yaml:"quote,omitempty"`
	QuoteProxy          string   `yaml:"quote_proxy,omitempty"`
	UniverseSizeStr     string   `yaml:"universe_size,omitempty"`
	Windows             []int    `yaml:"windows,omitempty"`
	Sources             []string `yaml:"sources,omitempty"`
	OutDir              string   `yaml:"out_dir,omitempty"`
	FilePrefix          string   `yaml:"file_prefix,omitempty"`
	WorkersStr          string   `yaml:"workers,omitempty"`
	MaxGapFillStr       string   `yaml:"max_gap_fill,omitempty"`
	MinOverlapRatioStr  string   `yaml:"min_overlap_ratio,omitempty"`
	CallTimeoutStr      string   `yaml:"call_timeout,omitempty"`
	CacheTTLStr         string   `yaml:"cache_ttl,omitempty"`
	ExchangeSpacingStr  string   `yaml:"exchange_spacing,omitempty"`
	CoinGeckoSpacingStr string   `yaml:"coingecko_spacing,omitempty"`
	RefreshIntervalStr  string   `yaml:"refresh_interval,omitempty"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Quote:            DefaultQuote,
		QuoteProxy:       DefaultQuoteProxy,
		UniverseSize:     DefaultUniverseSize,
		Windows:          append([]domain.Window(nil), defaultWindows...),
		Sources:          append([]string(nil), defaultSources...),
		OutDir:           DefaultOutDir,
		FilePrefix:       DefaultFilePrefix,
		Workers:          defaultWorkers,
		MaxGapFill:       defaultMaxGapFill,
		MinOverlapRatio:  defaultMinOverlapRatio,
		CallTimeout:      defaultCallTimeout,
		CacheTTL:         defaultCacheTTL,
		ExchangeSpacing:  defaultExchangeSpacing,
		CoinGeckoSpacing: defaultGeckoSpacing,
	}
}

// Get resolves the runtime configuration from a YAML file when --config is
// given, from CLI flags otherwise.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	runWizard := flag.Bool("init", false, "generate a config file with the interactive wizard and exit")
	quote := flag.String("quote", DefaultQuote, "quote asset for exchange pairs, example: USDT")
	universe := flag.Int("universe", DefaultUniverseSize, "how many top market cap tokens to correlate")
	windows := flag.String("windows", "7,30,90", "lookback windows in days, comma separated")
	outDir := flag.String("outdir", DefaultOutDir, "directory for snapshot csv files")
	refreshInterval := flag.Duration("refreshinterval", 0, "rerun the pipeline on this interval, 0 runs once")
	flag.Parse()

	if *runWizard {
		return Config{Init: true}, nil
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	ws, err := ParseWindows(*windows)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --windows provided, --windows=%s: %w", *windows, err)
	}

	cfg := Defaults()
	cfg.Quote = *quote
	cfg.UniverseSize = *universe
	cfg.Windows = ws
	cfg.OutDir = *outDir
	cfg.RefreshInterval = *refreshInterval
	if err := finish(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseWindows parses a comma separated list of window lengths in days.
func ParseWindows(s string) ([]domain.Window, error) {
	parts := strings.Split(s, ",")
	out := make([]domain.Window, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("window %q is not a number: %w", p, err)
		}
		out = append(out, domain.Window(n))
	}
	return out, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}
	return build(tmp)
}

func build(tmp ConfigTmp) (Config, error) {
	cfg := Defaults()

	if tmp.Quote != "" {
		cfg.Quote = tmp.Quote
	}
	if tmp.QuoteProxy != "" {
		cfg.QuoteProxy = tmp.QuoteProxy
	}
	if tmp.UniverseSizeStr != "" {
		n, err := strconv.Atoi(tmp.UniverseSizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'universe_size' param in yaml config (must be an integer): %w", err)
		}
		cfg.UniverseSize = n
	}
	if len(tmp.Windows) > 0 {
		ws := make([]domain.Window, 0, len(tmp.Windows))
		for _, w := range tmp.Windows {
			ws = append(ws, domain.Window(w))
		}
		cfg.Windows = ws
	}
	if len(tmp.Sources) > 0 {
		cfg.Sources = tmp.Sources
	}
	if tmp.OutDir != "" {
		cfg.OutDir = tmp.OutDir
	}
	if tmp.FilePrefix != "" {
		cfg.FilePrefix = tmp.FilePrefix
	}
	if tmp.WorkersStr != "" {
		n, err := strconv.Atoi(tmp.WorkersStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'workers' param in yaml config (must be an integer): %w", err)
		}
		cfg.Workers = n
	}
	if tmp.MaxGapFillStr != "" {
		n, err := strconv.Atoi(tmp.MaxGapFillStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'max_gap_fill' param in yaml config (must be an integer): %w", err)
		}
		cfg.MaxGapFill = n
	}
	if tmp.MinOverlapRatioStr != "" {
		f, err := strconv.ParseFloat(tmp.MinOverlapRatioStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'min_overlap_ratio' param in yaml config (must be a number): %w", err)
		}
		cfg.MinOverlapRatio = f
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"call_timeout", tmp.CallTimeoutStr, &cfg.CallTimeout},
		{"cache_ttl", tmp.CacheTTLStr, &cfg.CacheTTL},
		{"exchange_spacing", tmp.ExchangeSpacingStr, &cfg.ExchangeSpacing},
		{"coingecko_spacing", tmp.CoinGeckoSpacingStr, &cfg.CoinGeckoSpacing},
		{"refresh_interval", tmp.RefreshIntervalStr, &cfg.RefreshInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect '%s' param in yaml config (must be a duration like 5m): %w", d.name, err)
		}
		*d.dst = v
	}

	if err := finish(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// finish normalizes and validates a config regardless of where it came from.
func finish(cfg *Config) error {
	cfg.Quote = strings.ToUpper(strings.TrimSpace(cfg.Quote))
	cfg.QuoteProxy = strings.ToUpper(strings.TrimSpace(cfg.QuoteProxy))
	// the default proxy only makes sense for the default quote
	if cfg.Quote != DefaultQuote && cfg.QuoteProxy == DefaultQuoteProxy {
		cfg.QuoteProxy = ""
	}

	for i, s := range cfg.Sources {
		cfg.Sources[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Slice(cfg.Windows, func(i, j int) bool { return cfg.Windows[i] < cfg.Windows[j] })

	return validate(cfg)
}

func validate(cfg *Config) error {
	if cfg.Quote == "" {
		return fmt.Errorf("'quote' must not be empty")
	}
	if cfg.QuoteProxy != "" && !strings.HasSuffix(cfg.QuoteProxy, cfg.Quote) {
		return fmt.Errorf("'quote_proxy' %s must be a pair quoted in %s", cfg.QuoteProxy, cfg.Quote)
	}
	if cfg.UniverseSize <= 0 {
		return fmt.Errorf("'universe_size' must be positive, got %d", cfg.UniverseSize)
	}
	if len(cfg.Windows) == 0 {
		return fmt.Errorf("at least one lookback window is required")
	}
	for i, w := range cfg.Windows {
		if w < 2 {
			return fmt.Errorf("lookback window must be at least 2 days, got %s", w)
		}
		if i > 0 && cfg.Windows[i-1] == w {
			return fmt.Errorf("duplicate lookback window %s", w)
		}
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one price source is required")
	}
	for _, s := range cfg.Sources {
		if _, ok := validSources[s]; !ok {
			return fmt.Errorf("unknown price source %q (supported: binance, bybit, coingecko)", s)
		}
	}
	if cfg.OutDir == "" {
		return fmt.Errorf("'out_dir' must not be empty")
	}
	if cfg.FilePrefix == "" {
		return fmt.Errorf("'file_prefix' must not be empty")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("'workers' must be positive, got %d", cfg.Workers)
	}
	if cfg.MaxGapFill < 0 {
		return fmt.Errorf("'max_gap_fill' must not be negative, got %d", cfg.MaxGapFill)
	}
	if cfg.MinOverlapRatio <= 0 || cfg.MinOverlapRatio > 1 {
		return fmt.Errorf("'min_overlap_ratio' must be between 0 and 1, got %v", cfg.MinOverlapRatio)
	}
	if cfg.RefreshInterval < 0 {
		return fmt.Errorf("'refresh_interval' must not be negative")
	}
	return nil
}
