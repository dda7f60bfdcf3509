package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/cryptocorr/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		quote       string
		universeStr string
		windowsStr  string
		sources     []string
		outDir      string
		intervalStr string
		confirm     bool
	)

	// defaults
	universeStr = strconv.Itoa(config.DefaultUniverseSize)
	windowsStr = "7,30,90"
	outDir = config.DefaultOutDir
	intervalStr = "0"

	// step 1: welcome
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's set up your correlation snapshots.\n"))

	// quote asset
	fmt.Println(stepStyle.Render("STEP 1: QUOTE ASSET"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Quote asset for exchange pairs").
				Options(
					huh.NewOption("USDT", "USDT"),
					huh.NewOption("USDC", "USDC"),
				).
				Value(&quote),
		),
	).Run()
	if err != nil {
		return err
	}

	// universe
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: UNIVERSE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Universe Size").
				Description("How many top market cap tokens to correlate (e.g. 300)").
				Value(&universeStr).
				Validate(validateUniverse),
		),
	).Run()
	if err != nil {
		return err
	}

	// lookback windows
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: LOOKBACK WINDOWS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Windows in days").
				Description("Comma separated (e.g. 7,30,90)").
				Value(&windowsStr).
				Validate(validateWindows),
		),
	).Run()
	if err != nil {
		return err
	}

	// price sources
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: PRICE SOURCES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Price history sources, tried in order").
				Options(
					huh.NewOption("Binance", "binance").Selected(true),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("CoinGecko", "coingecko").Selected(true),
				).
				Value(&sources).
				Validate(func(selected []string) error {
					if len(selected) == 0 {
						return fmt.Errorf("select at least one source")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// output and schedule
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: OUTPUT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snapshot Directory").
				Description("Where the CSV files go").
				Value(&outDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("directory cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Refresh Interval").
				Description("Duration between runs (e.g. 6h), 0 runs once").
				Value(&intervalStr).
				Validate(validateInterval),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("CRYPTOCORR CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	// show summary
	summary := fmt.Sprintf(
		"Quote: %s\nUniverse: %s tokens\nWindows: %s\nSources: %s\nOutput: %s\nRefresh: %s\n",
		quote, universeStr, windowsStr, strings.Join(sources, ", "), outDir, intervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	// generate config
	windows, _ := config.ParseWindows(windowsStr)
	windowInts := make([]int, 0, len(windows))
	for _, w := range windows {
		windowInts = append(windowInts, int(w))
	}

	cfgTmp := config.ConfigTmp{
		Quote:           quote,
		UniverseSizeStr: universeStr,
		Windows:         windowInts,
		Sources:         sources,
		OutDir:          outDir,
	}
	if intervalStr != "" && intervalStr != "0" {
		cfgTmp.RefreshIntervalStr = intervalStr
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	// write to config.gen.yaml
	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nRun with: cryptocorr --config %s", filename, filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateUniverse(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 2 || n > 1000 {
		return fmt.Errorf("must be between 2 and 1000")
	}
	return nil
}

func validateWindows(s string) error {
	windows, err := config.ParseWindows(s)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return fmt.Errorf("at least one window is required")
	}
	for _, w := range windows {
		if w < 2 {
			return fmt.Errorf("windows must be at least 2 days")
		}
	}
	return nil
}

func validateInterval(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 6h, or 0")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
