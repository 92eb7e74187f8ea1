package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/bnema/shipscan/internal/adapters/ledger/memory"
	restledger "github.com/bnema/shipscan/internal/adapters/ledger/rest"
	progressrender "github.com/bnema/shipscan/internal/adapters/render/progress"
	"github.com/bnema/shipscan/internal/application"
	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".shipscan"

	ledgerModeKey      = "ledger.mode"
	ledgerBaseURLKey   = "ledger.base_url"
	debounceKey        = "scanner.debounce_ms"
	lockoutKey         = "scanner.same_code_lockout"
	shipmentPrefixKey  = "grammar.shipment_prefixes"
	itemPrefixKey      = "grammar.item_prefixes"
	bareItemPatternKey = "grammar.bare_item_pattern"
	reportDirKey       = "report.dir"
	serveAddrKey       = "serve.addr"

	ledgerModeMemory = "memory"
	ledgerModeRest   = "rest"
)

type appConfig struct {
	ledgerMode      string
	ledgerBaseURL   string
	debounceWindow  time.Duration
	sameCodeLockout bool
	grammar         domain.Grammar
	reportDir       string
	serveAddr       string
}

type app struct {
	cfg      appConfig
	renderer func(progressrender.Snapshot, progressrender.RenderOptions) (string, error)
	now      func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	cfg.SetDefault(ledgerModeKey, ledgerModeMemory)
	cfg.SetDefault(ledgerBaseURLKey, envOrDefault("SHIPSCAN_LEDGER_URL", "http://127.0.0.1:8484"))
	cfg.SetDefault(debounceKey, int(domain.DefaultDebounceWindow/time.Millisecond))
	cfg.SetDefault(lockoutKey, true)
	cfg.SetDefault(shipmentPrefixKey, []string{"SHIPMENT:"})
	cfg.SetDefault(itemPrefixKey, []string{"ITEM:"})
	cfg.SetDefault(bareItemPatternKey, `^BOX-\d+$`)
	cfg.SetDefault(reportDirKey, filepath.Join(homeDir, configDir, "reports"))
	cfg.SetDefault(serveAddrKey, envOrDefault("SHIPSCAN_ADDR", ":8474"))

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	grammar, err := grammarFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	mode := cfg.GetString(ledgerModeKey)
	if mode != ledgerModeMemory && mode != ledgerModeRest {
		return nil, fmt.Errorf("unknown ledger mode %q", mode)
	}

	return &app{
		cfg: appConfig{
			ledgerMode:      mode,
			ledgerBaseURL:   cfg.GetString(ledgerBaseURLKey),
			debounceWindow:  time.Duration(cfg.GetInt(debounceKey)) * time.Millisecond,
			sameCodeLockout: cfg.GetBool(lockoutKey),
			grammar:         grammar,
			reportDir:       cfg.GetString(reportDirKey),
			serveAddr:       cfg.GetString(serveAddrKey),
		},
		renderer: progressrender.Render,
		now:      time.Now,
	}, nil
}

func grammarFromConfig(cfg *viper.Viper) (domain.Grammar, error) {
	grammar := domain.Grammar{
		ShipmentPrefixes: cfg.GetStringSlice(shipmentPrefixKey),
		ItemPrefixes:     cfg.GetStringSlice(itemPrefixKey),
	}

	if pattern := cfg.GetString(bareItemPatternKey); pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return domain.Grammar{}, fmt.Errorf("compile bare item pattern: %w", err)
		}
		grammar.BareItemPattern = compiled
	}

	return grammar, nil
}

// buildService assembles the receiving workflow against the configured
// ledger. The returned memory ledger is nil in rest mode.
func (a *app) buildService(demo bool) (*application.ReceiveService, *memory.Ledger, error) {
	coord := application.NewSessionCoordinator(application.GuardConfig{
		Window:          a.cfg.debounceWindow,
		SameCodeLockout: a.cfg.sameCodeLockout,
	}, ports.SystemClock{})

	if demo || a.cfg.ledgerMode == ledgerModeMemory {
		ledger := memory.NewLedger()
		memory.SeedDemo(ledger)
		return application.NewReceiveService(ledger, coord, a.cfg.grammar, ports.SystemClock{}), ledger, nil
	}

	client := restledger.NewClient(a.cfg.ledgerBaseURL, nil)
	return application.NewReceiveService(client, coord, a.cfg.grammar, ports.SystemClock{}), nil, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
