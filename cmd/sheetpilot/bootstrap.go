package main

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"sheetpilot/internal/config"
	"sheetpilot/internal/intent"
	"sheetpilot/internal/provider"
	"sheetpilot/internal/session"
	"sheetpilot/internal/store"
	"sheetpilot/internal/types"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg     *config.Config
	store   *store.Store
	session *session.Session
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// bootstrap loads config, opens storage, builds the provider client and a
// fresh session over the workbook.
func bootstrap(wb types.Workbook) (*app, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := provider.New(provider.Name(cfg.LLM.Provider), provider.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.GetLLMTimeout(),
	})
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(workspace, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	fast, capable := cfg.ResolveModels()
	gw := intent.NewGateway(client, fast, capable)
	sess := session.New(gw, wb, st, st, st, cfg.LLM.Provider)
	sess.OnRetry = func(attempt int, delay time.Duration) {
		fmt.Printf("  ... temporary problem, retrying in %s (attempt %d)\n", delay.Round(time.Second), attempt+1)
	}

	logger.Debug("session ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("fast_model", fast),
		zap.String("capable_model", capable),
		zap.String("db", dbPath))

	return &app{cfg: cfg, store: st, session: sess}, nil
}

// loadWorkbook builds the initial workbook: the --file CSV when given,
// otherwise a single empty sheet.
func loadWorkbook() (types.Workbook, error) {
	if filePath == "" {
		return types.Workbook{
			Sheets: []types.Sheet{{Name: "Sheet1"}},
		}, nil
	}
	ds, err := readCSV(filePath)
	if err != nil {
		return types.Workbook{}, err
	}
	name := filepath.Base(filePath)
	return types.Workbook{
		Sheets: []types.Sheet{{Name: name, Data: ds}},
	}, nil
}
