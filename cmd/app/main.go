package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/assistant"
	"github.com/ivanoskov/finance_desktop/internal/auth"
	"github.com/ivanoskov/finance_desktop/internal/charts"
	"github.com/ivanoskov/finance_desktop/internal/config"
	"github.com/ivanoskov/finance_desktop/internal/finance"
	"github.com/ivanoskov/finance_desktop/internal/repository"
	"github.com/ivanoskov/finance_desktop/internal/session"
	"github.com/ivanoskov/finance_desktop/internal/shell"
)

func main() {
	// Числовые колонки PostgREST принимают суммы как JSON-числа
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		log.Fatal(err)
	}

	sessionPath := cfg.SessionFile
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
	}

	sessions := session.NewStore(sessionPath)
	authManager := auth.NewManager(repo, sessions)
	synchronizer := finance.NewSynchronizer(repo)
	generator := charts.NewChartGenerator()

	groq := assistant.NewGroq(cfg.GroqAPIKey)
	newAssistant := func(userID int64) *assistant.Assistant {
		return assistant.New(cfg.GroqAPIKey, groq, assistant.NewToolBridge(repo, userID))
	}

	app := shell.NewShell(authManager, synchronizer, generator, newAssistant)
	if err := app.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
