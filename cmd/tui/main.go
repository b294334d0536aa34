package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/cache"
	"github.com/MrJamesThe3rd/pocketbook/internal/config"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pocketbook/internal/matching/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocketbook/internal/transaction/store"
)

const logFile = "pocketbook-tui.log"

type services struct {
	tx        *transaction.Service
	analytics *analytics.Service
	matching  *matching.Service
	importer  *importer.Service
	export    *export.Service
}

type model struct {
	svc    services
	userID uuid.UUID

	currentView View

	dashboardView view.DashboardModel
	listView      view.ListModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewList      View = 2
	ViewImport    View = 3
	ViewExport    View = 4
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	var (
		next tea.Model
		cmd  tea.Cmd
	)

	switch m.currentView {
	case ViewDashboard:
		next, cmd = m.dashboardView.Update(msg)
		m.dashboardView = next.(view.DashboardModel)
	case ViewList:
		next, cmd = m.listView.Update(msg)
		m.listView = next.(view.ListModel)
	case ViewImport:
		next, cmd = m.importView.Update(msg)
		m.importView = next.(view.ImportModel)
	case ViewExport:
		next, cmd = m.exportView.Update(msg)
		m.exportView = next.(view.ExportModel)
	}

	return m, cmd
}

// updateMenu rebuilds the chosen screen so it always opens on fresh data.
func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(m.svc.analytics, m.userID)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.svc.tx, m.userID)

		return m, m.listView.Init()
	case "3":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.svc.tx, m.svc.importer, m.svc.matching, m.userID)

		return m, m.importView.Init()
	case "4":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.svc.export, m.userID)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Pocketbook\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Import CSV\n" +
				"4. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		current = m.dashboardView
	case ViewList:
		current = m.listView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to bubbletea, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	slog.SetDefault(cfg.NewLogger(f))

	if cfg.TUI.UserID == "" {
		return errors.New("TUI_USER_ID is required")
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		return fmt.Errorf("TUI_USER_ID: %w", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString(), database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	summaries, closeCache := cache.Open(ctx, cfg.Cache.Driver, cfg.Redis.URL, cfg.Redis.OpTimeout)
	defer closeCache()

	ledger := txStore.New(db)

	m := model{
		svc: services{
			tx:        transaction.NewService(ledger, summaries),
			analytics: analytics.NewService(ledger, summaries, cfg.Cache.TTL),
			matching:  matching.NewService(matchingStore.New(db)),
			importer:  importer.NewService(),
			export:    export.NewService(ledger),
		},
		userID:      userID,
		currentView: ViewMenu,
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pocketbook-tui:", err)
		os.Exit(1)
	}
}
