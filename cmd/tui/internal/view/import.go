package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const (
	importTimeout  = 2 * time.Minute
	previewMaxRows = 10
)

type importState int

const (
	importStateFilePick importState = iota
	importStateParsing
	importStatePreview
	importStateImporting
	importStateResult
)

type ImportModel struct {
	txService     *transaction.Service
	importService *importer.Service
	matchService  *matching.Service
	userID        uuid.UUID

	state      importState
	filePicker filepicker.Model
	path       string
	params     []transaction.CreateParams
	matched    int

	status string
	err    error
}

// NewImportModel builds the CSV import screen. matchSvc may be nil.
func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service, matchSvc *matching.Service, userID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		matchService:  matchSvc,
		userID:        userID,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Enter: import | Esc: pick another file"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview && msg.Type == tea.KeyEnter {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing %d transactions...", len(m.params))

			return m, m.importCmd()
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.params = msg.params
		m.matched = msg.matched
		m.state = importStatePreview

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.params = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateParsing, importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV file (date, type, amount, category, description):\n\n" + m.filePicker.View(),
		)
	case importStateParsing, importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.viewPreview())
	case importStateResult:
		style := incomeStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	var income, expense decimal.Decimal

	for _, p := range m.params {
		if p.Type == transaction.TypeIncome {
			income = income.Add(p.Amount)
		} else {
			expense = expense.Add(p.Amount)
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n%d rows | income %s | expense %s | %d categorized by rules\n\n",
		m.path, len(m.params),
		incomeStyle.Render(FormatAmount(income)),
		expenseStyle.Render(FormatAmount(expense)),
		m.matched,
	)

	for _, p := range m.params[:min(len(m.params), previewMaxRows)] {
		fmt.Fprintf(&sb, "%s  %10s  %-16s %s\n", FormatDate(p.Date), FormatSigned(p.Type, p.Amount), p.Category, p.Description)
	}

	if extra := len(m.params) - previewMaxRows; extra > 0 {
		fmt.Fprintln(&sb, faintStyle.Render(fmt.Sprintf("... and %d more", extra)))
	}

	return sb.String()
}

// Messages

type parseResultMsg struct {
	params  []transaction.CreateParams
	matched int
	err     error
}

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(importer.FormatCSV, f)
		if err != nil {
			return parseResultMsg{err: err}
		}

		if len(params) == 0 {
			return parseResultMsg{err: fmt.Errorf("%s contains no transactions", path)}
		}

		var matched int

		if m.matchService != nil {
			ctx, cancel := DbCtx()
			defer cancel()

			matched = m.matchService.Categorize(ctx, m.userID, params, csvfile.DefaultCategory)
		}

		return parseResultMsg{params: params, matched: matched}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	params := m.params

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, m.userID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{count: len(txs)}
	}
}
