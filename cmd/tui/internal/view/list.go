package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateForm
	listStateConfirmDelete
)

const listPageSize = 15

var (
	typeFilters = []*transaction.Type{nil, new(transaction.TypeIncome), new(transaction.TypeExpense)}
	dateFilters = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}
)

type ListModel struct {
	txService *transaction.Service
	userID    uuid.UUID

	state  listState
	table  table.Model
	page   *transaction.Page
	pageNo int

	form    *huh.Form
	fields  *txFields
	editing *transaction.Transaction

	typeFilterIdx int
	dateFilterIdx int

	loading bool
	err     error
	status  string
}

func NewListModel(txSvc *transaction.Service, userID uuid.UUID) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 18},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(listPageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		txService: txSvc,
		userID:    userID,
		table:     t,
		pageNo:    1,
		loading:   true,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateForm:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "y: delete | any other key: cancel"
	}

	return "Esc: back | a: add | e: edit | x: delete | t: type | d: date | n/p: page | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.page = msg.page
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case listStateForm:
		return m.updateForm(msg)
	case listStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterForm(nil)
		case "e":
			if tx := m.selected(); tx != nil {
				return m.enterForm(tx)
			}

			return m, nil
		case "x":
			if m.selected() != nil {
				m.state = listStateConfirmDelete
			}

			return m, nil
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
			m.pageNo = 1

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilters)
			m.pageNo = 1

			return m, m.loadCmd()
		case "n":
			if m.page != nil && m.pageNo < m.page.TotalPages {
				m.pageNo++
				return m, m.loadCmd()
			}

			return m, nil
		case "p":
			if m.pageNo > 1 {
				m.pageNo--
				return m, m.loadCmd()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterForm(tx *transaction.Transaction) (tea.Model, tea.Cmd) {
	m.editing = tx
	m.fields = newTxFields()

	if tx != nil {
		m.fields = fieldsFrom(tx)
	}

	m.form = m.fields.form()
	m.state = listStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.String() == "y" {
		return m, m.deleteCmd()
	}

	m.state = listStateBrowse

	return m, nil
}

func (m ListModel) selected() *transaction.Transaction {
	if m.page == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.page.Transactions) {
		return nil
	}

	return m.page.Transactions[idx]
}

func (m ListModel) filter(now time.Time) transaction.ListFilter {
	start, end := dateFilters[m.dateFilterIdx].Range(now)

	return transaction.ListFilter{
		Type:      typeFilters[m.typeFilterIdx],
		StartDate: start,
		EndDate:   end,
	}
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	typeLabel := "All"
	if t := typeFilters[m.typeFilterIdx]; t != nil {
		typeLabel = string(*t)
	}

	pageInfo := ""
	if m.page != nil {
		pageInfo = fmt.Sprintf(" | Page %d/%d (%d total)", m.pageNo, max(m.page.TotalPages, 1), m.page.Total)
	}

	header := fmt.Sprintf("Filter: [t] Type: %s | [d] Date: %s%s",
		activeStyle(typeLabel), activeStyle(dateFilters[m.dateFilterIdx].String()), pageInfo)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	switch {
	case m.state == listStateForm && m.form != nil:
		title := "Add Transaction"
		if m.editing != nil {
			title = "Edit Transaction"
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(title+"\n\n"+m.form.View()))
	case m.state == listStateConfirmDelete:
		if tx := m.selected(); tx != nil {
			prompt := fmt.Sprintf("Delete %s %s %s?\n\n(y to confirm)", FormatDate(tx.Date), FormatSigned(tx.Type, tx.Amount), tx.Description)
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(40).Render(prompt))
		}
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.page.Transactions))
	for _, tx := range m.page.Transactions {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			FormatSigned(tx.Type, tx.Amount),
			tx.CategoryName(),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	page *transaction.Page
	err  error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter(time.Now())
	page := m.pageNo

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.txService.List(ctx, m.userID, filter, page, listPageSize)

		return loadListMsg{page: p, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	fields := m.fields
	editing := m.editing

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if editing == nil {
			_, err := m.txService.Create(ctx, m.userID, fields.createParams())
			return listSaveMsg{status: "Transaction added.", err: err}
		}

		_, err := m.txService.Update(ctx, m.userID, editing.ID, fields.updateParams())

		return listSaveMsg{status: "Transaction updated.", err: err}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.txService.Delete(ctx, m.userID, tx.ID)

		return listSaveMsg{status: "Transaction deleted.", err: err}
	}
}
