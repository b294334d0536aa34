package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
)

const barWidth = 30

// DashboardModel shows the cached overview and category breakdown next to
// the live monthly trend.
type DashboardModel struct {
	analytics *analytics.Service
	userID    uuid.UUID

	overview  analytics.Overview
	breakdown []analytics.CategoryTotal
	trend     []analytics.MonthTotal

	loading bool
	err     error
}

func NewDashboardModel(svc *analytics.Service, userID uuid.UUID) DashboardModel {
	return DashboardModel{analytics: svc, userID: userID, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.overview = msg.overview
			m.breakdown = msg.breakdown
			m.trend = msg.trend
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summaries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	overview := panelStyle.Render(fmt.Sprintf("Overview\n\nIncome   %s\nExpense  %s\nBalance  %s",
		incomeStyle.Render(FormatAmount(m.overview.Income)),
		expenseStyle.Render(FormatAmount(m.overview.Expense)),
		activeStyle(FormatAmount(m.overview.Balance)),
	))

	content := lipgloss.JoinVertical(lipgloss.Left,
		overview,
		panelStyle.Render("Spending by Category\n\n"+renderBreakdown(m.breakdown)),
		panelStyle.Render("Monthly Trend\n\n"+renderTrend(m.trend)),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func renderBreakdown(totals []analytics.CategoryTotal) string {
	if len(totals) == 0 {
		return faintStyle.Render("No expenses yet.")
	}

	largest := totals[0].Amount

	var sb strings.Builder
	for _, ct := range totals {
		fmt.Fprintf(&sb, "%-16s %10s %s\n", ct.Category, FormatAmount(ct.Amount),
			expenseStyle.Render(bar(ct.Amount, largest)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderTrend(months []analytics.MonthTotal) string {
	if len(months) == 0 {
		return faintStyle.Render("No transactions yet.")
	}

	var largest decimal.Decimal
	for _, mt := range months {
		largest = decimal.Max(largest, mt.Income, mt.Expense)
	}

	var sb strings.Builder
	for _, mt := range months {
		fmt.Fprintf(&sb, "%-8s in  %10s %s\n", mt.Key(), FormatAmount(mt.Income), incomeStyle.Render(bar(mt.Income, largest)))
		fmt.Fprintf(&sb, "%-8s out %10s %s\n", "", FormatAmount(mt.Expense), expenseStyle.Render(bar(mt.Expense, largest)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// bar scales v against largest into at most barWidth blocks.
func bar(v, largest decimal.Decimal) string {
	if !largest.IsPositive() {
		return ""
	}

	n := v.Div(largest).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart()

	return strings.Repeat("█", int(n))
}

type dashboardMsg struct {
	overview  analytics.Overview
	breakdown []analytics.CategoryTotal
	trend     []analytics.MonthTotal
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		overview, err := m.analytics.Overview(ctx, m.userID)
		if err != nil {
			return dashboardMsg{err: err}
		}

		breakdown, err := m.analytics.CategoryBreakdown(ctx, m.userID)
		if err != nil {
			return dashboardMsg{err: err}
		}

		trend, err := m.analytics.MonthlyTrend(ctx, m.userID)
		if err != nil {
			return dashboardMsg{err: err}
		}

		return dashboardMsg{overview: overview, breakdown: breakdown, trend: trend}
	}
}
