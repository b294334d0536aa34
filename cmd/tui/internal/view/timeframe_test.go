package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_Range(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}{
		{TimeframeThisMonth, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)},
		{TimeframeLastMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC)},
		{TimeframeThisYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end := tt.tf.Range(now)
			require.NotNil(t, start)
			require.NotNil(t, end)
			assert.Equal(t, tt.wantStart, *start)
			assert.Equal(t, tt.wantEnd, *end)
		})
	}

	start, end := TimeframeAll.Range(now)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestTimeframe_LastMonthAcrossYear(t *testing.T) {
	start, end := TimeframeLastMonth.Range(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), *start)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC), *end)
}

func TestTimeframePicker_SelectPreset(t *testing.T) {
	p := NewTimeframePicker(TimeframeAll)
	p.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "This Month", msg.Label)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *msg.Start)
}
