package analytics

import (
	"bytes"
	"encoding/json"

	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
)

type overviewResponse struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
}

type categoryResponse struct {
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

type monthResponse struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
}

// trendResponse encodes as a JSON object keyed "2024-1", keeping the months in
// the order the engine produced them. A Go map would sort the keys.
type trendResponse []analytics.MonthTotal

func (t trendResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, m := range t {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(m.Key())
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(monthResponse{
			Income:  respond.Money(m.Income),
			Expense: respond.Money(m.Expense),
		})
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func toOverviewResponse(o analytics.Overview) overviewResponse {
	return overviewResponse{
		Income:  respond.Money(o.Income),
		Expense: respond.Money(o.Expense),
		Balance: respond.Money(o.Balance),
	}
}

func toCategoryResponse(totals []analytics.CategoryTotal) []categoryResponse {
	resp := make([]categoryResponse, len(totals))
	for i, c := range totals {
		resp[i] = categoryResponse{Category: c.Category, Amount: respond.Money(c.Amount)}
	}

	return resp
}
