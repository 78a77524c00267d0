package google

import (
	"fmt"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

// header is written above the first mirrored row.
var header = []any{"ID", "Date", "Category", "Description", "Amount", "Created At"}

// encodeRow lays an expense out as [id, date, category, description, amount, created_at].
func encodeRow(e core.Expense) []any {
	return []any{
		e.ID,
		e.Date.String(),
		e.Category,
		e.Description,
		e.Amount,
		e.CreatedAt.UTC().Format(core.TimestampLayout),
	}
}

// findRow returns the 1-based sheet row whose first cell holds id.
func findRow(values [][]any, id int64) (int, bool) {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1, true
		}
	}
	return 0, false
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:F%d", sheet, row, row)
}
