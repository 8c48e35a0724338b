package simulator

import "fmt"

// isoLocal matches the timestamp shape the UI has always displayed:
// ISO-8601 without a zone suffix.
const isoLocal = "2006-01-02T15:04:05"

var (
	productCategories = []string{"Electronics", "Books", "Clothing", "Home", "Beauty"}
	orderStatuses     = []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}
	firstNames        = []string{"John", "Jane", "Michael", "Emily", "David", "Sarah", "Robert", "Lisa"}
	lastNames         = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Garcia"}
)

// generator produces the row for 1-based index i.
type generator struct {
	columns []string
	count   int
	row     func(i int) map[string]any
}

var tables = map[string]generator{
	"users": {
		columns: []string{"id", "name", "email", "created_at"},
		count:   10,
		row: func(i int) map[string]any {
			return map[string]any{
				"id":         i,
				"name":       fmt.Sprintf("User %d", i),
				"email":      fmt.Sprintf("user%d@example.com", i),
				"created_at": referenceDate.AddDate(0, 0, -30*i).Format(isoLocal),
			}
		},
	},
	"products": {
		columns: []string{"id", "product_name", "price", "stock", "category"},
		count:   10,
		row: func(i int) map[string]any {
			return map[string]any{
				"id":           i,
				"product_name": fmt.Sprintf("Product %d", i),
				"price":        10 + float64(i)*10.5,
				"stock":        100 - i,
				"category":     productCategories[i%len(productCategories)],
			}
		},
	},
	"orders": {
		columns: []string{"id", "user_id", "order_date", "total_amount", "status"},
		count:   10,
		row: func(i int) map[string]any {
			return map[string]any{
				"id":           i,
				"user_id":      i%5 + 1,
				"order_date":   referenceDate.AddDate(0, 0, -i).Format(isoLocal),
				"total_amount": 100 + float64(i)*20.5,
				"status":       orderStatuses[i%len(orderStatuses)],
			}
		},
	},
	"customers": {
		columns: []string{"customer_id", "first_name", "last_name", "phone", "address"},
		count:   10,
		row: func(i int) map[string]any {
			return map[string]any{
				"customer_id": i,
				"first_name":  firstNames[i%len(firstNames)],
				"last_name":   lastNames[i%len(lastNames)],
				"phone":       fmt.Sprintf("+1-555-%d-%d", 100+i, 1000+i),
				"address":     fmt.Sprintf("%d Main St, City, Country", 100+i),
			}
		},
	},
}

// fallback answers any table the simulator doesn't know.
var fallback = generator{
	columns: []string{"id", "column1", "column2", "column3"},
	count:   5,
	row: func(i int) map[string]any {
		return map[string]any{
			"id":      i,
			"column1": fmt.Sprintf("Value %d-1", i),
			"column2": fmt.Sprintf("Value %d-2", i),
			"column3": fmt.Sprintf("Value %d-3", i),
		}
	},
}

func generate(table string) ([]string, []map[string]any) {
	g, ok := tables[table]
	if !ok {
		g = fallback
	}

	columns := make([]string, len(g.columns))
	copy(columns, g.columns)

	rows := make([]map[string]any, g.count)
	for i := range rows {
		rows[i] = g.row(i + 1)
	}
	return columns, rows
}
