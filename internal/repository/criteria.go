package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory/internal/model"
)

// priceText renders whole prices with a trailing ".0" (1 becomes "1.0") so
// prices are matched on the same text a CSV row or report shows.
const priceText = "CASE WHEN price = trunc(price) AND abs(price) < 1e15 " +
	"THEN CAST(price AS TEXT) || '.0' ELSE CAST(price AS TEXT) END"

// searchColumns maps each searchable field to the SQL expression compared
// against the pattern. Non text columns are matched on their text form.
var searchColumns = map[model.Field]string{
	model.FieldID:       "CAST(id AS TEXT)",
	model.FieldName:     "name",
	model.FieldQuantity: "CAST(quantity AS TEXT)",
	model.FieldPrice:    priceText,
	model.FieldCategory: "category",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere translates criteria into a parameterized WHERE clause. Values are
// bound as named arguments; only whitelisted column expressions reach the SQL.
func buildWhere(criteria []model.Criterion) (string, pgx.NamedArgs, error) {
	if len(criteria) == 0 {
		return "", pgx.NamedArgs{}, nil
	}

	conditions := make([]string, 0, len(criteria))
	args := make(pgx.NamedArgs, len(criteria))
	for i, c := range criteria {
		column, ok := searchColumns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown search field %q", c.Field)
		}

		name := fmt.Sprintf("c%d", i)
		switch c.Op {
		case model.OpContains:
			conditions = append(conditions, fmt.Sprintf("%s ILIKE @%s", column, name))
			args[name] = "%" + likeEscaper.Replace(c.Value) + "%"
		default:
			return "", nil, fmt.Errorf("unsupported operator %d for field %q", c.Op, c.Field)
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
