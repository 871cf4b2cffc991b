package db

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern - шаблон ILIKE для поиска подстроки. Спецсимволы экранируются,
// чтобы "50%" искал ровно "50%".
func ContainsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// SearchAny - (col1 ILIKE p OR col2 ILIKE p ...). nil, если строка поиска пустая.
func SearchAny(search string, columns ...string) sq.Sqlizer {
	if search == "" || len(columns) == 0 {
		return nil
	}
	pat := ContainsPattern(search)
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pat})
	}
	return or
}

// ApplyFilters добавляет непустые условия в WHERE.
func ApplyFilters(builder sq.SelectBuilder, preds ...sq.Sqlizer) sq.SelectBuilder {
	for _, p := range preds {
		if p != nil {
			builder = builder.Where(p)
		}
	}
	return builder
}

// ApplyPage добавляет LIMIT/OFFSET. limit <= 0 - без пагинации.
func ApplyPage(builder sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	if limit <= 0 {
		return builder
	}
	builder = builder.Limit(uint64(limit))
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	return builder
}
