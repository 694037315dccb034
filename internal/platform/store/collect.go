package store

import (
	"context"
	"time"
)

// ResultSet is a materialized, capped query result
type ResultSet struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// Collect drains rows into a ResultSet, keeping at most max rows (0 means no cap)
// Rows is closed before returning
func Collect(rows Rows, max int) (ResultSet, error) {
	defer rows.Close()
	rs := ResultSet{Columns: rows.Columns(), Rows: [][]any{}}
	for rows.Next() {
		if max > 0 && len(rs.Rows) >= max {
			rs.Truncated = true
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return ResultSet{}, err
		}
		for i, v := range vals {
			vals[i] = jsonFriendly(v)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	return rs, rows.Err()
}

// QueryCollect runs sql on q and collects up to max rows
func QueryCollect(ctx context.Context, q RowQuerier, max int, sql string, args ...any) (ResultSet, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return ResultSet{}, err
	}
	return Collect(rows, max)
}

func jsonFriendly(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	default:
		return v
	}
}
