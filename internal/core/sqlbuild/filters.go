package sqlbuild

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"opsroute/internal/core/dates"
	"opsroute/internal/core/params"
	"opsroute/internal/core/patterns"
)

var (
	equipmentIDRe = regexp.MustCompile(`^[A-Z]{2,4}-\d{1,4}$`)
	machineRe     = regexp.MustCompile(`^[a-z_]{2,20}$`)
	isoRe         = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var operators = map[string]bool{">": true, "<": true, ">=": true, "<=": true, "=": true, "between": true}

// quote renders a string literal; every caller has validated the value already
func quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

func quoteList(vals []string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = quote(v)
	}
	return strings.Join(q, ", ")
}

// inOrEq renders col = 'x' for one value and col IN (...) for several
func inOrEq(col string, vals []string) string {
	if len(vals) == 1 {
		return col + " = " + quote(vals[0])
	}
	return col + " IN (" + quoteList(vals) + ")"
}

func validISO(s string) bool {
	if !isoRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(dates.ISO, s)
	return err == nil
}

// DateFilter picks the most specific date in the bag: single date, range, parsed date, then month/quarter/year.
// ok is false when the bag holds a date that does not validate
func DateFilter(b params.Bag, col string) (string, bool) {
	between := func(s, e string) (string, bool) {
		if !validISO(s) || !validISO(e) || e < s {
			return "", false
		}
		if s == e {
			return fmt.Sprintf("%s = '%s'", col, s), true
		}
		return fmt.Sprintf("%s BETWEEN '%s' AND '%s'", col, s, e), true
	}
	switch {
	case b.Date != "":
		return between(b.Date, b.Date)
	case b.DateStart != "" || b.DateEnd != "":
		return between(b.DateStart, b.DateEnd)
	case b.ParsedDate != nil:
		f := dates.ToSQLFilter(b.ParsedDate, col)
		return f, f != ""
	case b.Year != nil:
		y := *b.Year
		if !dates.YearOK(y) {
			return "", false
		}
		switch {
		case b.Quarter != nil:
			if *b.Quarter < 1 || *b.Quarter > 4 {
				return "", false
			}
			q := dates.QuarterRange(y, *b.Quarter)
			return between(q.StartDate, q.EndDate)
		case b.Month != nil:
			m := *b.Month
			if m < 1 || m > 12 {
				return "", false
			}
			last := dates.LastDay(y, time.Month(m))
			return between(fmt.Sprintf("%04d-%02d-01", y, m), fmt.Sprintf("%04d-%02d-%02d", y, m, last))
		}
		return between(fmt.Sprintf("%04d-01-01", y), fmt.Sprintf("%04d-12-31", y))
	}
	return "", true
}

// ShiftFilter renders shift = 'A' or shift IN ('A', 'B')
func ShiftFilter(b params.Bag, col string) (string, bool) {
	if len(b.Shift) == 0 {
		return "", true
	}
	vals := make([]string, 0, len(b.Shift))
	for _, s := range b.Shift {
		l, ok := patterns.ShiftLetter(s)
		if !ok {
			return "", false
		}
		vals = append(vals, l)
	}
	return inOrEq(col, vals), true
}

// EquipmentFilter renders equipment_id = 'X' or IN (...)
func EquipmentFilter(b params.Bag, col string) (string, bool) {
	if len(b.EquipmentIDs) == 0 {
		return "", true
	}
	for _, id := range b.EquipmentIDs {
		if !equipmentIDRe.MatchString(id) {
			return "", false
		}
	}
	return inOrEq(col, b.EquipmentIDs), true
}

// NumericFilter renders the comparison on col
func NumericFilter(b params.Bag, col string) (string, bool) {
	nf := b.NumericFilter
	if nf == nil {
		return "", true
	}
	if !operators[nf.Operator] {
		return "", false
	}
	if nf.Operator == "between" {
		if nf.Upper == nil {
			return "", false
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, num(nf.Value), num(*nf.Upper)), true
	}
	return fmt.Sprintf("%s %s %s", col, nf.Operator, num(nf.Value)), true
}

// MachineFilter renders a machine_type predicate; idCol switches to a subquery on equipment
// for tables that only carry equipment ids
func MachineFilter(b params.Bag, typeCol, idCol string) (string, bool) {
	if len(b.MachineTypes) == 0 {
		return "", true
	}
	for _, m := range b.MachineTypes {
		if !machineRe.MatchString(m) {
			return "", false
		}
	}
	if typeCol != "" {
		return inOrEq(typeCol, b.MachineTypes), true
	}
	return idCol + " IN (SELECT equipment_id FROM equipment WHERE " + inOrEq("machine_type", b.MachineTypes) + ")", true
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
