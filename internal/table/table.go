// Package table unifies per-product field maps into one rectangular table.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/maltedev/wheel-catalog-scraper/internal/models"
)

// PreferredColumns leads every exported table, in this order, when present.
var PreferredColumns = []string{
	"Overview",
	"Part Number",
	"Wheel Diameter (in)",
	"Wheel Width (in)",
	"Bolt Pattern",
	"Offset (mm)",
	"Hub Bore (mm)",
	"Back Spacing (in)",
	"Wheel Weight (lbs)",
	"Max Load (lbs)",
}

type Table struct {
	Columns []string
	Rows    [][]string

	// Input is the number of records before duplicate rows were dropped.
	Input int
}

// Unify computes the column union of records, orders it and builds one row
// per record, dropping rows identical to an earlier one.
func Unify(records []*models.FieldMap) *Table {
	t := &Table{Columns: Columns(records), Input: len(records)}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		row := make([]string, len(t.Columns))
		for i, column := range t.Columns {
			row[i], _ = record.Get(column)
		}

		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// Columns returns the ordered union of all record keys.
func Columns(records []*models.FieldMap) []string {
	all := make(map[string]struct{})
	var encountered []string
	for _, record := range records {
		for _, key := range record.Keys() {
			if _, ok := all[key]; !ok {
				all[key] = struct{}{}
				encountered = append(encountered, key)
			}
		}
	}

	preferred := make(map[string]struct{}, len(PreferredColumns))
	var columns []string
	for _, column := range PreferredColumns {
		preferred[column] = struct{}{}
		if _, ok := all[column]; ok {
			columns = append(columns, column)
		}
	}

	columns = append(columns, models.SortBulletKeys(encountered)...)

	var others []string
	for _, key := range encountered {
		if _, ok := preferred[key]; ok || models.IsBulletKey(key) {
			continue
		}
		others = append(others, key)
	}
	sort.Strings(others)

	return append(columns, others...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Duplicates is the number of records collapsed into earlier rows.
func (t *Table) Duplicates() int {
	return t.Input - len(t.Rows)
}

// Record returns row i as a column to value mapping.
func (t *Table) Record(i int) map[string]string {
	out := make(map[string]string, len(t.Columns))
	for j, column := range t.Columns {
		out[column] = t.Rows[i][j]
	}
	return out
}

// rowKey length-prefixes each cell so no cell content can merge two rows.
func rowKey(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}
