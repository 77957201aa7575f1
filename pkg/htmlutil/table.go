package htmlutil

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fragment is a typed view over an element that contains nested tables,
// it keeps all positional access into the markup in one place.
type Fragment struct {
	sel *goquery.Selection
}

// Fragments parses a document and returns a Fragment for every element that
// matches selector. Malformed or empty input yields no fragments.
func Fragments(doc string, selector string) []Fragment {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}
	var out []Fragment
	parsed.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, Fragment{sel: s})
	})
	return out
}

// TableAt returns the nth descendant table of the fragment in document order.
func (f Fragment) TableAt(index int) (Table, error) {
	tables := f.sel.Find("table")
	if index < 0 || index >= tables.Length() {
		return Table{}, fmt.Errorf("no table at index %d (found %d)", index, tables.Length())
	}
	return Table{sel: tables.Eq(index)}, nil
}

// Table is a single table element.
type Table struct {
	sel *goquery.Selection
}

// LabelText concatenates the text of every span inside the table.
func (t Table) LabelText() string {
	var out strings.Builder
	t.sel.Find("span").Each(func(_ int, s *goquery.Selection) {
		out.WriteString(CleanText(s.Text()))
	})
	return out.String()
}

// LinkText returns the text of the first anchor inside the table.
func (t Table) LinkText() (string, bool) {
	anchor := t.sel.Find("a").First()
	if anchor.Length() == 0 {
		return "", false
	}
	return CleanText(anchor.Text()), true
}

// RowCount returns the number of tr elements inside the table.
func (t Table) RowCount() int {
	return t.sel.Find("tr").Length()
}

// CellText returns the cleaned text of the nth td of the nth tr of the table.
func (t Table) CellText(row, cell int) (string, error) {
	rows := t.sel.Find("tr")
	if row < 0 || row >= rows.Length() {
		return "", fmt.Errorf("no row at index %d (found %d)", row, rows.Length())
	}
	cells := rows.Eq(row).Find("td")
	if cell < 0 || cell >= cells.Length() {
		return "", fmt.Errorf("no cell at index %d in row %d (found %d)", cell, row, cells.Length())
	}
	return CleanText(cells.Eq(cell).Text()), nil
}
