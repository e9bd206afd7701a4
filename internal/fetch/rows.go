package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// ErrNoRows reports a rendered page whose table has no data rows.
var ErrNoRows = errors.New("no table rows found in rendered page")

// TableRows extracts the data rows of the rendered waiting-list table.
// Each row's cell texts are whitespace-normalized; rendered cells often
// contain layout newlines that are not part of the value.
func TableRows(html string) ([]waitlist.TableRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}

	var rows []waitlist.TableRow
	doc.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var row waitlist.TableRow
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cleanCell(cell.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
