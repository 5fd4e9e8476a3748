// Package pricelist reads supplier price lists (CSV, XLSX, legacy XLS,
// saved HTML tables) into catalog rows. Column layout varies wildly
// between suppliers, so headers are mapped by keyword.
package pricelist

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Bersy123e/offerdoffer/internal/catalog"
)

// ReadAny picks a parser by extension and returns catalog rows.
// headerRow is the 1-based header line.
func ReadAny(r io.Reader, filename string, headerRow int) ([]catalog.Row, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		tbl table
		err error
	)
	switch ext {
	case ".xlsx":
		tbl, err = readXLSX(r, headerRow)
	case ".xls":
		tbl, err = readXLS(r, headerRow)
	case ".csv":
		tbl, err = readCSV(r, headerRow)
	case ".html", ".htm":
		tbl, err = readHTML(r, headerRow)
	default:
		return nil, fmt.Errorf("unsupported price list format: %s", filename)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromTable(tbl)
}

// table holds parsed records together with the headers in source column
// order. Порядок важен: при двух подходящих колонках ("Цена опт",
// "Цена розница") выбирается левая, одинаково от прогона к прогону.
type table struct {
	headers []string
	records []map[string]string
}

// Ключевые слова заголовков; у каждого поставщика колонки называются
// по-своему.
var headerKeywords = map[string][]string{
	"name":     {"наимен", "товар", "продукт", "описан", "позиц", "номенклатур", "name", "product", "item", "description"},
	"price":    {"цена", "стоим", "прайс", "price", "cost"},
	"stock":    {"кол-во", "остат", "наличи", "склад", "баланс", "stock", "quantity", "qty", "amount"},
	"supplier": {"поставщик", "производ", "supplier", "vendor", "manufacturer"},
}

type columnMapping struct {
	name     string
	price    string
	stock    string
	supplier string
}

// mapColumns resolves which source column feeds each standard field.
// Name and price are required; stock and supplier are optional.
func mapColumns(headers []string) (columnMapping, error) {
	assigned := map[string]bool{}
	resolve := func(field string) string {
		for _, h := range headers {
			if h == "" || assigned[h] {
				continue
			}
			lower := strings.ToLower(strings.TrimSpace(h))
			for _, kw := range headerKeywords[field] {
				if strings.Contains(lower, kw) {
					assigned[h] = true
					return h
				}
			}
		}
		return ""
	}

	m := columnMapping{
		name:     resolve("name"),
		price:    resolve("price"),
		stock:    resolve("stock"),
		supplier: resolve("supplier"),
	}
	if m.name == "" || m.price == "" {
		return m, fmt.Errorf("could not map essential columns (name, price) from headers: %v", headers)
	}
	return m, nil
}

var rePriceNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// parsePrice extracts the numeric price out of cells like "17 000 руб."
func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	m := rePriceNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseStock(s string) int {
	m := rePriceNumber.FindString(strings.ReplaceAll(s, " ", ""))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.SplitN(m, ".", 2)[0])
	if err != nil {
		return 0
	}
	return n
}

// rowsFromTable converts parsed records into catalog rows, skipping rows
// without a product name or a price (totals, section headers).
func rowsFromTable(t table) ([]catalog.Row, error) {
	if len(t.records) == 0 {
		return nil, nil
	}
	mapping, err := mapColumns(t.headers)
	if err != nil {
		return nil, err
	}

	var rows []catalog.Row
	for _, rec := range t.records {
		name := strings.TrimSpace(rec[mapping.name])
		if name == "" {
			continue
		}
		price, ok := parsePrice(rec[mapping.price])
		if !ok {
			continue
		}
		row := catalog.Row{Name: name, Price: price}
		if mapping.stock != "" {
			row.Stock = parseStock(rec[mapping.stock])
		}
		if mapping.supplier != "" {
			row.Supplier = strings.TrimSpace(rec[mapping.supplier])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// resolveHeaderRow returns headerRow when given explicitly (1-based),
// otherwise scans the top of the grid for the first line whose cells
// resolve the essential columns. Прайсы из 1С часто начинаются с шапки
// организации, заголовок таблицы лежит ниже.
func resolveHeaderRow(rows [][]string, headerRow int) int {
	if headerRow >= 1 {
		return headerRow
	}
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		if _, err := mapColumns(pickHeader(rows, i+1)); err == nil {
			return i + 1
		}
	}
	return 1
}

// pickHeader takes the header line and names empty cells Column N.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// gridTable resolves the header line and converts the cell grid into a
// table, keeping the source column order.
func gridTable(rows [][]string, headerRow int) table {
	if len(rows) == 0 {
		return table{}
	}
	headerRow = resolveHeaderRow(rows, headerRow)
	headers := pickHeader(rows, headerRow)
	return table{headers: headers, records: rowsToMaps(rows, headers, headerRow)}
}

// rowsToMaps converts the cell grid into records keyed by header,
// skipping fully empty lines.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := map[string]string{}
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			m[headers[c]] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}
