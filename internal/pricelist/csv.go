package pricelist

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads CSV auto-detecting the encoding. Price lists exported
// from 1С are commonly windows-1251.
func readCSV(r io.Reader, headerRow int) (table, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.Comma = detectDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table{}, err
		}
		rows = append(rows, rec)
	}
	return gridTable(rows, headerRow), nil
}

// detectDelimiter: русские CSV часто разделены точкой с запятой.
func detectDelimiter(peek []byte) rune {
	semis, commas := 0, 0
	for _, b := range peek {
		switch b {
		case ';':
			semis++
		case ',':
			commas++
		case '\n':
			if semis > commas {
				return ';'
			}
			return ','
		}
	}
	if semis > commas {
		return ';'
	}
	return ','
}
