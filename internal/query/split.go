package query

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Bersy123e/offerdoffer/internal/assist"
)

var (
	// "5 шт", "10 штук", "2 компл." — RE2's \b is ASCII-only, so the
	// terminator set is spelled out instead.
	reQuantity = regexp.MustCompile(`(?i)(\d+)\s*(штуки|штук|шт|компл)[\p{L}.]*`)

	// одиночное число в конце строки — скорее всего количество
	reTrailingNumber = regexp.MustCompile(`\s+\d+\s*$`)
)

// ExtractQuantity pulls an explicit "N шт"-style quantity out of the text
// and returns the text with the quantity phrase removed. Without an
// explicit marker the quantity stays unknown.
func ExtractQuantity(text string) (*int, string) {
	m := reQuantity.FindStringSubmatch(text)
	if m == nil {
		return nil, text
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, text
	}
	cleaned := strings.Join(strings.Fields(reQuantity.ReplaceAllString(text, " ")), " ")
	return &n, cleaned
}

// Split breaks a full client message into individual product positions.
// The assist does the heavy lifting; on failure we fall back to separator
// and line splitting with regex quantity extraction.
func (i *Interpreter) Split(ctx context.Context, fullQuery string) []assist.Item {
	if i.provider != nil {
		ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
		defer cancel()

		items, err := assist.Split(ctx, i.provider, fullQuery)
		if err == nil && len(items) > 0 {
			return items
		}
		if err != nil {
			i.log.Warn().Err(err).Msg("assist split failed, falling back to line splitting")
		}
	}
	return splitLines(fullQuery)
}

// splitLines is the rule-based fallback: "---" separators first, then
// newlines, otherwise the whole text is one position.
func splitLines(fullQuery string) []assist.Item {
	var lines []string
	switch {
	case strings.Contains(fullQuery, "---"):
		lines = strings.Split(fullQuery, "---")
	case strings.Contains(fullQuery, "\n"):
		lines = strings.Split(fullQuery, "\n")
	default:
		lines = []string{fullQuery}
	}

	var items []assist.Item
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quantity, cleaned := ExtractQuantity(line)
		if quantity == nil && len(lines) > 1 {
			// в многострочных заявках одиночное число в конце строки —
			// количество; в одиночном запросе это может быть размер
			if m := reTrailingNumber.FindString(cleaned); m != "" {
				if n, err := strconv.Atoi(strings.TrimSpace(m)); err == nil && n > 0 {
					quantity = &n
					cleaned = strings.TrimSpace(reTrailingNumber.ReplaceAllString(cleaned, ""))
				}
			}
		}
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}
		items = append(items, assist.Item{ItemQuery: cleaned, Quantity: quantity})
	}
	return items
}
