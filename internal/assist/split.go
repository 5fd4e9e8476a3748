package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Item is one product position split out of a multi-position client request.
type Item struct {
	ItemQuery string `json:"item_query"`
	Quantity  *int   `json:"quantity"`
}

// Split asks the provider to break a full client message into individual
// product positions with quantities.
func Split(ctx context.Context, p Provider, fullQuery string) ([]Item, error) {
	comp, err := p.Complete(ctx, buildSplitPrompt(fullQuery))
	if err != nil {
		return nil, fmt.Errorf("assist split: %w", err)
	}
	raw, err := extractArray(comp.Text)
	if err != nil {
		return nil, fmt.Errorf("assist split: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("assist split: malformed JSON array: %w", err)
	}
	valid := items[:0]
	for _, it := range items {
		if strings.TrimSpace(it.ItemQuery) != "" {
			valid = append(valid, it)
		}
	}
	return valid, nil
}

func buildSplitPrompt(query string) string {
	var b strings.Builder
	b.WriteString("ЗАДАЧА: Разделить общий запрос клиента на отдельные товарные позиции.\n")
	b.WriteString("ПРАВИЛА:\n")
	b.WriteString("1. Для КАЖДОЙ позиции извлечь описание товара (item_query) и запрошенное количество (quantity).\n")
	b.WriteString("2. Игнорировать общие фразы, приветствия, предлоги.\n")
	b.WriteString("3. Если количество не указано явно, использовать null.\n")
	b.WriteString("4. Формат ответа — ТОЛЬКО валидный JSON-массив объектов с ключами \"item_query\" и \"quantity\".\n\n")
	b.WriteString("ПРИМЕРЫ:\n")
	b.WriteString(`Запрос: "Добрый день! Нужен редуктор тип В 5 штук и еще задвижка ДУ500 10 шт"` + "\n")
	b.WriteString(`Ответ: [{"item_query": "редуктор тип В", "quantity": 5}, {"item_query": "задвижка ДУ500", "quantity": 10}]` + "\n")
	b.WriteString(`Запрос: "фланец плоский ст.20"` + "\n")
	b.WriteString(`Ответ: [{"item_query": "фланец плоский ст.20", "quantity": null}]` + "\n\n")
	fmt.Fprintf(&b, "Запрос: %s\nОтвет:", query)
	return b.String()
}
