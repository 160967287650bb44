package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// wireItem is the persisted shape. Prices are written as JSON numbers so the
// snapshot stays readable by the mobile app.
type wireItem struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	ImageURL string      `json:"image_url"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// Encode serializes items as a JSON array. A nil slice encodes as "[]".
func Encode(items []Item) (string, error) {
	out := make([]wireItem, len(items))
	for i, it := range items {
		out[i] = wireItem{
			ID:       it.ID,
			Title:    it.Title,
			ImageURL: it.ImageURL,
			Price:    json.Number(it.Price.String()),
			Quantity: it.Quantity,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding cart: %w", err)
	}
	return string(b), nil
}

// Decode parses a persisted snapshot. An empty or "null" value decodes to an
// empty cart. Anything else that is not a valid cart yields ErrCorruptSnapshot.
func Decode(raw string) ([]Item, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []Item{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var wire []wireItem
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after cart", ErrCorruptSnapshot)
	}

	items := make([]Item, 0, len(wire))
	seen := make(map[string]struct{}, len(wire))
	for _, w := range wire {
		if w.ID == "" {
			return nil, fmt.Errorf("%w: item without id", ErrCorruptSnapshot)
		}
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrCorruptSnapshot, w.ID)
		}
		if w.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrCorruptSnapshot, w.ID, w.Quantity)
		}
		price := decimal.Zero
		if w.Price != "" {
			p, err := decimal.NewFromString(w.Price.String())
			if err != nil {
				return nil, fmt.Errorf("%w: item %q price: %v", ErrCorruptSnapshot, w.ID, err)
			}
			price = p
		}
		seen[w.ID] = struct{}{}
		items = append(items, Item{
			ID:       w.ID,
			Title:    w.Title,
			ImageURL: w.ImageURL,
			Price:    price,
			Quantity: w.Quantity,
		})
	}
	return items, nil
}
