package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog record as returned by the inventory service.
type Product struct {
	ID    int64
	Title string
	Price decimal.Decimal
	Image string

	// Extra keeps catalog fields the cart does not interpret, verbatim.
	Extra map[string]json.RawMessage
}

type Stock struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

type AmountUpdate struct {
	ProductID int64 `json:"productId"`
	Amount    int   `json:"amount"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	fields, err := p.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	return p.fromFields(fields)
}

func (p Product) clone() Product {
	if p.Extra != nil {
		extra := make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}

func (p Product) fields() (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(p.Extra)+4)
	for k, v := range p.Extra {
		fields[k] = v
	}

	id, err := json.Marshal(p.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	title, err := json.Marshal(p.Title)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	image, err := json.Marshal(p.Image)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	fields["id"] = id
	fields["title"] = title
	fields["image"] = image
	// price stays a JSON number so the catalog representation passes through
	fields["price"] = json.RawMessage(p.Price.String())

	return fields, nil
}

func (p *Product) fromFields(fields map[string]json.RawMessage) error {
	var out Product

	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &out.ID); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	}
	if raw, ok := fields["title"]; ok {
		if err := json.Unmarshal(raw, &out.Title); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if raw, ok := fields["image"]; ok {
		if err := json.Unmarshal(raw, &out.Image); err != nil {
			return fmt.Errorf("image: %w", err)
		}
	}
	if raw, ok := fields["price"]; ok {
		if err := out.Price.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("price: %w", err)
		}
	}

	for k, v := range fields {
		switch k {
		case "id", "title", "image", "price":
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}

	*p = out
	return nil
}
