package domain

import (
	"encoding/json"
	"fmt"
)

// Cart is an ordered list of items, unique by product id.
// Methods never modify the receiver's backing array; they return a new Cart.
type Cart struct {
	Items []CartItem
}

type CartItem struct {
	Product
	Amount int
}

func NewCartItem(product Product) CartItem {
	return CartItem{Product: product.clone(), Amount: 1}
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	fields, err := i.Product.fields()
	if err != nil {
		return nil, err
	}

	amount, err := json.Marshal(i.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	fields["amount"] = amount

	return json.Marshal(fields)
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var out CartItem
	if raw, ok := fields["amount"]; ok {
		if err := json.Unmarshal(raw, &out.Amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		delete(fields, "amount")
	}
	if err := out.Product.fromFields(fields); err != nil {
		return err
	}

	*i = out
	return nil
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Items = items
	return nil
}

func (c Cart) Len() int {
	return len(c.Items)
}

// Find returns the item for productID and its position, or -1 when absent.
func (c Cart) Find(productID int64) (CartItem, int) {
	for i, item := range c.Items {
		if item.ID == productID {
			return item, i
		}
	}
	return CartItem{}, -1
}

func (c Cart) Amount(productID int64) int {
	item, _ := c.Find(productID)
	return item.Amount
}

func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItem{Product: item.Product.clone(), Amount: item.Amount}
	}
	return Cart{Items: items}
}

func (c Cart) Append(item CartItem) Cart {
	next := c.Clone()
	next.Items = append(next.Items, item)
	return next
}

// SetAmount returns a copy with the amount of productID replaced.
// The boolean is false when productID is not in the cart.
func (c Cart) SetAmount(productID int64, amount int) (Cart, bool) {
	_, idx := c.Find(productID)
	if idx < 0 {
		return c, false
	}
	next := c.Clone()
	next.Items[idx].Amount = amount
	return next, true
}

// Remove returns a copy without productID, keeping the order of the rest.
func (c Cart) Remove(productID int64) (Cart, bool) {
	_, idx := c.Find(productID)
	if idx < 0 {
		return c, false
	}
	next := c.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return next, true
}

func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.Amount < 1 {
			return fmt.Errorf("%w: product %d has amount %d", ErrMalformed, item.ID, item.Amount)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: product %d is listed twice", ErrMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
