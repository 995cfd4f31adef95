package repository

import (
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/sirupsen/logrus"
)

// DefaultSlot is the key the storefront has always stored its cart under.
const DefaultSlot = "@RocketShoes:cart"

func encodeCart(cart domain.Cart) ([]byte, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// decodeCart favours availability: anything that is not a valid cart
// degrades to an empty one and is only reported in the log.
func decodeCart(log logrus.FieldLogger, slot string, data []byte) domain.Cart {
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		log.WithError(err).WithField("slot", slot).Warn("stored cart is not valid JSON, starting with an empty cart")
		return domain.Cart{}
	}

	if err := cart.Validate(); err != nil {
		log.WithError(err).WithField("slot", slot).Warn("stored cart is malformed, starting with an empty cart")
		return domain.Cart{}
	}

	return cart
}
