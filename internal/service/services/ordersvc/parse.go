package ordersvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/pkg/validation"
	"github.com/shopspring/decimal"
)

const (
	maxAddressLength = 255
	// maxNumberLength and the exponent range keep decimal arithmetic on
	// line items small no matter how the client writes a number.
	maxNumberLength = 32
	minExponent     = -18
	maxExponent     = 18
)

// maxUnitPrice is the largest price a product row can hold.
var maxUnitPrice = decimal.RequireFromString("99999999.99")

// ParsedOrder is a validated order payload.
type ParsedOrder struct {
	Address string
	Items   []lineitem.LineItem
	Total   decimal.Decimal
}

type rawLineItem struct {
	ID       json.RawMessage `json:"id"`
	Name     json.RawMessage `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
}

// ParseOrder validates a raw payload and computes the order total.
// It does not touch storage.
func ParseOrder(p order.Payload) (ParsedOrder, error) {
	address := strings.TrimSpace(p.Address)
	if address == "" {
		return ParsedOrder{}, fmt.Errorf("%w: address is required", ErrInvalidAddress)
	}
	if utf8.RuneCountInString(address) > maxAddressLength {
		return ParsedOrder{}, fmt.Errorf("%w: address exceeds %d characters", ErrInvalidAddress, maxAddressLength)
	}

	elems, err := decodeList(p.Products)
	if err != nil {
		return ParsedOrder{}, err
	}

	items := make([]lineitem.LineItem, 0, len(elems))
	for i, elem := range elems {
		item, err := parseLineItem(i, elem)
		if err != nil {
			return ParsedOrder{}, err
		}
		items = append(items, item)
	}

	return ParsedOrder{
		Address: address,
		Items:   items,
		Total:   lineitem.Total(items),
	}, nil
}

// decodeList accepts a JSON array or a JSON string that contains one.
func decodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		raw = bytes.TrimSpace([]byte(s))
	}

	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: products must be a list", ErrMalformedPayload)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: products must not be empty", ErrMalformedPayload)
	}

	return elems, nil
}

func parseLineItem(i int, elem json.RawMessage) (lineitem.LineItem, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || elem[0] != '{' {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "item", Reason: "must be an object"}
	}

	var raw rawLineItem
	if err := json.Unmarshal(elem, &raw); err != nil {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "item", Reason: "must be an object"}
	}

	id, ok := positiveInteger(raw.ID)
	if !ok {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "id", Reason: "must be a positive integer"}
	}

	var name string
	if err := json.Unmarshal(raw.Name, &name); err != nil || !validation.IsLabel(name) {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "name", Reason: "contains invalid characters or is empty"}
	}

	price, ok := number(raw.Price)
	if !ok || !price.IsPositive() || price.GreaterThan(maxUnitPrice) {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "price", Reason: "must be a positive number"}
	}

	quantity, ok := positiveInteger(raw.Quantity)
	if !ok || quantity > math.MaxInt32 {
		return lineitem.LineItem{}, &LineItemError{Index: i, Field: "quantity", Reason: "must be a positive integer"}
	}

	return lineitem.LineItem{
		ProductID: id,
		Name:      name,
		UnitPrice: price,
		Quantity:  int(quantity),
	}, nil
}

// number reads a JSON number or a JSON string holding a number. Numbers
// longer than maxNumberLength or with an exponent outside
// [minExponent, maxExponent] are rejected before any arithmetic.
func number(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	// two extra bytes for the quotes of a stringified number
	if len(raw) == 0 || len(raw) > maxNumberLength+2 {
		return decimal.Zero, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, false
		}
		text = strings.TrimSpace(text)
	} else if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return decimal.Zero, false
	}

	if len(text) > maxNumberLength {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return decimal.Zero, false
	}

	return d, true
}

func positiveInteger(raw json.RawMessage) (int64, bool) {
	d, ok := number(raw)
	if !ok || !d.IsInteger() || !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, false
	}

	return d.IntPart(), true
}
