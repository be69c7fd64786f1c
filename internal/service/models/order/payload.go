package order

import "encoding/json"

// Payload is an order creation request as received from the client.
// Products is either a JSON array of line items or a string holding one.
type Payload struct {
	Address  string          `json:"address"`
	Products json.RawMessage `json:"products" swaggertype:"array,object"`
}
