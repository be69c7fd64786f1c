package order

import (
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/shopspring/decimal"
)

// Order represents a placed delivery order.
type Order struct {
	ID         int64               `json:"id"`
	UserID     int64               `json:"user"`
	Address    string              `json:"address"`
	Products   []lineitem.LineItem `json:"products"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Status     Status              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}
