package domain

import "time"

// OrderLine snapshots one cart line at confirmation time. Lines whose product
// no longer resolved keep their id and quantity with a zero price.
type OrderLine struct {
	ProductID   string  `bson:"product_id" json:"product_id"`
	ProductName string  `bson:"product_name" json:"product_name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
}

type Order struct {
	ID            string      `bson:"_id" json:"order_id"`
	UserID        string      `bson:"user_id" json:"user_id"`
	RecipientName string      `bson:"recipient_name" json:"recipient_name"`
	Address       string      `bson:"address" json:"address"`
	PaymentMethod string      `bson:"payment_method" json:"payment_method"`
	Lines         []OrderLine `bson:"lines" json:"lines"`
	Total         float64     `bson:"total" json:"total"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
}

type ShippingDetails struct {
	RecipientName string
	Address       string
	PaymentMethod string
}
