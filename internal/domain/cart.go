package domain

import "time"

type CartLine struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// CartViewItem is a cart line resolved against the current catalog.
type CartViewItem struct {
	Product  Product
	Quantity int
	Subtotal float64
}

type CartView struct {
	Items []CartViewItem
	Total float64
	// Lines is the number of stored lines, including ones whose product no longer resolves.
	Lines   int
	Version int64
}

func (v CartView) IsEmpty() bool {
	return v.Lines == 0
}
