package models

// CartLine is one dessert's accumulated quantity in the shopper's cart. Name,
// price and image are snapshotted when the dessert is first added.
type CartLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	ImageURL string `json:"image_url"`
	Quantity int    `json:"quantity"`
}

func (l CartLine) Subtotal() int {
	return l.Price * l.Quantity
}
