package domain

// CartLine is one entry of the in-memory cart, keyed by a caller-supplied id.
type CartLine struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
