package domain

// Item is a single purchasable catalog entry. IDs are opaque strings so the
// same type works for the seeded in-memory catalog and for Mongo ObjectIDs.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// LineItem is a cart entry joined with its catalog record at resolve time.
// Quantity-in-cart is always 1 in this model; Unavailable marks items whose
// stock has run out between add and checkout.
type LineItem struct {
	Item
	Unavailable bool `json:"unavailable,omitempty"`
}

// Customer is the fixed profile attached to every order.
type Customer struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2"`
	Address3   string `json:"address_3,omitempty"`
	PostalCode string `json:"postal_code"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
}
