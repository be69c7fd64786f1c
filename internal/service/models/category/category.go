package category

// Category groups products, e.g. "Maillots" or "Shorts".
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
