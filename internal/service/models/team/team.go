package team

// Team is a club whose jerseys are sold. Color is a #RRGGBB hex string.
type Team struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
