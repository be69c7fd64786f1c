package page

// Page limits a list query. Zero Limit means no limit.
type Page struct {
	Limit  uint64 `json:"limit,omitempty"`
	Offset uint64 `json:"offset,omitempty"`
}
