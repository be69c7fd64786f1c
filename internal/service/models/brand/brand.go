package brand

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
