package data

// Item is a sample record served by the data route.
type Item struct {
	ID   int    `json:"id" doc:"Item identifier" example:"1"`
	Name string `json:"name" doc:"Display name" example:"Item 1"`
}

// ListOutput is the response wrapper for GET /api/data.
type ListOutput struct {
	Body []Item
}
