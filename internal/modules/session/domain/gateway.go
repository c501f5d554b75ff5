package domain

// LoadParams configures which items a load requests from the gateway.
type LoadParams struct {
	// ModeFilter selects the item subset: new, review or mixed for study.
	ModeFilter      string `json:"mode_filter,omitempty"`
	NewItemLimit    int    `json:"new_item_limit,omitempty"`
	ReviewItemLimit int    `json:"review_item_limit,omitempty"`
	// Limit caps the total item count (assessment).
	Limit int `json:"limit,omitempty"`
}

// Entry is an item as delivered by the gateway, before any response.
type Entry[T any] struct {
	ID        string `json:"id"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Payload   T      `json:"payload"`
}

type LoadResult[T any] struct {
	SessionID string
	Entries   []Entry[T]
	Metadata  map[string]int
}

type SubmitResult struct {
	Accepted  bool
	Aggregate map[string]float64
}
