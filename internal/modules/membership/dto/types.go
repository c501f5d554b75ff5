package dto

type ToggleOutput struct {
	ItemID  string
	Saved   bool
	Ignored bool
}

type ListOutput struct {
	ItemIDs []string
}

// Wire bodies shared by the HTTP gateway and the local server.
type ListReply struct {
	ItemIDs []string `json:"item_ids"`
}

type AddRequest struct {
	ItemID string `json:"item_id"`
}

type AcceptReply struct {
	Accepted bool `json:"accepted"`
}

const SavedPath = "/v1/saved"
