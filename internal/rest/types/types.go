package types

// IsFriendResponse is returned by the friendship check endpoint.
type IsFriendResponse struct {
	SteamID  string `json:"steamID"`
	TargetID string `json:"targetID"`
	IsFriend bool   `json:"isFriend"`
}

// OnlineFriendsResponse lists the connected friends of a user.
type OnlineFriendsResponse struct {
	SteamID string   `json:"steamID"`
	Friends []string `json:"friends"`
}

// RecordResponse is the resident friend record of a user.
type RecordResponse struct {
	OwnerID     string   `json:"ownerID"`
	LastUpdated int64    `json:"lastUpdated"`
	Friends     []string `json:"friends"`
}

// SessionResponse acknowledges a connect or disconnect event.
type SessionResponse struct {
	SteamID string `json:"steamID"`
	Online  bool   `json:"online"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
