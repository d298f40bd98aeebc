package client

// ClientSet bundles the API clients behind one entry point.
type ClientSet struct {
	Sessions Session
	Projects Project
}

// New creates a ClientSet for the API at baseURL. userID is the default
// user scope for project listings; it may be empty.
func New(baseURL string, userID string) *ClientSet {
	base := NewBaseClient(baseURL, userID)
	return &ClientSet{
		Sessions: NewSessionClient(base),
		Projects: NewProjectClient(base),
	}
}
