package core

// Client is one connection as seen by the hub. The transport layer owns the
// ID and drains Events; the hub owns everything else.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client handle with a buffered event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 16),
	}
}
