package persistence

import "time"

// Item is one key/value entry of a client's local storage.
type Item struct {
	ClientID  string
	Key       string
	Value     string
	UpdatedAt time.Time
}
