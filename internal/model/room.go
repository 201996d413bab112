package model

// Room is a bookable physical room. Reference data owned by configuration,
// read-only to the rest of the service.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RepeatOption is a selectable repeat policy for a booking. The service
// stores the chosen id as an opaque field and never expands occurrences.
type RepeatOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity is the authenticated caller as supplied by the auth layer.
type Identity struct {
	UserID      string
	AccessToken string
}

// IsComplete reports whether the identity can authorize persistence calls.
func (i Identity) IsComplete() bool {
	return i.UserID != "" && i.AccessToken != ""
}
