package feed

// FilterRequest narrows a feed connection to the named characters
// an empty list receives every event
type FilterRequest struct {
	Characters []string `json:"characters"`
}
