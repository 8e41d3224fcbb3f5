package domain

import "strings"

// Query identifies the location whose reviews are requested.
// At least one of LocationID or Name must be set.
type Query struct {
	LocationID string
	Name       string
	Address    string
}

func (q Query) Normalized() Query {
	return Query{
		LocationID: strings.TrimSpace(q.LocationID),
		Name:       strings.TrimSpace(q.Name),
		Address:    strings.TrimSpace(q.Address),
	}
}

func (q Query) Validate() error {
	n := q.Normalized()
	if n.LocationID == "" && n.Name == "" {
		return NewError(ErrInput, "Provide at least locationId or name (plus optional address)", "")
	}
	return nil
}

// SearchText is the free-text query used when no location id is known.
func (q Query) SearchText() string {
	n := q.Normalized()
	if n.Address == "" {
		return n.Name
	}
	return n.Name + ", " + n.Address
}
