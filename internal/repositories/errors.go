package repositories

import "errors"

// Sentinel errors shared by all repository implementations so handlers
// can map lookup failures to 404s with errors.Is.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)
