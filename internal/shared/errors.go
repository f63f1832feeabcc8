package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Item source errors
	ErrSourceUnavailable = fmt.Errorf("item source unavailable")
	ErrPageFailed        = fmt.Errorf("page request failed")
	ErrAPIRequest        = fmt.Errorf("API request failed")

	// Persistence errors
	ErrAnchorNotFound = fmt.Errorf("scroll anchor not found")
	ErrItemNotFound   = fmt.Errorf("media item not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
