package matcherrors

import "errors"

// Tournament sentinel errors. Shared by the tournament, api and ws packages
// so callers can map them with errors.Is.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrSelfMatch      = errors.New("a player cannot play against themselves")
	ErrInvalidName    = errors.New("invalid player name")
	ErrOddPlayerCount = errors.New("odd number of players")
	ErrUnauthorized   = errors.New("authorization required")
	ErrForbidden      = errors.New("not allowed")
)
