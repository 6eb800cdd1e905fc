package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrInvalidLimit = errors.New("invalid archive query limit")
)
