package services

import "errors"

// ErrNoData means the cache holds no usable shift records yet. Commands
// render it as a prompt to run fetch, never as a silent empty result.
var ErrNoData = errors.New("no cached shift data, run fetch first")
