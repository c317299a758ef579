package cache

import "errors"

// ErrCacheMiss is returned by helpers that require a present entry.
var ErrCacheMiss = errors.New("cache miss")
