package noop

import (
	"context"
	"time"
)

// Cache always misses. Selecting it at startup disables caching without any
// branch in core logic; simulation outcomes are identical either way.
type Cache struct{}

func New() Cache { return Cache{} }

func (Cache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Cache) Set(context.Context, string, string, time.Duration) error { return nil }
