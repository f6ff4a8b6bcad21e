package commands

import (
	"context"

	"github.com/doeshing/reelai/internal/app"
)

// ContainerFunc returns the process container, building it on first use.
type ContainerFunc func(ctx context.Context) (*app.Container, error)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrCacheStoreUnavailable    = "cache store unavailable"
	ErrConfigLoaderUnavailable  = "config loader unavailable"
)

// Messages
const (
	MsgNoResults     = "No recommendations."
	MsgCacheMiss     = "No cached entry for that key."
	MsgCacheDeleted  = "Cache entry deleted."
	MsgConfigWritten = "Default configuration written to %s\n"
)
