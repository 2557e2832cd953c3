package hooks

import (
	"github.com/glorpus-work/plugpub/pkg/errors"
)

// Hook errors, shared with the rest of the module through pkg/errors.
var (
	ErrHookTypeEmpty = errors.ErrHookTypeEmpty
	ErrHookExecution = errors.ErrHookExecution
	ErrHookScript    = errors.ErrHookScript
	ErrHookLoad      = errors.ErrHookLoad
)
