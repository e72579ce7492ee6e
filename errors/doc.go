/*
Package errors provides semantic error types for the entity registry.

Each kind is a typed error matching a sentinel, so callers can use the
standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound            = errors.New("entity not found")
	    ErrAlreadyExists       = errors.New("entity already exists")
	    ErrInvalidInput        = errors.New("invalid input")
	    ErrConditionFailed     = errors.New("condition check failed")
	    ErrCounterOverflow     = errors.New("counter overflow")
	    ErrDuplicateIdentifier = errors.New("duplicate identifier")
	    ErrUnauthenticated     = errors.New("authentication failed")
	    ErrUnknownBackend      = errors.New("unknown backend")
	)

Usage:

	id, err := reg.Create(ctx, caller, seed)
	if err != nil {
	    switch {
	    case errors.IsCounterOverflow(err):
	        // count or nonce has no headroom; nothing was written
	    case errors.IsDuplicateIdentifier(err):
	        // derived id already registered; nothing was written
	    case errors.IsConditionFailed(err):
	        // another writer committed first; safe to retry
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("Entities", id.String())
	err := errors.NewCounterOverflowError("nonce", math.MaxUint64)
*/
package errors
