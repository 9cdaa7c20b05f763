package crawler

import "errors"

// ErrSeedIdentity is returned when the start page's canonical id cannot
// be resolved after exhausting the wait budget. Without it there is no
// root to hang the space on, so this is the one render failure that
// aborts the whole run.
var ErrSeedIdentity = errors.New("could not resolve canonical id of the start page")
