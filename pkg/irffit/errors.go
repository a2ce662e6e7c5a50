package irffit

import "errors"

// errNeedsPop4 is returned by DifferentialEvolution when the population is
// too small to draw three distinct mutation indices distinct from the
// target (DE/rand/1 needs at least 4 individuals).
var errNeedsPop4 = errors.New("irffit: DE population must be >= 4")

// ErrBusy is returned by Host.Submit when a request is already running.
var ErrBusy = errors.New("irffit: a fit is already running on this host")

// ErrCancelled is the error delivered to a caller whose in-flight fit was
// cancelled (SPEC_FULL.md §4.7/§7: "pending promise rejected with
// 'Operation cancelled'").
var ErrCancelled = errors.New("Operation cancelled")

// ErrUnknownMessageType is the terminal error for an unrecognized worker
// request discriminator (SPEC_FULL.md §4.7/§6).
var ErrUnknownMessageType = errors.New("Unknown message type")
