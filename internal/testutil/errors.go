package testutil

import "errors"

// ErrSimulated stands in for a storage failure in fakes.
var ErrSimulated = errors.New("simulated storage failure")
