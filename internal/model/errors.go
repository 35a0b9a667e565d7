package model

import "errors"

// ErrLoad marks startup-time model initialization failures. They are fatal:
// the process exits rather than serving without a model.
var ErrLoad = errors.New("model load failed")

// ErrInference marks per-request prediction failures. They are recovered at
// the request boundary and never terminate the worker.
var ErrInference = errors.New("inference failed")
