package domain

import "errors"

// ErrUnrecognizedMathKind is returned when a document carries a math kind
// outside the known set. It is the one transcoder failure that propagates.
var ErrUnrecognizedMathKind = errors.New("unrecognized math kind")

// ErrMalformedToken is returned when an interchange token does not have the
// shape its type requires.
var ErrMalformedToken = errors.New("malformed token")

// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrQueueClosed is returned when work is submitted after the queue was closed.
var ErrQueueClosed = errors.New("typeset queue closed")

// ErrDetached is reported when a surface never became attached within the retry budget.
var ErrDetached = errors.New("surface not attached")

// ErrTypesetTimeout is reported when a typeset slot exceeded the watchdog timeout.
var ErrTypesetTimeout = errors.New("typeset timed out")

// ErrNoMath is returned by typesetters handed text without math delimiters.
var ErrNoMath = errors.New("no math delimiters")
