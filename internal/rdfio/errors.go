package rdfio

import "errors"

// ErrOverflow is the distinguished "container limit reached" error spec's
// §4.4 requires: the adaptive search in internal/packer maps it to a
// recoverable overflow classification. Any other error returned by this
// package is fatal and must propagate unchanged.
var ErrOverflow = errors.New("rdfio: container limit reached")

// errIndexOverflow is wrapped together with ErrOverflow when the term
// dictionary itself runs out of index space, so callers that only check
// errors.Is(err, ErrOverflow) still see it as a recoverable overflow while
// a more specific check remains possible.
var errIndexOverflow = errors.New("rdfio: term dictionary index overflow")

// ErrTruncated is returned by Decode when the container is shorter than
// its header or trailer require.
var ErrTruncated = errors.New("rdfio: truncated container")

// ErrChecksumMismatch is returned by Decode when the trailing CRC32 does
// not match the recomputed checksum of the container body.
var ErrChecksumMismatch = errors.New("rdfio: checksum mismatch")
