package chart

import "errors"

// ErrRenderPrecondition marks a skipped render pass: a scale produced
// non-finite geometry, typically before the band height is established
var ErrRenderPrecondition = errors.New("render precondition failed")
