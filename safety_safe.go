//go:build lz4safe

package lz4

// safeAccess selects the checked buffer access strategy for the decoder's
// copy loops.
const safeAccess = true
