//go:build !lz4safe

package lz4

// safeAccess selects the checked buffer access strategy for the decoder's
// copy loops. The default build uses the fast wide-word strategy; build
// with -tags lz4safe to validate every copy individually.
const safeAccess = false
