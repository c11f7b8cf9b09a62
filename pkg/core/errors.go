package core

import "errors"

// Kind enumerates the error taxonomy of spec.md §7. Every kind defined
// here is recovered locally (dropped, retried, downgraded); the taxonomy
// has no escalating kind.
type Kind string

const (
	KindDecodeNotThisKind    Kind = "decode_not_this_kind"
	KindDecodeMalformed      Kind = "decode_malformed"
	KindCommitStale          Kind = "commit_stale"
	KindCommitOutOfTopology  Kind = "commit_out_of_topology"
	KindCommitRpcForbidden   Kind = "commit_rpc_forbidden"
	KindAltMiss              Kind = "alt_miss"
	KindRpcFetchTimeout      Kind = "rpc_fetch_timeout"
	KindStreamStall          Kind = "stream_stall"
	KindBoundaryRefreshFail  Kind = "boundary_refresh_failed"
	KindBundleBuildFailed    Kind = "bundle_build_failed"
)

// Error attaches a Kind to an underlying cause so callers can switch on
// policy (drop, retry, escalate) without string matching.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

var (
	// ErrNotThisKind signals a decoder's discriminator/size check failed.
	ErrNotThisKind = errors.New("decode: not this kind")
	// ErrMalformed signals a matching discriminator but an invalid payload.
	ErrMalformed = errors.New("decode: malformed payload")
)
