package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Planning.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrUnreachable   = "E_UNREACHABLE"
	ErrSearchLimit   = "E_SEARCH_LIMIT"
	ErrMalformedPath = "E_MALFORMED_PATH"

	// Following.
	ErrUnsupported = "E_UNSUPPORTED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrUnreachable:     {},
	ErrSearchLimit:     {},
	ErrMalformedPath:   {},
	ErrUnsupported:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
