package capability

import "errors"

var (
	ErrUnsupportedPair       = errors.New("unsupported language pair")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrCapabilityUnsupported = errors.New("capability not supported")
	ErrEmptyModelReply       = errors.New("empty model reply")
)
