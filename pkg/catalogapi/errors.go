package catalogapi

import (
	"errors"
	"fmt"
)

// Kind classifies why a catalog request failed.
type Kind int

const (
	KindNetwork Kind = iota + 1 // transport failure, no response
	KindStatus                  // response with a non-2xx status
	KindDecode                  // 2xx response whose body is not the expected JSON
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrRequestFailed matches every RequestError regardless of kind.
var ErrRequestFailed = errors.New("request failed")

// Per-kind sentinels; each also matches ErrRequestFailed.
var (
	ErrNetwork = fmt.Errorf("%w: network", ErrRequestFailed)
	ErrStatus  = fmt.Errorf("%w: status", ErrRequestFailed)
	ErrDecode  = fmt.Errorf("%w: decode", ErrRequestFailed)
)

// RequestError describes a failed GET against the catalog API.
type RequestError struct {
	Kind       Kind
	Endpoint   string // logical endpoint name, e.g. "models"
	URL        string
	StatusCode int    // set for KindStatus
	Body       string // truncated response body, set for KindStatus
	Err        error  // underlying transport or decode error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("catalogapi: GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("catalogapi: GET %s: status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("catalogapi: GET %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *RequestError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *RequestError) sentinel() error {
	switch e.Kind {
	case KindNetwork:
		return ErrNetwork
	case KindStatus:
		return ErrStatus
	case KindDecode:
		return ErrDecode
	default:
		return ErrRequestFailed
	}
}

// StatusCode reports the HTTP status carried by err, or 0 when err is not a
// status failure.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) && re.Kind == KindStatus {
		return re.StatusCode
	}
	return 0
}
