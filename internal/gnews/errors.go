package gnews

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of the resolution protocol.
var (
	ErrMalformedURL   = errors.New("malformed article link")
	ErrInvalidLink    = errors.New("link is not a google news article")
	ErrParamsNotFound = errors.New("signed parameters not found")
	ErrResolve        = errors.New("batchexecute resolution failed")
)

// Stage names the protocol step where a decode attempt failed.
type Stage string

const (
	StageToken   Stage = "token"
	StageParams  Stage = "params"
	StageResolve Stage = "resolve"
)

// DecodeError tags a failure with the protocol stage that produced it.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode stage %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FailureStage reports the protocol stage of a decode error, or an empty
// string when the error did not come out of the decode pipeline.
func FailureStage(err error) Stage {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Stage
	}
	return ""
}
