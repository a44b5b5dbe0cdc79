package intent

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Stage names the step of a submission that failed.
type Stage string

const (
	StageBuild   Stage = "build"
	StageSponsor Stage = "sponsor"
	StageSubmit  Stage = "submit"
	StageSettle  Stage = "settle"
)

// Sentinels matched by errors.Is against a *StageError.
var (
	ErrBuild       = errors.New("building operation failed")
	ErrSponsorship = errors.New("sponsorship failed")
	ErrSubmission  = errors.New("submission failed")
	ErrSettlement  = errors.New("settlement failed")
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrEmptyIntent   = errors.New("intent has no calls")
	ErrReverted      = errors.New("operation reverted")
)

var stageSentinels = map[Stage]error{
	StageBuild:   ErrBuild,
	StageSponsor: ErrSponsorship,
	StageSubmit:  ErrSubmission,
	StageSettle:  ErrSettlement,
}

// EncodingError reports form input that cannot be turned into calldata.
// No state has changed when it is returned.
type EncodingError struct {
	Kind  ActionKind
	Field string
	Value string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %s %q: %v", e.Kind, e.Field, e.Value, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// StageError is the terminal error of a submission. OpHash is set once the
// bundler accepted the operation, so settlement failures can be looked up.
type StageError struct {
	Stage  Stage
	OpHash common.Hash
	Err    error
}

func (e *StageError) Error() string {
	if e.OpHash != (common.Hash{}) {
		return fmt.Sprintf("%s (user operation %s): %v", e.Stage, e.OpHash.Hex(), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's stage.
func (e *StageError) Is(target error) bool {
	return stageSentinels[e.Stage] == target
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
