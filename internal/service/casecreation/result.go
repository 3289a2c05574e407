package casecreation

import "fmt"

// ResultType classifies the outcome of an auto case creation attempt.
type ResultType int

const (
	// CaseCreated means a new case was created for the envelope.
	CaseCreated ResultType = iota
	// CaseAlreadyExists means a case referencing the envelope already existed.
	CaseAlreadyExists
	// AbortedWithoutFailure means auto creation is switched off for the
	// service and no work was attempted.
	AbortedWithoutFailure
	// UnrecoverableFailure means the attempt failed in a way retries cannot
	// fix, such as a validation rejection.
	UnrecoverableFailure
	// PotentiallyRecoverableFailure means the attempt failed transiently and
	// may succeed on a later delivery.
	PotentiallyRecoverableFailure
)

func (t ResultType) String() string {
	switch t {
	case CaseCreated:
		return "CASE_CREATED"
	case CaseAlreadyExists:
		return "CASE_ALREADY_EXISTS"
	case AbortedWithoutFailure:
		return "ABORTED_WITHOUT_FAILURE"
	case UnrecoverableFailure:
		return "UNRECOVERABLE_FAILURE"
	case PotentiallyRecoverableFailure:
		return "POTENTIALLY_RECOVERABLE_FAILURE"
	default:
		return fmt.Sprintf("ResultType(%d)", int(t))
	}
}

// Result is the outcome of an auto case creation attempt. CaseRef is set only
// for CaseCreated and CaseAlreadyExists.
type Result struct {
	Type    ResultType
	CaseRef int64
	Err     error
}

func created(caseRef int64) Result {
	return Result{Type: CaseCreated, CaseRef: caseRef}
}

func alreadyExists(caseRef int64) Result {
	return Result{Type: CaseAlreadyExists, CaseRef: caseRef}
}

func aborted() Result {
	return Result{Type: AbortedWithoutFailure}
}

func unrecoverableFailure(err error) Result {
	return Result{Type: UnrecoverableFailure, Err: err}
}

func potentiallyRecoverableFailure(err error) Result {
	return Result{Type: PotentiallyRecoverableFailure, Err: err}
}
