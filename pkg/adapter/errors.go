package adapter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// Numeric error codes recognised at the start of a backend error message.
const (
	ErrCodeDuplicateKeyValue = 23505
	ErrCodeQueryTimedOut     = 57014
)

var (
	queryTimedOutMessage = regexp.MustCompile(`Query has timed out`)
	leadingDigits        = regexp.MustCompile(`^\d+`)
)

// ErrorKind is the class a raw backend failure is sorted into.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindUniqueness
	KindTimeout
	KindConnectivity
)

func (k ErrorKind) String() string {
	switch k {
	case KindUniqueness:
		return "uniqueness_violation"
	case KindTimeout:
		return "query_timeout"
	case KindConnectivity:
		return "connectivity"
	default:
		return "generic"
	}
}

// Sentinels for errors.Is. Every statement error is also ErrStatementInvalid.
var (
	ErrStatementInvalid = errors.New("statement invalid")
	ErrRecordNotUnique  = errors.New("record not unique")
	ErrQueryTimeout     = errors.New("query timed out")
	ErrConnection       = errors.New("connection failed")
	ErrTableNotFound    = errors.New("table not found")
)

// LeadingCode parses the digits at the very start of message. Anything that
// does not start with a digit, or overflows, yields 0.
func LeadingCode(message string) int {
	digits := leadingDigits.FindString(message)
	if digits == "" {
		return 0
	}
	code, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return code
}

// Classify sorts a failure by its numeric code, falling back to the code at
// the start of the message when none is given, then to the timeout phrase.
func Classify(code *int, message string) ErrorKind {
	n := LeadingCode(message)
	if code != nil {
		n = *code
	}

	switch {
	case n == ErrCodeDuplicateKeyValue:
		return KindUniqueness
	case n == ErrCodeQueryTimedOut, queryTimedOutMessage.MatchString(message):
		return KindTimeout
	default:
		return KindGeneric
	}
}

// StatementInvalidError is the generic execution failure. The underlying error
// is kept as the cause.
type StatementInvalidError struct {
	Message string
	SQL     string
	Err     error
}

func (e *StatementInvalidError) Error() string { return e.Message }

func (e *StatementInvalidError) Unwrap() error { return e.Err }

func (e *StatementInvalidError) Is(target error) bool { return target == ErrStatementInvalid }

// RecordNotUniqueError reports a uniqueness violation.
type RecordNotUniqueError struct {
	StatementInvalidError
}

func (e *RecordNotUniqueError) Is(target error) bool {
	return target == ErrRecordNotUnique || target == ErrStatementInvalid
}

// QueryTimeoutError reports a query the backend gave up on.
type QueryTimeoutError struct {
	StatementInvalidError
}

func (e *QueryTimeoutError) Is(target error) bool {
	return target == ErrQueryTimeout || target == ErrStatementInvalid
}

// ConnectionError is returned when a session cannot be opened.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string { return e.Message }

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func newConnectionError(projectID string, err error) *ConnectionError {
	return &ConnectionError{
		Message: fmt.Sprintf("failed to connect to BigQuery project %s: %s", projectID, causeMessage(err)),
		Err:     err,
	}
}

// KindOf reports the kind of an error produced by this package.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindGeneric
	case errors.Is(err, ErrRecordNotUnique):
		return KindUniqueness
	case errors.Is(err, ErrQueryTimeout):
		return KindTimeout
	case errors.Is(err, ErrConnection):
		return KindConnectivity
	default:
		return KindGeneric
	}
}

// Translate turns a raw backend failure into a typed adapter error. Errors
// that already went through Translate are returned unchanged.
func Translate(err error, sql string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStatementInvalid) || errors.Is(err, ErrConnection) {
		return err
	}

	message := causeMessage(err)
	base := StatementInvalidError{Message: message, SQL: sql, Err: err}

	switch Classify(nil, message) {
	case KindUniqueness:
		return &RecordNotUniqueError{base}
	case KindTimeout:
		return &QueryTimeoutError{base}
	default:
		return &base
	}
}

// causeMessage digs out the backend's own message, skipping the wrapping
// added on the way up.
func causeMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var jobErr *bq.Error
	if errors.As(err, &jobErr) && jobErr.Message != "" {
		return jobErr.Message
	}

	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
