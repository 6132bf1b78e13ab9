// Package errs defines the error taxonomy shared by every Peek component.
// Components classify failures by wrapping one of the sentinel errors below;
// callers check them with errors.Is.
package errs

import "errors"

// Sentinel errors for classification. Use errors.Is(err, errs.ErrNotFound)
// rather than comparing Kind directly, since wrapping may chain further.
var (
	ErrStorage    = errors.New("errs: storage failure")
	ErrConflict   = errors.New("errs: conflict")
	ErrTransport  = errors.New("errs: transport failure")
	ErrVersion    = errors.New("errs: version mismatch")
	ErrValidation = errors.New("errs: validation failure")
	ErrNotFound   = errors.New("errs: not found")
	ErrAuth       = errors.New("errs: auth failure")
	ErrSchema     = errors.New("errs: schema failure")
)

// Kind identifies which sentinel an Error wraps, for callers that want to
// switch on it without repeated errors.Is calls.
type Kind int

const (
	KindStorage Kind = iota
	KindConflict
	KindTransport
	KindVersion
	KindValidation
	KindNotFound
	KindAuth
	KindSchema
)

var kindSentinels = map[Kind]error{
	KindStorage:    ErrStorage,
	KindConflict:   ErrConflict,
	KindTransport:  ErrTransport,
	KindVersion:    ErrVersion,
	KindValidation: ErrValidation,
	KindNotFound:   ErrNotFound,
	KindAuth:       ErrAuth,
	KindSchema:     ErrSchema,
}

// Error is a classified, wrapped error carrying a Kind and an operation tag.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	sentinel := kindSentinels[e.Kind]
	if e.Err == nil {
		return e.Op + ": " + sentinel.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel for this Kind and the wrapped cause (if
// any), so errors.Is matches either the Kind sentinel or the original error.
func (e *Error) Unwrap() []error {
	sentinel := kindSentinels[e.Kind]
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// New wraps err under the given Kind and operation tag. If err is nil, the
// bare sentinel is used as the cause.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Storage, Conflict, Transport, Version, Validation, NotFound, Auth and Schema
// are convenience constructors mirroring the Kind constants.
func Storage(op string, err error) *Error    { return New(KindStorage, op, err) }
func Conflict(op string, err error) *Error   { return New(KindConflict, op, err) }
func Transport(op string, err error) *Error  { return New(KindTransport, op, err) }
func Version(op string, err error) *Error    { return New(KindVersion, op, err) }
func Validation(op string, err error) *Error { return New(KindValidation, op, err) }
func NotFound(op string, err error) *Error   { return New(KindNotFound, op, err) }
func Auth(op string, err error) *Error       { return New(KindAuth, op, err) }
func Schema(op string, err error) *Error     { return New(KindSchema, op, err) }
