package ez

import (
	"errors"

	"socialdesk/internal/domain"
	resp "socialdesk/internal/transport/http/response"
)

// AErr 统一错误对象（配合 resp.Error(code, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }

// Internal keeps err for the log; the client only sees msg.
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

var domainCodes = []struct {
	err  error
	code int
}{
	{domain.ErrNotFound, resp.CodeNotFound},
	{domain.ErrInvalidInput, resp.CodeBadRequest},
	{domain.ErrSelfReference, resp.CodeBadRequest},
	{domain.ErrAlreadyFriends, resp.CodeConflict},
	{domain.ErrDuplicateRequest, resp.CodeConflict},
	{domain.ErrAlreadyResolved, resp.CodeConflict},
	{domain.ErrInvalidCredentials, resp.CodeUnauthorized},
	{domain.ErrUnauthorized, resp.CodeForbidden},
}

// FromDomain maps a handler error onto an AErr. Business errors answer with
// their own text; anything else becomes an opaque 500.
func FromDomain(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	for _, m := range domainCodes {
		if errors.Is(err, m.err) {
			return &AErr{Code: m.code, Msg: m.err.Error(), Err: err}
		}
	}
	return &AErr{Code: resp.CodeServerError, Msg: resp.CodeMsgMap[resp.CodeServerError], Err: err}
}
