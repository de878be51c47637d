package errorx

import "fmt"

// CodeError is an error carrying a business error code. The logic layer
// returns these; the controller maps them onto the response envelope.
type CodeError struct {
	Code int
	Msg  string
}

func (e *CodeError) Error() string {
	return e.Msg
}

func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Business error codes.
const (
	CodeInvalidParam      = 1001
	CodeUserExist         = 1002
	CodeUserNotExist      = 1003
	CodeInvalidPassword   = 1004
	CodeServerBusy        = 1005
	CodeNeedLogin         = 1006
	CodeInvalidToken      = 1007
	CodeNotFound          = 1008
	CodeRateLimitExceeded = 1009
	CodeForbidden         = 1010
	CodePostTooSoon       = 1011
	CodeThreadClosed      = 1012
	CodeInvalidPreset     = 1013
)

// Predefined errors the logic layer can return directly.
var (
	ErrInvalidParam      = New(CodeInvalidParam, "invalid request parameters")
	ErrUserExist         = New(CodeUserExist, "username already taken")
	ErrUserNotExist      = New(CodeUserNotExist, "user does not exist")
	ErrInvalidPassword   = New(CodeInvalidPassword, "wrong username or password")
	ErrServerBusy        = New(CodeServerBusy, "server busy")
	ErrNeedLogin         = New(CodeNeedLogin, "login required")
	ErrInvalidToken      = New(CodeInvalidToken, "invalid token")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrRateLimitExceeded = New(CodeRateLimitExceeded, "too many requests")
	ErrForbidden         = New(CodeForbidden, "permission denied")
	ErrPostTooSoon       = New(CodePostTooSoon, "you cannot post again this soon")
	ErrThreadClosed      = New(CodeThreadClosed, "thread is closed")
	ErrInvalidPreset     = New(CodeInvalidPreset, "unknown similarity preset")
)
