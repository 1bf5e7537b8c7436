package errors

import (
	"net/http"
)

// CodeSession marks errors raised locally from session state, without any
// network round-trip, such as a missing refresh token.
const CodeSession = 460

func BadRequest() ErrorEnricher    { return WithCode(http.StatusBadRequest) }
func Unauthorized() ErrorEnricher  { return WithCode(http.StatusUnauthorized) }
func Forbidden() ErrorEnricher     { return WithCode(http.StatusForbidden) }
func NotFound() ErrorEnricher      { return WithCode(http.StatusNotFound) }
func Unprocessable() ErrorEnricher { return WithCode(http.StatusUnprocessableEntity) }
func Session() ErrorEnricher       { return WithCode(CodeSession) }

// IsSession reports whether the error was raised locally from session state.
func IsSession(err error) bool {
	return CodeOf(err) == CodeSession
}
