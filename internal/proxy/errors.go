// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const internalServerError = "Internal Server Error"

// Error is an error with the HTTP status and message returned to the caller.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func newError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, format, args...)
}

func notConfigured(secret string) *Error {
	return newError(http.StatusInternalServerError, "%s not configured", secret)
}

// statusAndMessage maps any error to the response status and message. Only *Error
// values carry their message to the caller.
func statusAndMessage(err error) (int, string) {
	var proxyErr *Error
	if errors.As(err, &proxyErr) {
		return proxyErr.Status, proxyErr.Message
	}
	return http.StatusInternalServerError, internalServerError
}

// validationError turns a validator error into a bad request. messages is keyed by
// "Field.tag" with "Field" as a fallback for any tag of that field.
func validationError(err error, messages map[string]string) *Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return badRequest("invalid request parameters")
	}
	fe := fieldErrs[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return badRequest("%s", msg)
	}
	if msg, ok := messages[fe.Field()]; ok {
		return badRequest("%s", msg)
	}
	return badRequest("invalid parameter %s", strings.ToLower(fe.Field()))
}

// upstreamFailed is the generic message for a non-success upstream status.
func upstreamFailed(status int) string {
	return fmt.Sprintf("API request failed with status %d", status)
}
