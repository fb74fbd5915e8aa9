package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindServer       Kind = "server"
	KindOther        Kind = "other"
)

// Issue is one entry of a 422 validation list.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned for every backend call that did not produce a 2xx response.
type Error struct {
	Kind   Kind
	Status int
	// Detail is the backend's "detail" string, or detail.message when detail is an object.
	Detail string
	Issues []Issue
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindNetwork {
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend %d", e.Status)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status of a backend failure, or 0 when none was received.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindUnauthorized
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindOther
	}
}

func newStatusError(status int, body []byte) *Error {
	apiErr := &Error{Kind: kindForStatus(status), Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var text string
	if json.Unmarshal(envelope.Detail, &text) == nil {
		apiErr.Detail = text
		return apiErr
	}

	var list []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(envelope.Detail, &list) == nil {
		apiErr.Issues = make([]Issue, 0, len(list))
		for _, item := range list {
			apiErr.Issues = append(apiErr.Issues, Issue{Field: issueField(item.Loc), Message: item.Msg})
		}
		return apiErr
	}

	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Detail, &obj) == nil {
		apiErr.Detail = obj.Message
	}
	return apiErr
}

// issueField takes the last loc element; empty or zero values fall back to "field".
func issueField(loc []any) string {
	if len(loc) == 0 {
		return "field"
	}
	switch v := loc[len(loc)-1].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v != 0 {
			return fmt.Sprint(v)
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return "field"
}

const (
	msgBadRequest   = "Yêu cầu không hợp lệ"
	msgUnauthorized = "Chưa đăng nhập hoặc phiên đã hết hạn"
	msgForbidden    = "Bạn không có quyền truy cập"
	msgNotFound     = "Không tìm thấy dữ liệu"
	msgValidation   = "Dữ liệu nhập vào không hợp lệ"
	msgServer       = "Lỗi máy chủ"
	msgOtherStatus  = "Đã có lỗi xảy ra"
	msgNetwork      = "Không thể kết nối đến máy chủ. Vui lòng kiểm tra kết nối mạng."
	msgDefault      = "Đã có lỗi xảy ra. Vui lòng thử lại."
)

// Message converts any error into the single display string shown to shoppers.
func Message(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return msgDefault
	}

	if apiErr.Kind == KindNetwork {
		return msgNetwork
	}
	if len(apiErr.Issues) > 0 {
		parts := make([]string, 0, len(apiErr.Issues))
		for _, issue := range apiErr.Issues {
			msg := issue.Message
			if msg == "" {
				msg = "Invalid value"
			}
			parts = append(parts, issue.Field+": "+msg)
		}
		return strings.Join(parts, ", ")
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return msgBadRequest
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusUnprocessableEntity:
		return msgValidation
	case http.StatusInternalServerError:
		return msgServer
	}
	return msgOtherStatus
}

// AsPlatformError maps a backend failure onto the storefront's error codes so
// handlers render one envelope. The message is always the shopper-facing text.
func AsPlatformError(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	apiErr, ok := AsError(err)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, Message(err))
	}

	msg := Message(err)
	switch apiErr.Kind {
	case KindNetwork:
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamUnavailable, err, msg)
	case KindUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg)
	case KindForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, msg)
	case KindNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msg)
	case KindValidation:
		typed := pkgerrors.Wrap(pkgerrors.CodeValidation, err, msg)
		if len(apiErr.Issues) > 0 {
			typed = typed.WithDetails(map[string]any{"issues": apiErr.Issues})
		}
		return typed
	case KindServer:
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, msg)
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msg)
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msg)
	case http.StatusTooManyRequests:
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, msg)
}
