package goConvert

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goConvert/internal/flows"
	"github.com/MrEthical07/goConvert/jwt"
	"github.com/MrEthical07/goConvert/session"
)

const (
	auditEventLoginSuccess = "login_success"
	auditEventLoginFailure = "login_failure"
	auditEventLoginBusy    = "login_busy"
	auditEventLogout       = "logout"
	auditEventNavigate     = "navigate"
	auditEventRestore      = "restore"
)

// AuditErrorCode is the coarse error recorded in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrUnauthorized AuditErrorCode = "unauthorized"
	auditErrTimeout      AuditErrorCode = "timeout"
	auditErrNetwork      AuditErrorCode = "network"
	auditErrHTTP         AuditErrorCode = "http_error"
	auditErrMalformed    AuditErrorCode = "malformed_response"
	auditErrBusy         AuditErrorCode = "busy"
	auditErrExpired      AuditErrorCode = "token_expired"
	auditErrStorage      AuditErrorCode = "storage_unavailable"
	auditErrInternal     AuditErrorCode = "internal_error"
)

var errSubmitBusy = errors.New("submit already in flight")

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	err error,
	metadata map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}
	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var httpErr *flows.HTTPError
	switch {
	case errors.Is(err, errSubmitBusy):
		return auditErrBusy
	case errors.Is(err, session.ErrTokenExpired):
		return auditErrExpired
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, ErrStorageUnavailable):
		return auditErrStorage
	case errors.As(err, &httpErr):
		if httpErr.Status == 401 {
			return auditErrUnauthorized
		}
		return auditErrHTTP
	case errors.Is(err, flows.ErrTimeout):
		return auditErrTimeout
	case errors.Is(err, flows.ErrMalformedResponse):
		return auditErrMalformed
	}

	switch flows.Classify(err, 0).Kind {
	case flows.KindNetwork:
		return auditErrNetwork
	default:
		return auditErrInternal
	}
}

// tokenSubject returns the sub claim of a JWT, "" for opaque tokens.
func tokenSubject(token string) string {
	claims, err := jwt.Inspect(token)
	if err != nil {
		return ""
	}
	return claims.Subject
}
