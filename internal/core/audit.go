package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionCountryCreate AuditAction = "country_create"
	ActionCountryEdit   AuditAction = "country_edit"
	ActionCountryDelete AuditAction = "country_delete"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string        `json:"id"`
	Action    AuditAction   `json:"action"`
	Severity  AuditSeverity `json:"severity"`
	Code      string        `json:"code"`
	IPAddress string        `json:"ipAddress,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	Before    *Country      `json:"before,omitempty"`
	After     *Country      `json:"after,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Auditor receives an entry for every successful write.
// Implementations must not block the caller for long.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry)
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionCountryDelete:
		return SeverityHigh
	case ActionCountryEdit:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// newAuditEntry builds an entry with request metadata taken from ctx.
func newAuditEntry(ctx context.Context, action AuditAction, code string, before, after *Country) AuditEntry {
	return AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Severity:  determineSeverity(action),
		Code:      code,
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		RequestID: GetRequestIDFromContext(ctx),
		Before:    before,
		After:     after,
		CreatedAt: time.Now().UTC(),
	}
}

// LogAuditor writes audit entries to a structured logger.
type LogAuditor struct {
	logger *slog.Logger
}

// NewLogAuditor returns an Auditor that logs at Info level under the "audit"
// message. A nil logger falls back to slog.Default().
func NewLogAuditor(logger *slog.Logger) *LogAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAuditor{logger: logger}
}

func (a *LogAuditor) Record(ctx context.Context, entry AuditEntry) {
	attrs := []any{
		"audit_id", entry.ID,
		"action", entry.Action,
		"severity", entry.Severity,
		"code", entry.Code,
	}
	if entry.IPAddress != "" {
		attrs = append(attrs, "ip", entry.IPAddress)
	}
	if entry.UserAgent != "" {
		attrs = append(attrs, "user_agent", entry.UserAgent)
	}
	if entry.RequestID != "" {
		attrs = append(attrs, "request_id", entry.RequestID)
	}
	if entry.Before != nil && entry.After != nil {
		attrs = append(attrs, "changes", diffCountries(*entry.Before, *entry.After))
	}
	a.logger.InfoContext(ctx, "audit", attrs...)
}

// diffCountries lists the mutable fields whose values differ.
func diffCountries(before, after Country) []string {
	var changed []string
	if before.ShortName != after.ShortName {
		changed = append(changed, "shortName")
	}
	if before.FullName != after.FullName {
		changed = append(changed, "fullName")
	}
	if before.Population != after.Population {
		changed = append(changed, "population")
	}
	if before.Square != after.Square {
		changed = append(changed, "square")
	}
	return changed
}
