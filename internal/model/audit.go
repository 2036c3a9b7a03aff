package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of privileged mutation an audit entry documents.
type AuditAction string

const (
	AuditActionDelete   AuditAction = "delete"
	AuditActionSuspend  AuditAction = "suspend"
	AuditActionActivate AuditAction = "activate"
	AuditActionUpdate   AuditAction = "update"
)

// ValidAuditAction reports whether a is a known audit action.
func ValidAuditAction(a AuditAction) bool {
	switch a {
	case AuditActionDelete, AuditActionSuspend, AuditActionActivate, AuditActionUpdate:
		return true
	}
	return false
}

// AuditTargetType identifies what kind of entity an audit entry refers to.
// Targets are weak references: the entity may be deleted later without
// invalidating the entry.
type AuditTargetType string

const (
	AuditTargetUser    AuditTargetType = "user"
	AuditTargetOrder   AuditTargetType = "order"
	AuditTargetProduct AuditTargetType = "product"
	AuditTargetStylist AuditTargetType = "stylist"
	AuditTargetInquiry AuditTargetType = "inquiry"
)

// ValidAuditTargetType reports whether t is a known target type.
func ValidAuditTargetType(t AuditTargetType) bool {
	switch t {
	case AuditTargetUser, AuditTargetOrder, AuditTargetProduct,
		AuditTargetStylist, AuditTargetInquiry:
		return true
	}
	return false
}

// AuditLogEntry is one immutable record of a privileged state change.
// There is no update or delete operation for this type anywhere in the
// public contract.
type AuditLogEntry struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Action           AuditAction     `json:"action" db:"action"`
	TargetType       AuditTargetType `json:"targetType" db:"target_type"`
	TargetID         string          `json:"targetId" db:"target_id"`
	TargetEmail      *string         `json:"targetEmail,omitempty" db:"target_email"`
	Reason           string          `json:"reason" db:"reason"`
	Details          map[string]any  `json:"details,omitempty" db:"details"`
	PerformedBy      string          `json:"performedBy" db:"performed_by"`
	PerformedByEmail string          `json:"performedByEmail" db:"performed_by_email"`
	IPAddress        *string         `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent        *string         `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// RequestMeta carries the provenance of the request that triggered a
// privileged mutation.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}

// AuditLogFilter selects audit entries for the admin listing.
type AuditLogFilter struct {
	Action           *AuditAction
	TargetType       *AuditTargetType
	TargetEmail      string
	PerformedByEmail string
	Limit            int
	Offset           int
}

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 1000
)

// Normalize clamps pagination to sane bounds.
func (f *AuditLogFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultAuditLogLimit
	}
	if f.Limit > maxAuditLogLimit {
		f.Limit = maxAuditLogLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// AuditLogPage is one page of audit entries plus the unpaged total.
type AuditLogPage struct {
	Logs   []AuditLogEntry `json:"logs"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
