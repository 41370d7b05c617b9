package domain

import "time"

// Audit actions recorded by the service.
const (
	AuditActionUpload  = "UPLOAD"
	AuditActionAnalyze = "ANALYZE"
	AuditActionDelete  = "DELETE"
	AuditActionChat    = "CHAT"
)

// Audit entry statuses.
const (
	AuditStatusOK     = "OK"
	AuditStatusFailed = "FAILED"
)

// AuditEntry records one action against the service.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	DatasetID *string   `json:"dataset_id,omitempty"`
	Detail    *string   `json:"detail,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditFilter narrows audit listings. Nil fields mean "no filter".
type AuditFilter struct {
	Actor     *string
	Action    *string
	DatasetID *string
	Page      PageRequest
}
