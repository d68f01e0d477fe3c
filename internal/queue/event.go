// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditEvent is published whenever a record is created or an activity
// changes lifecycle state.  It carries enough information for downstream
// consumers to build an audit trail without querying the primary database.
// Code is the allocated human-readable code for created members and
// payments, empty otherwise.
type AuditEvent struct {
    Action     string `json:"action"`      // member.created | payment.created | activity.archived | activity.reactivated
    Entity     string `json:"entity"`      // member | payment | activity
    EntityID   uint64 `json:"entity_id"`   // primary key of the affected row
    Code       string `json:"code,omitempty"`
    ActorID    string `json:"actor_id"`    // verified subject id of the acting user
    OccurredAt string `json:"occurred_at"` // RFC3339 UTC timestamp
}
