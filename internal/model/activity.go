package model

import "time"

// ActivityStatusActive and ActivityStatusArchived are the two states of the
// activity lifecycle.  An activity starts active; archiving records who
// archived it and when, and reactivating clears both fields again.
const (
    ActivityStatusActive   = "active"
    ActivityStatusArchived = "archived"
)

// Activity represents a row in the `activities` table.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – activity title.
//  Category    – activity category (free text, references activity_types).
//  HeldAt      – date the activity takes place.
//  Status      – "active" or "archived".
//  ArchivedAt  – when the activity was archived (nil while active).
//  ArchivedBy  – subject id of the actor who archived it (nil while active).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Activity struct {
    ID         uint64     // activities.id
    Title      string     // activities.title
    Category   string     // activities.category
    HeldAt     time.Time  // activities.held_at
    Status     string     // activities.status
    ArchivedAt *time.Time // activities.archived_at (nullable)
    ArchivedBy *string    // activities.archived_by (nullable)
    CreatedAt  time.Time  // activities.created_at
    UpdatedAt  time.Time  // activities.updated_at
}
