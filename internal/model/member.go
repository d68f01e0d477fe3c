package model

import "time"

// Member represents a membership record as stored in the `members` table.
// The MemberCode is assigned exactly once at creation time by the sequence
// allocator and never changes afterwards, even when the rest of the record
// is updated.
//
// Fields:
//  ID         – primary key identifier.
//  MemberCode – zero-padded human-readable code (e.g. "01047"), immutable.
//  Status     – membership status (e.g. "Activ", "Retras").
//  Rank       – military rank, free text.
//  FirstName  – given name.
//  LastName   – family name.
//  Unit       – unit the member retired from.
//  Email      – contact email, may be empty.
//  Phone      – contact phone, may be empty.
//  Address    – postal address, may be empty.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Member struct {
    ID         uint64    // members.id
    MemberCode string    // members.member_code
    Status     string    // members.status
    Rank       string    // members.rank
    FirstName  string    // members.first_name
    LastName   string    // members.last_name
    Unit       string    // members.unit
    Email      string    // members.email
    Phone      string    // members.phone
    Address    string    // members.address
    CreatedAt  time.Time // members.created_at
    UpdatedAt  time.Time // members.updated_at
}
