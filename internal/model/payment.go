package model

import "time"

// Payment represents a row in the `payments` table.  Like members, each
// payment carries an immutable human-readable code ("P-000001") assigned by
// the sequence allocator before the row is inserted.  Amounts are stored in
// bani (hundredths of a leu) to avoid floating point drift.
//
// Fields:
//  ID               – primary key identifier.
//  PaymentCode      – allocated code, immutable once assigned.
//  MemberID         – member the payment belongs to.
//  PaidAt           – date the payment was made.
//  AmountBani       – amount in bani.
//  Method           – payment method (cash, transfer, ...).
//  Status           – payment status.
//  PaymentType      – kind of payment (cotizatie, donatie, ...).
//  ContributionYear – year the contribution covers, zero when not applicable.
//  CreatedAt        – creation timestamp.
type Payment struct {
    ID               uint64    // payments.id
    PaymentCode      string    // payments.payment_code
    MemberID         uint64    // payments.member_id
    PaidAt           time.Time // payments.paid_at
    AmountBani       int64     // payments.amount_bani
    Method           string    // payments.method
    Status           string    // payments.status
    PaymentType      string    // payments.payment_type
    ContributionYear int       // payments.contribution_year
    CreatedAt        time.Time // payments.created_at
}
