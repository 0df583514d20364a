package models

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus represents the review status of a booking
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

// FeeStatus represents the monthly fee state of an approved booking.
// The zero value is deliberately treated as unpaid: older records never
// carried the field at all.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusUnpaid  FeeStatus = "unpaid"
	FeeStatusPending FeeStatus = "pending"
)

// ApplicationDetails is the identity snapshot a resident submits with a seat
// application. It is embedded on the booking rather than stored separately,
// so the application a manager reviewed never changes under them.
type ApplicationDetails struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Address       string `json:"address"`
	Occupation    string `json:"occupation,omitempty"`
	Institute     string `json:"institute,omitempty"`
}

// Validate checks the required application fields
func (a *ApplicationDetails) Validate() error {
	if strings.TrimSpace(a.FullName) == "" {
		return errors.New("full name is required")
	}
	if strings.TrimSpace(a.Phone) == "" {
		return errors.New("phone is required")
	}
	if strings.TrimSpace(a.GuardianName) == "" {
		return errors.New("guardian name is required")
	}
	if strings.TrimSpace(a.GuardianPhone) == "" {
		return errors.New("guardian phone is required")
	}
	if strings.TrimSpace(a.Address) == "" {
		return errors.New("address is required")
	}
	return nil
}

// Booking represents a resident's claim on one bed in one room of one hostel.
type Booking struct {
	ID        uint64        `json:"id"`
	Reference string        `json:"reference"`
	UserID    uint64        `json:"user_id"`
	HostelID  uint64        `json:"hostel_id"`
	RoomID    string        `json:"room_id"`
	BedID     string        `json:"bed_id"`
	Status    BookingStatus `json:"status"`

	MonthlyFeeStatus FeeStatus  `json:"monthly_fee_status,omitempty"`
	LastPaymentDate  *time.Time `json:"last_payment_date,omitempty"`
	IsActive         bool       `json:"is_active"`

	ApplicationDetails *ApplicationDetails `json:"application_details,omitempty"`

	// Display names cached from User and Hostel. They go stale on rename
	// until ResyncNames runs; reads that need truth should join instead.
	UserName   string `json:"user_name,omitempty"`
	HostelName string `json:"hostel_name,omitempty"`

	// Version is an optimistic-concurrency stamp bumped by the store on
	// every successful write.
	Version uint64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveFeeStatus resolves the absent-means-unpaid rule.
func (b *Booking) EffectiveFeeStatus() FeeStatus {
	if b.MonthlyFeeStatus == "" {
		return FeeStatusUnpaid
	}
	return b.MonthlyFeeStatus
}

// SetFeeStatusRequest represents a manager cycling a booking's monthly fee
// state. There is no automatic rollover; this is the whole billing mechanism.
type SetFeeStatusRequest struct {
	Status FeeStatus `json:"status" binding:"required"`
}

// Validate checks the fee status value
func (r *SetFeeStatusRequest) Validate() error {
	switch r.Status {
	case FeeStatusPaid, FeeStatusUnpaid, FeeStatusPending:
		return nil
	default:
		return errors.New("status must be paid, unpaid or pending")
	}
}
