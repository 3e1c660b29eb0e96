package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the card-payment state of a registration
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Registration is one paid member.
// Email, StripePaymentID and ReferralCode are each guarded by a unique index;
// those indexes are what make webhook re-delivery and code generation safe.
type Registration struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName    string `gorm:"not null" json:"firstName"`
	LastName     string `gorm:"not null" json:"lastName"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Gender       string `gorm:"type:varchar(32)" json:"gender"`
	Ethnicity    string `gorm:"type:varchar(32)" json:"ethnicity"`
	UniversityID string `json:"universityId"`
	UPI          string `gorm:"column:upi" json:"upi"`
	AreaOfStudy  string `gorm:"type:varchar(64)" json:"areaOfStudy"`
	YearLevel    string `gorm:"type:varchar(32)" json:"yearLevel"`

	PaymentStatus   PaymentStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"paymentStatus"`
	StripePaymentID *string         `gorm:"uniqueIndex" json:"stripePaymentId,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`

	// Referral system
	ReferralCode   *string `gorm:"uniqueIndex" json:"referralCode,omitempty"`
	ReferralPoints int64   `gorm:"not null;default:0;index" json:"referralPoints"`
	ReferredBy     *string `json:"referredBy,omitempty"` // raw code text, intentionally not a foreign key
	SignedUpByID   *uint   `gorm:"index" json:"signedUpBy,omitempty"` // nil = online
	SignedUpBy     *Exec   `gorm:"foreignKey:SignedUpByID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Code returns the referral code or "" when none has been assigned.
func (r *Registration) Code() string {
	if r.ReferralCode == nil {
		return ""
	}
	return *r.ReferralCode
}
