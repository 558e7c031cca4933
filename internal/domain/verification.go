package domain

import "time"

// ChallengeTTL is how long a QR-tier token stays valid after issuance.
const ChallengeTTL = 15 * time.Minute

// PendingVerification is an outstanding QR-tier challenge. At most one exists per member.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; it never drives validity on its own.
type PendingVerification struct {
	MemberID  int64     `json:"member_id" dynamodbav:"member_id"`
	Token     string    `json:"-" dynamodbav:"token"`
	IssuedAt  time.Time `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
}

// NewPendingVerification stamps a token issued at now.
func NewPendingVerification(memberID int64, token string, now time.Time) *PendingVerification {
	return &PendingVerification{
		MemberID:  memberID,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(ChallengeTTL).Unix(),
	}
}

// Expired reports whether more than ChallengeTTL has passed since issuance.
func (p *PendingVerification) Expired(now time.Time) bool {
	return now.Sub(p.IssuedAt) > ChallengeTTL
}

// Challenge is what gets delivered privately to a member under the QR tier.
type Challenge struct {
	Token     string    `json:"token"`
	QRCodeURL string    `json:"qr_code_url"`
	IssuedAt  time.Time `json:"issued_at"`
	// Reused is true when resend returned the still-valid token instead of issuing a new one.
	Reused bool `json:"reused"`
}

// SubmitCodeRequest carries a member's code submission from a private channel.
type SubmitCodeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}
