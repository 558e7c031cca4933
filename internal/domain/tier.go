package domain

import "fmt"

// Tier is the verification strategy configured for a guild. Exactly one is active at a time.
type Tier int

const (
	TierCommand        Tier = 1
	TierQRCode         Tier = 2
	TierManualApproval Tier = 3
)

// ParseTier accepts exactly the integers 1, 2 and 3.
func ParseTier(level int) (Tier, error) {
	t := Tier(level)
	if !t.Valid() {
		return 0, fmt.Errorf("level %d: %w", level, ErrInvalidLevel)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	return t >= TierCommand && t <= TierManualApproval
}

func (t Tier) String() string {
	switch t {
	case TierCommand:
		return "command"
	case TierQRCode:
		return "qr_code"
	case TierManualApproval:
		return "manual_approval"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Method returns the verification method a tier completes through.
func (t Tier) Method() Method {
	switch t {
	case TierQRCode:
		return MethodQRCode
	case TierManualApproval:
		return MethodManual
	}
	return MethodCommand
}
