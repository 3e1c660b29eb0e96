// services/referral_code.go
package services

import (
	"context"
	"log"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tansa-registration/store"
)

const (
	ReferralCodePrefix = "TANSA"

	// Letters and digits minus the look-alikes 0/O and 1/I/L.
	referralCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	referralCodeLength   = 4
	maxCodeAttempts      = 10
)

var referralCodePattern = regexp.MustCompile(`^` + ReferralCodePrefix + `-[A-Z0-9]{4}$`)

// NormalizeReferralCode upper-cases and trims user input.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidReferralCodeFormat reports whether code is TANSA-XXXX once normalized.
func IsValidReferralCodeFormat(code string) bool {
	if code == "" {
		return false
	}
	return referralCodePattern.MatchString(NormalizeReferralCode(code))
}

// ReferralCodeGenerator issues codes that no registration holds yet.
//
// Generate only reads the store. Two concurrent calls can still pick the same
// code before either is written; the unique index on referral_code rejects
// the second insert and the intake pipeline retries with a new code.
type ReferralCodeGenerator struct {
	store       store.RecordStore
	maxAttempts int
	randIndex   func(n int) int
	now         func() time.Time
}

func NewReferralCodeGenerator(s store.RecordStore) *ReferralCodeGenerator {
	return &ReferralCodeGenerator{
		store:       s,
		maxAttempts: maxCodeAttempts,
		randIndex:   rand.IntN,
		now:         time.Now,
	}
}

func (g *ReferralCodeGenerator) candidate() string {
	suffix := make([]byte, referralCodeLength)
	for i := range suffix {
		suffix[i] = referralCodeAlphabet[g.randIndex(len(referralCodeAlphabet))]
	}
	return ReferralCodePrefix + "-" + string(suffix)
}

// Generate returns a code absent from the store.
func (g *ReferralCodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code := g.candidate()
		exists, err := g.store.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", unavailable("check referral code", err)
		}
		if !exists {
			return code, nil
		}
		log.Printf("[REFERRAL] ⚠️ Code %s already taken (attempt %d/%d)", code, attempt, g.maxAttempts)
	}

	// The code space makes this practically unreachable. The timestamp suffix
	// guarantees termination; such codes fall outside the four-character format.
	stamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	code := g.candidate() + stamp[len(stamp)-2:]
	log.Printf("[REFERRAL] ⚠️ Exhausted %d attempts, issuing fallback code %s", g.maxAttempts, code)
	return code, nil
}
