// services/seed.go
package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tansa-registration/models"
	"tansa-registration/store"
)

var (
	seedFirstNames = []string{
		"Emma", "Liam", "Olivia", "Noah", "Ava", "Oliver", "Sophia", "Elijah",
		"Isabella", "Lucas", "Mia", "Mason", "Charlotte", "Ethan", "Amelia",
		"James", "Harper", "Benjamin", "Evelyn", "Jack", "Luna", "Henry", "Chloe",
	}
	seedLastNames = []string{
		"Chen", "Wang", "Lin", "Liu", "Zhang", "Lee", "Wu", "Yang", "Huang", "Zhou",
		"Smith", "Brown", "Kim", "Park", "Nguyen", "Tran", "Patel", "Singh", "Taylor",
	}
	seedGenders    = []string{"male", "female", "non-binary", "other"}
	seedEthnicity  = []string{"taiwanese", "chinese", "east-asian", "nz-european", "other"}
	seedAreas      = []string{"arts", "business", "engineering", "science", "law"}
	seedYearLevels = []string{"first-year", "second-year", "third-year", "fourth-year", "postgraduate"}
)

// SeedRegistrations creates n completed test registrations with fresh codes
// and a spread of points weighted towards zero. It returns what it created.
func SeedRegistrations(ctx context.Context, s store.RecordStore, n int) ([]models.Registration, error) {
	codes := NewReferralCodeGenerator(s)
	created := make([]models.Registration, 0, n)

	for i := 0; i < n; i++ {
		code, err := codes.Generate(ctx)
		if err != nil {
			return created, err
		}
		reg := seedRegistration(code)
		points := int(rand.Float64() * rand.Float64() * 16)

		err = s.Transaction(ctx, func(tx store.RecordStore) error {
			if err := tx.Create(ctx, reg); err != nil {
				return err
			}
			ledger := NewPointsLedger(tx)
			for p := 0; p < points; p++ {
				if err := ledger.AwardReferralPoint(ctx, reg.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("[SEED] ❌ Failed to create registration %d: %v", i+1, err)
			continue
		}
		reg.ReferralPoints = int64(points)
		created = append(created, *reg)
		log.Printf("[SEED] Created %s %s - %d points - %s", reg.FirstName, reg.LastName, points, code)
	}

	if len(created) == 0 && n > 0 {
		return nil, fmt.Errorf("seed: no registrations created")
	}

	top := append([]models.Registration(nil), created...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].ReferralPoints > top[j].ReferralPoints })
	for i := 0; i < len(top) && i < 5; i++ {
		log.Printf("[SEED]   %d. %s %s: %d pts (%s)", i+1, top[i].FirstName, top[i].LastName, top[i].ReferralPoints, top[i].Code())
	}
	return created, nil
}

func seedRegistration(code string) *models.Registration {
	first := pick(seedFirstNames)
	last := pick(seedLastNames)
	id := uuid.NewString()
	paymentID := "pi_test_" + strings.ReplaceAll(id, "-", "")

	return &models.Registration{
		FirstName:       first,
		LastName:        last,
		Email:           fmt.Sprintf("test_%s@example.com", id[:13]),
		PhoneNumber:     fmt.Sprintf("02%08d", rand.IntN(100000000)),
		Gender:          pick(seedGenders),
		Ethnicity:       pick(seedEthnicity),
		UniversityID:    fmt.Sprintf("%d", 100000000+rand.IntN(900000000)),
		UPI:             fmt.Sprintf("%s%03d", strings.ToLower(first[:3]), rand.IntN(1000)),
		AreaOfStudy:     pick(seedAreas),
		YearLevel:       pick(seedYearLevels),
		PaymentStatus:   models.PaymentStatusCompleted,
		StripePaymentID: &paymentID,
		Amount:          decimal.NewFromInt(7),
		ReferralCode:    &code,
	}
}

func pick(options []string) string {
	return options[rand.IntN(len(options))]
}
