// services/leaderboard.go
package services

import (
	"context"
	"errors"

	"tansa-registration/store"
)

const leaderboardSize = 15

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Points    int64  `json:"points"`
}

// CodeLookup is a member's standing, found by their referral code.
type CodeLookup struct {
	Found     bool   `json:"found"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Points    int64  `json:"points"`
	Rank      int64  `json:"rank"`
}

type LeaderboardService struct {
	store store.RecordStore
}

func NewLeaderboardService(s store.RecordStore) *LeaderboardService {
	return &LeaderboardService{store: s}
}

// Top returns up to 15 members with at least one point. Rank is list
// position, so tied members get consecutive ranks here.
func (s *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	regs, err := s.store.TopByPoints(ctx, leaderboardSize)
	if err != nil {
		return nil, unavailable("load leaderboard", err)
	}

	entries := make([]LeaderboardEntry, len(regs))
	for i, r := range regs {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Points:    r.ReferralPoints,
		}
	}
	return entries, nil
}

// Lookup finds the member holding code. Rank counts the members with
// strictly more points, so ties share a rank and members outside the top 15
// still get an exact one.
func (s *LeaderboardService) Lookup(ctx context.Context, code string) (*CodeLookup, error) {
	code = NormalizeReferralCode(code)
	if !IsValidReferralCodeFormat(code) {
		return nil, ErrInvalidReferralCode
	}

	reg, err := s.store.FindByReferralCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReferralCodeNotFound
	}
	if err != nil {
		return nil, unavailable("find referral code", err)
	}

	ahead, err := s.store.CountWithPointsAbove(ctx, reg.ReferralPoints)
	if err != nil {
		return nil, unavailable("count ranking", err)
	}

	return &CodeLookup{
		Found:     true,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Points:    reg.ReferralPoints,
		Rank:      ahead + 1,
	}, nil
}
