// services/exec_dashboard.go
package services

import (
	"context"
	"crypto/subtle"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"tansa-registration/store"
)

const (
	dashboardTimeZone   = "Pacific/Auckland"
	minSearchLength     = 2
	searchResultLimit   = 50
	execMembersLimit    = 100
	execLeaderboardSize = 200
)

type DashboardStats struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}

// MemberSummary is what a committee member sees when looking someone up at
// a stall.
type MemberSummary struct {
	ID           uint      `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	UPI          string    `json:"upi"`
	UniversityID string    `json:"universityId"`
	CreatedAt    time.Time `json:"createdAt"`
	ReferralCode *string   `json:"referralCode"`
	AreaOfStudy  string    `json:"areaOfStudy"`
	YearLevel    string    `json:"yearLevel"`
}

type ExecSignups struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	SignupCount int64  `json:"signupCount"`
}

type ExecMember struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Slug     string `json:"slug"`
}

// ExecDashboardService answers the committee's sign-up dashboard.
type ExecDashboardService struct {
	store    store.RecordStore
	password string
	loc      *time.Location
	now      func() time.Time
}

func NewExecDashboardService(s store.RecordStore, password string) *ExecDashboardService {
	loc, err := time.LoadLocation(dashboardTimeZone)
	if err != nil {
		loc = time.UTC
	}
	return &ExecDashboardService{
		store:    s,
		password: password,
		loc:      loc,
		now:      time.Now,
	}
}

// CheckPassword reports whether input matches the dashboard password. An
// unset password locks the dashboard.
func (s *ExecDashboardService) CheckPassword(input string) bool {
	if s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(s.password)) == 1
}

// Stats counts completed registrations overall and since midnight in Auckland.
func (s *ExecDashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.store.CountCompletedSince(ctx, time.Time{})
	if err != nil {
		return nil, unavailable("count registrations", err)
	}

	now := s.now().In(s.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	today, err := s.store.CountCompletedSince(ctx, midnight)
	if err != nil {
		return nil, unavailable("count today's registrations", err)
	}

	return &DashboardStats{Total: total, Today: today}, nil
}

// Search matches completed registrations by name or email. Queries shorter
// than two characters return nothing.
func (s *ExecDashboardService) Search(ctx context.Context, query string) ([]MemberSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return []MemberSummary{}, nil
	}

	regs, err := s.store.SearchCompleted(ctx, query, searchResultLimit)
	if err != nil {
		return nil, unavailable("search registrations", err)
	}

	res := make([]MemberSummary, len(regs))
	for i, r := range regs {
		res[i] = MemberSummary{
			ID:           r.ID,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Email:        r.Email,
			PhoneNumber:  r.PhoneNumber,
			UPI:          r.UPI,
			UniversityID: r.UniversityID,
			CreatedAt:    r.CreatedAt,
			ReferralCode: r.ReferralCode,
			AreaOfStudy:  r.AreaOfStudy,
			YearLevel:    r.YearLevel,
		}
	}
	return res, nil
}

// Leaderboard lists every exec with the completed sign-ups they took, most
// first. Execs with equal counts stay in name order.
func (s *ExecDashboardService) Leaderboard(ctx context.Context) ([]ExecSignups, error) {
	execs, err := s.store.ListExecs(ctx, execLeaderboardSize)
	if err != nil {
		return nil, unavailable("list execs", err)
	}
	counts, err := s.store.SignupCountsByExec(ctx)
	if err != nil {
		return nil, unavailable("count exec sign-ups", err)
	}

	board := make([]ExecSignups, len(execs))
	for i, e := range execs {
		board[i] = ExecSignups{
			ID:          e.ID,
			Name:        e.Name,
			Position:    e.Position,
			SignupCount: counts[e.ID],
		}
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].SignupCount > board[j].SignupCount
	})
	return board, nil
}

// ExecMembers lists execs for the sign-up form's "signed up by" picker.
func (s *ExecDashboardService) ExecMembers(ctx context.Context) ([]ExecMember, error) {
	execs, err := s.store.ListExecs(ctx, execMembersLimit)
	if err != nil {
		return nil, unavailable("list execs", err)
	}

	members := make([]ExecMember, len(execs))
	for i, e := range execs {
		members[i] = ExecMember{
			ID:       e.ID,
			Name:     e.Name,
			Position: e.Position,
			Slug:     e.Slug,
		}
	}
	return members, nil
}
