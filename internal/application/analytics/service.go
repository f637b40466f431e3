package analytics

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
)

// Service computes per-tab aggregations. Visibility follows the tab
// rules: plain members may analyze only their own tabs.
type Service struct {
	tabRepo    timesheet.TabRepository
	memberRepo workspace.MemberRepository
	logger     *zap.Logger
}

// NewService creates a new analytics service
func NewService(tabRepo timesheet.TabRepository, memberRepo workspace.MemberRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tabRepo: tabRepo, memberRepo: memberRepo, logger: logger}
}

// ForTab aggregates one tab's entries by day and by role
func (s *Service) ForTab(ctx context.Context, workspaceID, userID, tabID uuid.UUID) (*TabAnalyticsResponse, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}

	tab, err := s.tabRepo.FindByIDForWorkspace(ctx, workspaceID, tabID)
	if err != nil {
		return nil, err
	}
	if !member.Role.SeesAllTabs() && tab.AssigneeID != userID {
		return nil, shared.ErrNotFound
	}

	byDay := hoursByDay(tab.Entries)
	byRole := amountByRole(tab.Entries, tab.Roles)

	return &TabAnalyticsResponse{
		TabID:       tab.ID,
		ByDay:       byDay,
		ByRole:      byRole,
		TotalHours:  sumDayHours(byDay),
		TotalAmount: sumRoleAmounts(byRole),
	}, nil
}

// hoursByDay sums hours per entry date, ascending. Entries without a
// date are not charted.
func hoursByDay(entries []timesheet.EntryRow) []DayBucket {
	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Date == "" {
			continue
		}
		sums[e.Date] = sums[e.Date].Add(e.Hours)
	}

	dates := make([]string, 0, len(sums))
	for date := range sums {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	buckets := make([]DayBucket, len(dates))
	for i, date := range dates {
		buckets[i] = DayBucket{Date: date, Hours: sums[date]}
	}
	return buckets
}

// amountByRole sums hours and amount (hours times rate) per role, in
// first-appearance order. Entries without a role carry no rate and are
// not charted; a role referenced but no longer defined keeps its hours
// under a placeholder name at rate zero.
func amountByRole(entries []timesheet.EntryRow, roles []timesheet.Role) []RoleBucket {
	byID := make(map[uuid.UUID]timesheet.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	var order []uuid.UUID
	buckets := make(map[uuid.UUID]*RoleBucket)
	for _, e := range entries {
		if e.RoleID == nil {
			continue
		}
		id := *e.RoleID
		b, ok := buckets[id]
		if !ok {
			name := "—"
			if role, defined := byID[id]; defined {
				name = role.Name
			}
			b = &RoleBucket{RoleID: id, Name: name}
			buckets[id] = b
			order = append(order, id)
		}
		b.Hours = b.Hours.Add(e.Hours)
	}

	out := make([]RoleBucket, len(order))
	for i, id := range order {
		b := buckets[id]
		rate := decimal.Zero
		if role, defined := byID[id]; defined {
			rate = role.Rate
		}
		b.Amount = b.Hours.Mul(rate)
		out[i] = *b
	}
	return out
}

func sumDayHours(buckets []DayBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Hours)
	}
	return total
}

func sumRoleAmounts(buckets []RoleBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Amount)
	}
	return total
}
