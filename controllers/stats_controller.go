package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// StatsController builds the family dashboard summary.
type StatsController struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsController creates a StatsController.
func NewStatsController(s store.Store, logger *zap.Logger) *StatsController {
	return &StatsController{store: s, logger: orNop(logger), now: time.Now}
}

type memberStats struct {
	UserID             uint   `json:"userId"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	LatestSteps        int    `json:"latestSteps"`
	LatestActiveMin    int    `json:"latestActiveMinutes"`
	CaloriesToday      int    `json:"caloriesToday"`
	UpcomingWorkouts   int    `json:"upcomingWorkouts"`
	CompletedWorkouts  int    `json:"completedWorkouts"`
	ChallengesJoined   int    `json:"challengesJoined"`
	ChallengesComplete int    `json:"challengesCompleted"`
}

// GetFamilyStats summarizes each member's activity for today. Per-member lookups
// that fail count as zero instead of failing the whole dashboard.
func (s *StatsController) GetFamilyStats(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	family, err := s.store.GetFamily(ctx, id)
	if err != nil {
		handleStoreErr(ctx, s.logger, err, "get family")
		return
	}
	users, err := s.store.ListUsersByFamily(ctx, id)
	if err != nil {
		handleStoreErr(ctx, s.logger, err, "list family users")
		return
	}

	now := s.now()
	members := make([]memberStats, 0, len(users))
	totalSteps := 0
	for _, u := range users {
		ms := memberStats{UserID: u.ID, Name: u.Name, Role: u.Role}

		if m, err := s.store.LatestHealthMetric(ctx, u.ID); err == nil {
			ms.LatestSteps = m.Steps
			ms.LatestActiveMin = m.ActiveMinutes
		}
		if meals, err := s.store.ListMealsByDate(ctx, u.ID, now); err == nil {
			for _, m := range meals {
				ms.CaloriesToday += m.Calories
			}
		}
		if list, err := s.store.ListUserWorkouts(ctx, u.ID); err == nil {
			for _, uw := range list {
				switch {
				case uw.Completed:
					ms.CompletedWorkouts++
				case uw.ScheduledFor != nil && uw.ScheduledFor.After(now):
					ms.UpcomingWorkouts++
				}
			}
		}
		if list, err := s.store.ListUserChallenges(ctx, u.ID); err == nil {
			ms.ChallengesJoined = len(list)
			for _, uc := range list {
				if uc.Completed {
					ms.ChallengesComplete++
				}
			}
		}

		totalSteps += ms.LatestSteps
		members = append(members, ms)
	}

	activeChallenges := 0
	if list, err := s.store.ListActiveChallenges(ctx, now); err == nil {
		activeChallenges = len(list)
	} else {
		s.logger.Warn("list active challenges failed", zap.Error(err))
	}

	utils.Success(ctx, gin.H{
		"family":           family,
		"members":          members,
		"totalSteps":       totalSteps,
		"activeChallenges": activeChallenges,
	})
}
