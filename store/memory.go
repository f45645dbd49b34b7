package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cppla/famfit/models"
)

// table is an id-keyed map with its own sequence. clone, when set, detaches
// pointer and slice fields so rows never alias caller memory.
type table[T any] struct {
	rows   map[uint]T
	nextID uint
	clone  func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T]{rows: map[uint]T{}, nextID: 1, clone: clone}
}

func (t *table[T]) insert(fn func(id uint) T) T {
	id := t.nextID
	t.nextID++
	row := t.clone(fn(id))
	t.rows[id] = row
	return t.clone(row)
}

func (t *table[T]) get(id uint) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		return row, false
	}
	return t.clone(row), true
}

func (t *table[T]) put(id uint, row T) {
	t.rows[id] = t.clone(row)
}

func (t *table[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, row := range t.rows {
		if keep == nil || keep(row) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u models.User) models.User {
	u.Avatar = clonePtr(u.Avatar)
	u.FamilyID = clonePtr(u.FamilyID)
	return u
}

func cloneWorkout(w models.Workout) models.Workout {
	w.ScheduledTime = clonePtr(w.ScheduledTime)
	return w
}

func cloneUserWorkout(uw models.UserWorkout) models.UserWorkout {
	uw.ScheduledFor = clonePtr(uw.ScheduledFor)
	uw.CompletedAt = clonePtr(uw.CompletedAt)
	return uw
}

func cloneConversation(c models.AIConversation) models.AIConversation {
	msgs := make([]models.Message, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return c
}

// Memory is a process-lifetime Store. Data is lost on restart.
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	users          *table[models.User]
	families       *table[models.Family]
	healthMetrics  *table[models.HealthMetric]
	workouts       *table[models.Workout]
	userWorkouts   *table[models.UserWorkout]
	meals          *table[models.Meal]
	challenges     *table[models.Challenge]
	userChallenges *table[models.UserChallenge]
	conversations  *table[models.AIConversation]
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:            time.Now,
		users:          newTable(cloneUser),
		families:       newTable[models.Family](nil),
		healthMetrics:  newTable[models.HealthMetric](nil),
		workouts:       newTable(cloneWorkout),
		userWorkouts:   newTable(cloneUserWorkout),
		meals:          newTable[models.Meal](nil),
		challenges:     newTable[models.Challenge](nil),
		userChallenges: newTable[models.UserChallenge](nil),
		conversations:  newTable(cloneConversation),
	}
}

var _ Store = (*Memory)(nil)

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// Users

// userByUsername matches case-insensitively. Callers hold m.mu.
func (m *Memory) userByUsername(username string) (models.User, bool) {
	for _, u := range m.users.rows {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), true
		}
	}
	return models.User{}, false
}

// CreateUser fails with ErrConflict when the username is taken, ignoring case.
func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.userByUsername(u.Username); taken {
		return fmt.Errorf("username %q: %w", u.Username, ErrConflict)
	}
	*u = m.users.insert(func(id uint) models.User {
		u.ID = id
		u.CreatedAt = m.now()
		return *u
	})
	return nil
}

func (m *Memory) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users.get(id)
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.userByUsername(username); ok {
		return &u, nil
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.users.filter(nil)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListUsersByFamily(_ context.Context, familyID uint) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.users.filter(func(u models.User) bool {
		return u.FamilyID != nil && *u.FamilyID == familyID
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users.get(id)
	if !ok {
		return nil, notFound("user", id)
	}
	patch.Apply(&u)
	m.users.put(id, u)
	return &u, nil
}

// Families

func (m *Memory) CreateFamily(_ context.Context, f *models.Family) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*f = m.families.insert(func(id uint) models.Family {
		f.ID = id
		f.CreatedAt = m.now()
		return *f
	})
	return nil
}

func (m *Memory) GetFamily(_ context.Context, id uint) (*models.Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.families.get(id)
	if !ok {
		return nil, notFound("family", id)
	}
	return &f, nil
}

func (m *Memory) ListFamilies(_ context.Context) ([]models.Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.families.filter(nil)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Health metrics

func (m *Memory) CreateHealthMetric(_ context.Context, hm *models.HealthMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hm.Date.IsZero() {
		hm.Date = m.now()
	}
	*hm = m.healthMetrics.insert(func(id uint) models.HealthMetric {
		hm.ID = id
		return *hm
	})
	return nil
}

func (m *Memory) ListHealthMetrics(_ context.Context, userID uint, from, to time.Time) ([]models.HealthMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.healthMetrics.filter(func(hm models.HealthMetric) bool {
		if hm.UserID != userID {
			return false
		}
		if !from.IsZero() && hm.Date.Before(from) {
			return false
		}
		if !to.IsZero() && hm.Date.After(to) {
			return false
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (m *Memory) LatestHealthMetric(ctx context.Context, userID uint) (*models.HealthMetric, error) {
	list, _ := m.ListHealthMetrics(ctx, userID, time.Time{}, time.Time{})
	if len(list) == 0 {
		return nil, fmt.Errorf("health metric for user %d: %w", userID, ErrNotFound)
	}
	return &list[0], nil
}

// Workouts

func (m *Memory) CreateWorkout(_ context.Context, w *models.Workout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*w = m.workouts.insert(func(id uint) models.Workout {
		w.ID = id
		return *w
	})
	return nil
}

func (m *Memory) GetWorkout(_ context.Context, id uint) (*models.Workout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workouts.get(id)
	if !ok {
		return nil, notFound("workout", id)
	}
	return &w, nil
}

func (m *Memory) ListWorkouts(_ context.Context) ([]models.Workout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.workouts.filter(nil)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateUserWorkout(_ context.Context, uw *models.UserWorkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*uw = m.userWorkouts.insert(func(id uint) models.UserWorkout {
		uw.ID = id
		return *uw
	})
	return nil
}

func (m *Memory) GetUserWorkout(_ context.Context, id uint) (*models.UserWorkout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uw, ok := m.userWorkouts.get(id)
	if !ok {
		return nil, notFound("user workout", id)
	}
	return &uw, nil
}

func (m *Memory) ListUserWorkouts(_ context.Context, userID uint) ([]models.UserWorkout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.userWorkouts.filter(func(uw models.UserWorkout) bool { return uw.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListUpcomingUserWorkouts(_ context.Context, userID uint, now time.Time) ([]models.UserWorkout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.userWorkouts.filter(func(uw models.UserWorkout) bool {
		return uw.UserID == userID && !uw.Completed && uw.ScheduledFor != nil && uw.ScheduledFor.After(now)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledFor.Equal(*out[j].ScheduledFor) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledFor.Before(*out[j].ScheduledFor)
	})
	return out, nil
}

func (m *Memory) CompleteUserWorkout(_ context.Context, id uint, at time.Time) (*models.UserWorkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uw, ok := m.userWorkouts.get(id)
	if !ok {
		return nil, notFound("user workout", id)
	}
	uw.Completed = true
	uw.CompletedAt = &at
	m.userWorkouts.put(id, uw)
	return &uw, nil
}

// Meals

func (m *Memory) CreateMeal(_ context.Context, meal *models.Meal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meal.Timestamp.IsZero() {
		meal.Timestamp = m.now()
	}
	*meal = m.meals.insert(func(id uint) models.Meal {
		meal.ID = id
		return *meal
	})
	return nil
}

func sortMealsAsc(out []models.Meal) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
}

func (m *Memory) ListMeals(_ context.Context, userID uint) ([]models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.meals.filter(func(meal models.Meal) bool { return meal.UserID == userID })
	sortMealsAsc(out)
	return out, nil
}

func (m *Memory) ListMealsByDate(_ context.Context, userID uint, day time.Time) ([]models.Meal, error) {
	start, end := DayBounds(day)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.meals.filter(func(meal models.Meal) bool {
		return meal.UserID == userID && !meal.Timestamp.Before(start) && !meal.Timestamp.After(end)
	})
	sortMealsAsc(out)
	return out, nil
}

func (m *Memory) RecentMeals(ctx context.Context, userID uint, limit int) ([]models.Meal, error) {
	out, _ := m.ListMeals(ctx, userID)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Challenges

func (m *Memory) CreateChallenge(_ context.Context, c *models.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*c = m.challenges.insert(func(id uint) models.Challenge {
		c.ID = id
		c.CreatedAt = m.now()
		return *c
	})
	return nil
}

func (m *Memory) GetChallenge(_ context.Context, id uint) (*models.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges.get(id)
	if !ok {
		return nil, notFound("challenge", id)
	}
	return &c, nil
}

func (m *Memory) ListChallenges(_ context.Context) ([]models.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.challenges.filter(nil)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveChallenges(_ context.Context, now time.Time) ([]models.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.challenges.filter(func(c models.Challenge) bool { return c.ActiveAt(now) })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateUserChallenge(_ context.Context, uc *models.UserChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// completion is only derivable when the challenge is known
	if c, ok := m.challenges.get(uc.ChallengeID); ok {
		uc.ApplyProgress(uc.Progress, c)
	}
	*uc = m.userChallenges.insert(func(id uint) models.UserChallenge {
		uc.ID = id
		uc.JoinedAt = m.now()
		return *uc
	})
	return nil
}

func (m *Memory) GetUserChallenge(_ context.Context, id uint) (*models.UserChallenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uc, ok := m.userChallenges.get(id)
	if !ok {
		return nil, notFound("user challenge", id)
	}
	return &uc, nil
}

func (m *Memory) ListUserChallenges(_ context.Context, userID uint) ([]models.UserChallenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.userChallenges.filter(func(uc models.UserChallenge) bool { return uc.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateUserChallengeProgress(_ context.Context, id uint, progress int) (*models.UserChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.userChallenges.get(id)
	if !ok {
		return nil, notFound("user challenge", id)
	}
	c, ok := m.challenges.get(uc.ChallengeID)
	if !ok {
		return nil, notFound("challenge", uc.ChallengeID)
	}
	uc.ApplyProgress(progress, c)
	m.userChallenges.put(id, uc)
	return &uc, nil
}

// Conversations

func (m *Memory) CreateConversation(_ context.Context, c *models.AIConversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	*c = m.conversations.insert(func(id uint) models.AIConversation {
		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		return *c
	})
	return nil
}

func (m *Memory) GetConversation(_ context.Context, id uint) (*models.AIConversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations.get(id)
	if !ok {
		return nil, notFound("conversation", id)
	}
	return &c, nil
}

func (m *Memory) ListConversations(_ context.Context, userID uint) ([]models.AIConversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.conversations.filter(func(c models.AIConversation) bool { return c.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AppendConversationMessages(_ context.Context, id uint, msgs ...models.Message) (*models.AIConversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations.get(id)
	if !ok {
		return nil, notFound("conversation", id)
	}
	now := m.now()
	for _, msg := range msgs {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		c.Messages = append(c.Messages, msg)
	}
	c.UpdatedAt = now
	m.conversations.put(id, c)
	return &c, nil
}
