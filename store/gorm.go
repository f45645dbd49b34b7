package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/famfit/models"
)

// Gorm is a Store backed by a relational database through gorm.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an opened and migrated database handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

var _ Store = (*Gorm)(nil)

// AllModels lists every table the Gorm store needs, for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.Family{}, &models.User{}, &models.HealthMetric{}, &models.Workout{},
		&models.UserWorkout{}, &models.Meal{}, &models.Challenge{}, &models.UserChallenge{},
		&models.AIConversation{},
	}
}

func mapErr(kind string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, id)
	}
	return fmt.Errorf("load %s %d: %w", kind, id, err)
}

func first[T any](ctx context.Context, db *gorm.DB, kind string, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, mapErr(kind, id, err)
	}
	return &row, nil
}

// mysqlDuplicateEntry is MySQL's ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// CreateUser relies on the username unique index and reports a clash as ErrConflict.
func (g *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	if err := g.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("username %q: %w", u.Username, ErrConflict)
		}
		return err
	}
	return nil
}

func (g *Gorm) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](ctx, g.db, "user", id)
}

func (g *Gorm) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (g *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := g.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListUsersByFamily(ctx context.Context, familyID uint) ([]models.User, error) {
	var out []models.User
	err := g.db.WithContext(ctx).Where("family_id = ?", familyID).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	var out *models.User
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error; err != nil {
			return mapErr("user", id, err)
		}
		patch.Apply(&u)
		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		out = &u
		return nil
	})
	return out, err
}

func (g *Gorm) CreateFamily(ctx context.Context, f *models.Family) error {
	return g.db.WithContext(ctx).Create(f).Error
}

func (g *Gorm) GetFamily(ctx context.Context, id uint) (*models.Family, error) {
	return first[models.Family](ctx, g.db, "family", id)
}

func (g *Gorm) ListFamilies(ctx context.Context) ([]models.Family, error) {
	var out []models.Family
	err := g.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) CreateHealthMetric(ctx context.Context, m *models.HealthMetric) error {
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return g.db.WithContext(ctx).Create(m).Error
}

func (g *Gorm) ListHealthMetrics(ctx context.Context, userID uint, from, to time.Time) ([]models.HealthMetric, error) {
	q := g.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	var out []models.HealthMetric
	err := q.Order("date DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (g *Gorm) LatestHealthMetric(ctx context.Context, userID uint) (*models.HealthMetric, error) {
	var m models.HealthMetric
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Order("id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("health metric for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

func (g *Gorm) CreateWorkout(ctx context.Context, w *models.Workout) error {
	return g.db.WithContext(ctx).Create(w).Error
}

func (g *Gorm) GetWorkout(ctx context.Context, id uint) (*models.Workout, error) {
	return first[models.Workout](ctx, g.db, "workout", id)
}

func (g *Gorm) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var out []models.Workout
	err := g.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) CreateUserWorkout(ctx context.Context, uw *models.UserWorkout) error {
	return g.db.WithContext(ctx).Create(uw).Error
}

func (g *Gorm) GetUserWorkout(ctx context.Context, id uint) (*models.UserWorkout, error) {
	return first[models.UserWorkout](ctx, g.db, "user workout", id)
}

func (g *Gorm) ListUserWorkouts(ctx context.Context, userID uint) ([]models.UserWorkout, error) {
	var out []models.UserWorkout
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListUpcomingUserWorkouts(ctx context.Context, userID uint, now time.Time) ([]models.UserWorkout, error) {
	var out []models.UserWorkout
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND scheduled_for IS NOT NULL AND scheduled_for > ?", userID, false, now).
		Order("scheduled_for ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (g *Gorm) CompleteUserWorkout(ctx context.Context, id uint, at time.Time) (*models.UserWorkout, error) {
	var out *models.UserWorkout
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uw models.UserWorkout
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&uw, id).Error; err != nil {
			return mapErr("user workout", id, err)
		}
		uw.Completed = true
		uw.CompletedAt = &at
		if err := tx.Save(&uw).Error; err != nil {
			return err
		}
		out = &uw
		return nil
	})
	return out, err
}

func (g *Gorm) CreateMeal(ctx context.Context, m *models.Meal) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return g.db.WithContext(ctx).Create(m).Error
}

func (g *Gorm) ListMeals(ctx context.Context, userID uint) ([]models.Meal, error) {
	var out []models.Meal
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListMealsByDate(ctx context.Context, userID uint, day time.Time) ([]models.Meal, error) {
	start, end := DayBounds(day)
	var out []models.Meal
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end).
		Order("timestamp ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (g *Gorm) RecentMeals(ctx context.Context, userID uint, limit int) ([]models.Meal, error) {
	q := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Meal
	err := q.Find(&out).Error
	return out, err
}

func (g *Gorm) CreateChallenge(ctx context.Context, c *models.Challenge) error {
	return g.db.WithContext(ctx).Create(c).Error
}

func (g *Gorm) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	return first[models.Challenge](ctx, g.db, "challenge", id)
}

func (g *Gorm) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var out []models.Challenge
	err := g.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) ListActiveChallenges(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	var out []models.Challenge
	err := g.db.WithContext(ctx).Where("start_date <= ? AND end_date >= ?", now, now).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) CreateUserChallenge(ctx context.Context, uc *models.UserChallenge) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Challenge
		err := tx.First(&c, uc.ChallengeID).Error
		switch {
		case err == nil:
			uc.ApplyProgress(uc.Progress, c)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if uc.JoinedAt.IsZero() {
			uc.JoinedAt = time.Now()
		}
		return tx.Create(uc).Error
	})
}

func (g *Gorm) GetUserChallenge(ctx context.Context, id uint) (*models.UserChallenge, error) {
	return first[models.UserChallenge](ctx, g.db, "user challenge", id)
}

func (g *Gorm) ListUserChallenges(ctx context.Context, userID uint) ([]models.UserChallenge, error) {
	var out []models.UserChallenge
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) UpdateUserChallengeProgress(ctx context.Context, id uint, progress int) (*models.UserChallenge, error) {
	var out *models.UserChallenge
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uc models.UserChallenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&uc, id).Error; err != nil {
			return mapErr("user challenge", id, err)
		}
		var c models.Challenge
		if err := tx.First(&c, uc.ChallengeID).Error; err != nil {
			return mapErr("challenge", uc.ChallengeID, err)
		}
		uc.ApplyProgress(progress, c)
		if err := tx.Save(&uc).Error; err != nil {
			return err
		}
		out = &uc
		return nil
	})
	return out, err
}

func (g *Gorm) CreateConversation(ctx context.Context, c *models.AIConversation) error {
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	return g.db.WithContext(ctx).Create(c).Error
}

func (g *Gorm) GetConversation(ctx context.Context, id uint) (*models.AIConversation, error) {
	return first[models.AIConversation](ctx, g.db, "conversation", id)
}

func (g *Gorm) ListConversations(ctx context.Context, userID uint) ([]models.AIConversation, error) {
	var out []models.AIConversation
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) AppendConversationMessages(ctx context.Context, id uint, msgs ...models.Message) (*models.AIConversation, error) {
	var out *models.AIConversation
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.AIConversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return mapErr("conversation", id, err)
		}
		now := time.Now()
		for _, msg := range msgs {
			if msg.Timestamp.IsZero() {
				msg.Timestamp = now
			}
			c.Messages = append(c.Messages, msg)
		}
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		out = &c
		return nil
	})
	return out, err
}
