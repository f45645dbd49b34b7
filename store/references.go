package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cppla/famfit/models"
)

// referenceChecked rejects creates whose foreign keys point at missing rows.
type referenceChecked struct {
	Store
}

// WithReferenceChecks wraps s so that creating a join entity fails with
// ErrInvalidReference when a referenced user, family, workout or challenge is absent.
// The wrapped store is not touched in that case.
func WithReferenceChecks(s Store) Store {
	return &referenceChecked{Store: s}
}

func (r *referenceChecked) check(ctx context.Context, kind string, id uint, get func(context.Context, uint) error) error {
	if err := get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s %d does not exist: %w", kind, id, ErrInvalidReference)
		}
		return err
	}
	return nil
}

func (r *referenceChecked) user(ctx context.Context, id uint) error {
	return r.check(ctx, "user", id, func(ctx context.Context, id uint) error {
		_, err := r.Store.GetUser(ctx, id)
		return err
	})
}

func (r *referenceChecked) CreateUser(ctx context.Context, u *models.User) error {
	if u.FamilyID != nil {
		err := r.check(ctx, "family", *u.FamilyID, func(ctx context.Context, id uint) error {
			_, err := r.Store.GetFamily(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
	}
	return r.Store.CreateUser(ctx, u)
}

func (r *referenceChecked) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	if patch.FamilyID != nil {
		err := r.check(ctx, "family", *patch.FamilyID, func(ctx context.Context, id uint) error {
			_, err := r.Store.GetFamily(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return r.Store.UpdateUser(ctx, id, patch)
}

func (r *referenceChecked) CreateHealthMetric(ctx context.Context, m *models.HealthMetric) error {
	if err := r.user(ctx, m.UserID); err != nil {
		return err
	}
	return r.Store.CreateHealthMetric(ctx, m)
}

func (r *referenceChecked) CreateUserWorkout(ctx context.Context, uw *models.UserWorkout) error {
	if err := r.user(ctx, uw.UserID); err != nil {
		return err
	}
	err := r.check(ctx, "workout", uw.WorkoutID, func(ctx context.Context, id uint) error {
		_, err := r.Store.GetWorkout(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return r.Store.CreateUserWorkout(ctx, uw)
}

func (r *referenceChecked) CreateMeal(ctx context.Context, m *models.Meal) error {
	if err := r.user(ctx, m.UserID); err != nil {
		return err
	}
	return r.Store.CreateMeal(ctx, m)
}

func (r *referenceChecked) CreateUserChallenge(ctx context.Context, uc *models.UserChallenge) error {
	if err := r.user(ctx, uc.UserID); err != nil {
		return err
	}
	err := r.check(ctx, "challenge", uc.ChallengeID, func(ctx context.Context, id uint) error {
		_, err := r.Store.GetChallenge(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return r.Store.CreateUserChallenge(ctx, uc)
}

func (r *referenceChecked) CreateConversation(ctx context.Context, c *models.AIConversation) error {
	if err := r.user(ctx, c.UserID); err != nil {
		return err
	}
	return r.Store.CreateConversation(ctx, c)
}
