package service

import (
	"context"
	"errors"
	"fmt"

	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

// Actor is the caller identity resolved by the HTTP layer.
type Actor struct {
	UserID uint
}

// resolveActor loads the caller's user row.
func resolveActor(ctx context.Context, db *gorm.DB, actor Actor) (models.User, error) {
	if actor.UserID == 0 {
		return models.User{}, ErrNoIdentity
	}
	var user models.User
	err := db.WithContext(ctx).First(&user, actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user %d: %w", actor.UserID, err)
	}
	return user, nil
}

// exists reports whether a row with the given primary key exists.
func exists(db *gorm.DB, model any, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// countIDs returns how many of the distinct ids exist in model's table.
func countIDs(db *gorm.DB, model any, ids []uint) (int, int64, error) {
	seen := make(map[uint]struct{}, len(ids))
	uniq := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return 0, 0, nil
	}
	var count int64
	if err := db.Model(model).Where("id IN ?", uniq).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	return len(uniq), count, nil
}
