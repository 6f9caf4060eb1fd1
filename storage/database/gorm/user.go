package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/profeweb/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := repo.db.WithContext(ctx)
	switch {
	case filter.ID != "":
		q = q.Where("id = ?", filter.ID)
	case filter.Email != "":
		q = q.Where("LOWER(email) = LOWER(?)", filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := q.First(&row).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "finding user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	res := repo.db.WithContext(ctx).Model(&userRow{ID: usr.ID}).
		Select("name", "image", "updated_at", "last_login").
		Updates(&row)
	if res.Error != nil {
		return user.User{}, errors.Wrap(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}
