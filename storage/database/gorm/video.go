package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/profeweb/core/video"
)

type videoRepository struct {
	db *gorm.DB
}

var _ video.Repository = (*videoRepository)(nil)

func NewVideoRepository(db *gorm.DB) video.Repository {
	return &videoRepository{db: db}
}

func (repo *videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	row := toVideoRow(v)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return video.Video{}, video.ErrLessonHasVideo
		}
		return video.Video{}, errors.Wrap(err, "inserting video")
	}
	return row.toVideo(), nil
}

func (repo *videoRepository) GetVideo(ctx context.Context, filter video.GetFilter) (video.Video, error) {
	q := repo.db.WithContext(ctx).Model(&videoRow{})
	if filter.ID != "" {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.AssetID != "" {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.UploadID != "" {
		q = q.Where("upload_id = ?", filter.UploadID)
	}
	if filter.LessonID != 0 {
		q = q.Where("lesson_id = ?", filter.LessonID)
	}

	var row videoRow
	if err := q.First(&row).Error; err != nil {
		return video.Video{}, trapNotFound(err, video.ErrNotFound, "finding video")
	}
	return row.toVideo(), nil
}

func (repo *videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	row := toVideoRow(v)
	res := repo.db.WithContext(ctx).Model(&videoRow{ID: v.ID}).
		Select("upload_id", "asset_id", "status", "public_playback_id", "duration", "aspect_ratio", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return video.Video{}, errors.Wrap(res.Error, "updating video")
	}
	if res.RowsAffected == 0 {
		return video.Video{}, video.ErrNotFound
	}
	return repo.GetVideo(ctx, video.GetFilter{ID: v.ID})
}
