package inmemdb

import (
	"context"

	"github.com/trezcool/profeweb/core/video"
)

type videoRepository struct {
	db *DB
}

var _ video.Repository = (*videoRepository)(nil)

func NewVideoRepository(db *DB) video.Repository {
	return &videoRepository{db: db}
}

func (repo *videoRepository) CreateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.videos {
		if other.LessonID == v.LessonID {
			return video.Video{}, video.ErrLessonHasVideo
		}
	}
	repo.db.videos[v.ID] = &v
	return v, nil
}

func (repo *videoRepository) GetVideo(_ context.Context, filter video.GetFilter) (video.Video, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, v := range repo.db.videos {
		if filter.ID != "" && v.ID != filter.ID {
			continue
		}
		if filter.AssetID != "" && v.AssetID != filter.AssetID {
			continue
		}
		if filter.UploadID != "" && v.UploadID != filter.UploadID {
			continue
		}
		if filter.LessonID != 0 && v.LessonID != filter.LessonID {
			continue
		}
		return *v, nil
	}
	return video.Video{}, video.ErrNotFound
}

func (repo *videoRepository) UpdateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.videos[v.ID]; !ok {
		return video.Video{}, video.ErrNotFound
	}
	repo.db.videos[v.ID] = &v
	return v, nil
}
