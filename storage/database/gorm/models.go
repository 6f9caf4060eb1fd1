// Package gormrepos implements the repositories on PostgreSQL with gorm.
package gormrepos

import (
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

type userRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Email     string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

func (userRow) TableName() string { return "users" }

type courseRow struct {
	ID          int `gorm:"primaryKey"`
	Name        string
	Description string
	Published   bool
	AuthorID    string
	Lessons     []lessonRow `gorm:"foreignKey:CourseID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (courseRow) TableName() string { return "courses" }

type lessonRow struct {
	ID          int `gorm:"primaryKey"`
	Name        string
	Description string
	CourseID    int
	Video       *videoRow `gorm:"foreignKey:LessonID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (lessonRow) TableName() string { return "lessons" }

type videoRow struct {
	ID               string `gorm:"primaryKey"`
	LessonID         int
	OwnerID          string
	UploadID         string
	AssetID          string
	Status           string
	PublicPlaybackID string
	Duration         float64
	AspectRatio      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (videoRow) TableName() string { return "videos" }

func toUserRow(usr user.User) userRow {
	row := userRow{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		Image:     usr.Image,
		CreatedAt: usr.CreatedAt.UTC(),
		UpdatedAt: usr.UpdatedAt.UTC(),
	}
	if !usr.LastLogin.IsZero() {
		ll := usr.LastLogin.UTC()
		row.LastLogin = &ll
	}
	return row
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Image:     row.Image,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.LastLogin != nil {
		usr.LastLogin = row.LastLogin.UTC()
	}
	return usr
}

func toCourseRow(crs course.Course) courseRow {
	return courseRow{
		ID:          crs.ID,
		Name:        crs.Name,
		Description: crs.Description,
		Published:   crs.Published,
		AuthorID:    crs.AuthorID,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}
}

func (row courseRow) toCourse() course.Course {
	crs := course.Course{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Published:   row.Published,
		AuthorID:    row.AuthorID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.Lessons != nil {
		crs.Lessons = make([]course.Lesson, 0, len(row.Lessons))
		for _, l := range row.Lessons {
			crs.Lessons = append(crs.Lessons, l.toLesson())
		}
	}
	return crs
}

func toLessonRow(lsn course.Lesson) lessonRow {
	return lessonRow{
		ID:          lsn.ID,
		Name:        lsn.Name,
		Description: lsn.Description,
		CourseID:    lsn.CourseID,
		CreatedAt:   lsn.CreatedAt.UTC(),
		UpdatedAt:   lsn.UpdatedAt.UTC(),
	}
}

func (row lessonRow) toLesson() course.Lesson {
	lsn := course.Lesson{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CourseID:    row.CourseID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.Video != nil {
		v := row.Video.toVideo()
		lsn.Video = &v
	}
	return lsn
}

func toVideoRow(v video.Video) videoRow {
	return videoRow{
		ID:               v.ID,
		LessonID:         v.LessonID,
		OwnerID:          v.OwnerID,
		UploadID:         v.UploadID,
		AssetID:          v.AssetID,
		Status:           string(v.Status),
		PublicPlaybackID: v.PublicPlaybackID,
		Duration:         v.Duration,
		AspectRatio:      v.AspectRatio,
		CreatedAt:        v.CreatedAt.UTC(),
		UpdatedAt:        v.UpdatedAt.UTC(),
	}
}

func (row videoRow) toVideo() video.Video {
	return video.Video{
		ID:               row.ID,
		LessonID:         row.LessonID,
		OwnerID:          row.OwnerID,
		UploadID:         row.UploadID,
		AssetID:          row.AssetID,
		Status:           video.Status(row.Status),
		PublicPlaybackID: row.PublicPlaybackID,
		Duration:         row.Duration,
		AspectRatio:      row.AspectRatio,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

// trapNotFound maps gorm's "record not found" to notFound.
func trapNotFound(err error, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
