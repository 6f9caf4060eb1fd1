// Package testutil builds fixtures over the in-memory store.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	"github.com/trezcool/profeweb/storage/database/inmem"
)

// Config returns a test mode configuration that does not depend on the environment.
func Config() *core.Config {
	return &core.Config{
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Profe Web",
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:8000",
		Server: core.ServerConfig{
			ShutdownTimeout:        time.Second,
			SessionExpirationDelta: time.Hour,
		},
		Mux: core.MuxConfig{ThumbnailWidth: 640},
	}
}

// NewValidator returns a validator with the custom validations and Spanish translations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return validate, translator
}

// Repos are the in-memory repositories sharing one DB.
type Repos struct {
	DB      *inmemdb.DB
	Users   user.Repository
	Courses course.Repository
	Videos  video.Repository
}

func OpenRepos() *Repos {
	db := inmemdb.Open()
	return &Repos{
		DB:      db,
		Users:   inmemdb.NewUserRepository(db),
		Courses: inmemdb.NewCourseRepository(db),
		Videos:  inmemdb.NewVideoRepository(db),
	}
}

func CreateUser(t *testing.T, repo user.Repository, name, email string) user.User {
	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, author user.User, name string, published bool, createdAt ...time.Time) course.Course {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Name:        name,
		Description: name + " description",
		Published:   published,
		AuthorID:    author.ID,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateLesson(t *testing.T, repo course.Repository, crs course.Course, name string) course.Lesson {
	now := time.Now().UTC()
	lsn, err := repo.CreateLesson(context.Background(), course.Lesson{
		Name:        name,
		Description: name + " description",
		CourseID:    crs.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func CreateVideo(t *testing.T, repo video.Repository, lsn course.Lesson, owner user.User, assetID string, status video.Status, playbackID string) video.Video {
	now := time.Now().UTC()
	v, err := repo.CreateVideo(context.Background(), video.Video{
		ID:               uuid.New().String(),
		LessonID:         lsn.ID,
		OwnerID:          owner.ID,
		AssetID:          assetID,
		Status:           status,
		PublicPlaybackID: playbackID,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("CreateVideo() failed: %v", err)
	}
	return v
}

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
