// Package inmemdb implements the repositories in memory. It backs the tests and `-inmem` runs.
package inmemdb

import (
	"sync"

	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
)

type DB struct {
	mutex sync.RWMutex

	users   map[string]*user.User
	courses map[int]*course.Course // Lessons are not stored on the course
	lessons map[int]*course.Lesson // Video is not stored on the lesson
	videos  map[string]*video.Video

	coursePK int
	lessonPK int
}

func Open() *DB {
	return &DB{
		users:   make(map[string]*user.User),
		courses: make(map[int]*course.Course),
		lessons: make(map[int]*course.Lesson),
		videos:  make(map[string]*video.Video),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.courses = make(map[int]*course.Course)
	db.lessons = make(map[int]*course.Lesson)
	db.videos = make(map[string]*video.Video)
}
