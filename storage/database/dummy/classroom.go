package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/user"
)

type classroomRepository struct {
	db    *classroomTable
	users *userTable
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db.classroom, users: db.user}
}

// load copies the stored classroom with its enrolled set attached.
// callers must hold at least a read lock.
func (repo *classroomRepository) load(room *classroom.Classroom) classroom.Classroom {
	loaded := *room
	loaded.StudentIDs = repo.studentIDs(room.ID)
	return loaded
}

func (repo *classroomRepository) studentIDs(classroomID string) []string {
	ids := make([]string, 0, len(repo.db.byRoom[classroomID]))
	for id := range repo.db.byRoom[classroomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (repo *classroomRepository) query() []classroom.Classroom {
	rooms := make([]classroom.Classroom, 0, len(repo.db.table))
	for _, room := range repo.db.table {
		rooms = append(rooms, repo.load(room))
	}
	return rooms
}

func (repo *classroomRepository) CheckTitleUniqueness(ctx context.Context, title, teacherID string, excludedRooms ...classroom.Classroom) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, room := range repo.db.table {
		if room.TeacherID != teacherID || !strings.EqualFold(room.Title, title) {
			continue
		}
		excluded := false
		for _, excl := range excludedRooms {
			if excl.ID == room.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return classroom.ErrTitleExists
		}
	}
	return nil
}

func (repo *classroomRepository) ClassroomCodeExists(ctx context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, room := range repo.db.table {
		if room.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, room classroom.Classroom) (classroom.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// unique code backstop, same guarantee as the DB index
	for _, existing := range repo.db.table {
		if existing.Code == room.Code {
			return classroom.Classroom{}, classroom.ErrCodeExhausted
		}
	}

	room.ID = uuid.NewString()
	repo.db.table[room.ID] = &room
	return repo.load(&room), nil
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, filter classroom.GetFilter) (classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	switch {
	case filter.ID != "":
		if room, ok := repo.db.table[filter.ID]; ok {
			return repo.load(room), nil
		}
	case filter.Code != "":
		for _, room := range repo.db.table {
			if room.Code == filter.Code {
				return repo.load(room), nil
			}
		}
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) FilterClassrooms(ctx context.Context, filter classroom.QueryFilter, ordering ...core.DBOrdering) ([]classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rooms := repo.query()

	if filter.Search != "" {
		var filtered []classroom.Classroom
		for _, room := range rooms {
			if strings.Contains(strings.ToLower(room.Title), strings.ToLower(filter.Search)) {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}
	if rooms != nil && filter.TeacherID != "" {
		var filtered []classroom.Classroom
		for _, room := range rooms {
			if room.TeacherID == filter.TeacherID {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}
	if rooms != nil && filter.StudentID != "" {
		var filtered []classroom.Classroom
		for _, room := range rooms {
			if _, ok := repo.db.byStudent[filter.StudentID][room.ID]; ok {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}
	if rooms != nil && !filter.CreatedFrom.IsZero() {
		var filtered []classroom.Classroom
		timeUTC := filter.CreatedFrom.UTC()
		for _, room := range rooms {
			if room.CreatedAt.Equal(timeUTC) || room.CreatedAt.After(timeUTC) {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}
	if rooms != nil && !filter.CreatedTo.IsZero() {
		var filtered []classroom.Classroom
		timeUTC := filter.CreatedTo.UTC()
		for _, room := range rooms {
			if room.CreatedAt.Before(timeUTC) || room.CreatedAt.Equal(timeUTC) {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	return rooms, nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, room classroom.Classroom) (classroom.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields; the code is immutable
	origRoom, ok := repo.db.table[room.ID]
	if !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	if room.Title != "" {
		origRoom.Title = room.Title
	}
	origRoom.Description = room.Description
	origRoom.UpdatedAt = room.UpdatedAt

	repo.db.table[room.ID] = origRoom
	return repo.load(origRoom), nil
}

func (repo *classroomRepository) DeleteClassroomsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		for studentID := range repo.db.byRoom[id] {
			delete(repo.db.byStudent[studentID], id)
		}
		delete(repo.db.byRoom, id)
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *classroomRepository) AddStudent(ctx context.Context, classroomID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[classroomID]; !ok {
		return classroom.ErrNotFound
	}
	if _, ok := repo.db.byRoom[classroomID][studentID]; ok {
		return classroom.ErrAlreadyEnrolled
	}

	// both sides change under the same lock
	if repo.db.byRoom[classroomID] == nil {
		repo.db.byRoom[classroomID] = make(map[string]struct{})
	}
	if repo.db.byStudent[studentID] == nil {
		repo.db.byStudent[studentID] = make(map[string]struct{})
	}
	repo.db.byRoom[classroomID][studentID] = struct{}{}
	repo.db.byStudent[studentID][classroomID] = struct{}{}
	return nil
}

func (repo *classroomRepository) RemoveStudent(ctx context.Context, classroomID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[classroomID]; !ok {
		return classroom.ErrNotFound
	}
	if _, ok := repo.db.byRoom[classroomID][studentID]; !ok {
		return classroom.ErrNotEnrolled
	}

	delete(repo.db.byRoom[classroomID], studentID)
	delete(repo.db.byStudent[studentID], classroomID)
	return nil
}

func (repo *classroomRepository) HasStudent(ctx context.Context, classroomID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.byRoom[classroomID][studentID]
	return ok, nil
}

func (repo *classroomRepository) GetStudents(ctx context.Context, classroomID string) ([]user.User, error) {
	repo.db.RLock()
	ids := repo.studentIDs(classroomID)
	repo.db.RUnlock()

	repo.users.RLock()
	defer repo.users.RUnlock()

	students := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if usr, ok := repo.users.table[id]; ok {
			students = append(students, *usr)
		}
	}
	return students, nil
}

func (repo *classroomRepository) ClearStudents(ctx context.Context, classroomID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for studentID := range repo.db.byRoom[classroomID] {
		delete(repo.db.byStudent[studentID], classroomID)
	}
	delete(repo.db.byRoom, classroomID)
	return nil
}
