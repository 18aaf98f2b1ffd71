package lesson

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
)

// ErrNotFound is returned when no Lesson matches a lookup.
var ErrNotFound = errors.New("lesson not found")

type (
	Repository interface {
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		FilterLessons(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		DeleteLessonsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nl NewLesson) (Lesson, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Lesson, error)
		GetByID(ctx context.Context, id string) (Lesson, error)
		Update(ctx context.Context, id string, ul UpdateLesson) (Lesson, error)
		Delete(ctx context.Context, ids ...string) error
		AttachFile(ctx context.Context, id string, file io.Reader, filename string) (Lesson, error)
	}

	service struct {
		repo     Repository
		mediaSvc core.MediaService
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, mediaSvc core.MediaService) Service {
	return &service{
		repo:     repo,
		mediaSvc: mediaSvc,
	}
}

func (svc *service) Create(ctx context.Context, nl NewLesson) (Lesson, error) {
	now := time.Now().UTC()
	lsn := Lesson{
		ClassroomID: nl.ClassroomID,
		Title:       nl.Title,
		Content:     nl.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateLesson(ctx, lsn)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Lesson, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterLessons(ctx, *filter, ordering...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ul UpdateLesson) (Lesson, error) {
	lsn := Lesson{
		ID:        id,
		Title:     ul.Title,
		Content:   ul.Content,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateLesson(ctx, lsn)
}

// Delete removes lessons and their hosted files.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		lsn, err := svc.repo.GetLessonByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if lsn.FilePublicID != "" {
			if err := svc.mediaSvc.Delete(ctx, lsn.FilePublicID); err != nil {
				return errors.Wrap(err, "deleting lesson file")
			}
		}
	}
	return svc.repo.DeleteLessonsByID(ctx, ids...)
}

// AttachFile uploads the file to the media host and links it to the lesson,
// replacing (and deleting) any previously attached file.
func (svc *service) AttachFile(ctx context.Context, id string, file io.Reader, filename string) (Lesson, error) {
	lsn, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}

	upload, err := svc.mediaSvc.Upload(ctx, file, filename)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "uploading lesson file")
	}
	if lsn.FilePublicID != "" {
		if err := svc.mediaSvc.Delete(ctx, lsn.FilePublicID); err != nil {
			return Lesson{}, errors.Wrap(err, "deleting replaced lesson file")
		}
	}

	lsn.FileURL = upload.URL
	lsn.FilePublicID = upload.PublicID
	lsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, lsn)
}
