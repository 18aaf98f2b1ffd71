package submission

import (
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("submission not found")
	ErrNotEnrolled   = errors.New("student is not enrolled in this assignment's classroom")
	ErrAlreadyExists = errors.New("a submission for this assignment already exists")
	ErrNotOwner      = errors.New("assignment does not belong to this teacher")
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		FilterSubmissions(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		DeleteSubmissionsByID(ctx context.Context, ids ...string) error

		// cross-entity lookups backing the enrollment and ownership checks
		IsStudentEnrolled(ctx context.Context, assignmentID, studentID string) (bool, error)
		GetAssignmentTeacher(ctx context.Context, assignmentID string) (user.User, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewSubmission, student user.User) (Submission, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Submission, error)
		GetByID(ctx context.Context, id string) (Submission, error)
		Grade(ctx context.Context, id string, gs GradeSubmission, actingUsr user.User) (Submission, error)
		Delete(ctx context.Context, ids ...string) error
		AttachFile(ctx context.Context, id string, file io.Reader, filename string) (Submission, error)
	}

	service struct {
		repo     Repository
		mediaSvc core.MediaService
		mailSvc  core.EmailService
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, mediaSvc core.MediaService, mailSvc core.EmailService) Service {
	return &service{
		repo:     repo,
		mediaSvc: mediaSvc,
		mailSvc:  mailSvc,
	}
}

// Create records a student's submission and notifies the assignment's teacher.
func (svc *service) Create(ctx context.Context, ns NewSubmission, student user.User) (Submission, error) {
	enrolled, err := svc.repo.IsStudentEnrolled(ctx, ns.AssignmentID, student.ID)
	if err != nil {
		return Submission{}, err
	}
	if !enrolled {
		return Submission{}, ErrNotEnrolled
	}

	now := time.Now().UTC()
	sub := Submission{
		AssignmentID: ns.AssignmentID,
		StudentID:    student.ID,
		Comment:      ns.Comment,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sub, err = svc.repo.CreateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}

	if teacher, err := svc.repo.GetAssignmentTeacher(ctx, ns.AssignmentID); err == nil {
		go svc.sendSubmissionReceivedMail(teacher, student, sub)
	}
	return sub, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Submission, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterSubmissions(ctx, *filter, ordering...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

// Grade records the grade and feedback; only the owning teacher (or an admin) may grade.
func (svc *service) Grade(ctx context.Context, id string, gs GradeSubmission, actingUsr user.User) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	teacher, err := svc.repo.GetAssignmentTeacher(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if teacher.ID != actingUsr.ID && !actingUsr.IsAdmin() {
		return Submission{}, ErrNotOwner
	}

	sub.Grade = gs.Grade
	if gs.Comment != "" {
		sub.Comment = gs.Comment
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubmission(ctx, sub)
}

// Delete removes submissions and their hosted files.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		sub, err := svc.repo.GetSubmissionByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if sub.FilePublicID != "" {
			if err := svc.mediaSvc.Delete(ctx, sub.FilePublicID); err != nil {
				return errors.Wrap(err, "deleting submission file")
			}
		}
	}
	return svc.repo.DeleteSubmissionsByID(ctx, ids...)
}

// AttachFile uploads the file to the media host and links it to the submission,
// replacing (and deleting) any previously attached file.
func (svc *service) AttachFile(ctx context.Context, id string, file io.Reader, filename string) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	upload, err := svc.mediaSvc.Upload(ctx, file, filename)
	if err != nil {
		return Submission{}, errors.Wrap(err, "uploading submission file")
	}
	if sub.FilePublicID != "" {
		if err := svc.mediaSvc.Delete(ctx, sub.FilePublicID); err != nil {
			return Submission{}, errors.Wrap(err, "deleting replaced submission file")
		}
	}

	sub.FileURL = upload.URL
	sub.FilePublicID = upload.PublicID
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *service) sendSubmissionReceivedMail(teacher, student user.User, sub Submission) {
	data := struct {
		Teacher    user.User
		Student    user.User
		Submission Submission
	}{
		Teacher:    teacher,
		Student:    student,
		Submission: sub,
	}
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
			Subject:      "New Submission Received",
			TemplateName: "submission-received",
			TemplateData: data,
		},
	)
}
