package people

import (
	"context"
	"io"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	errClassFull     = "class is full"
	errClassNotFound = "class not found"
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		// QueryTeachers applies AND operation on available TeacherFilter fields.
		// TeacherFilter.Search does a case-insensitive match on one of name, surname, username or email.
		QueryTeachers(ctx context.Context, filter *TeacherFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Teacher, int, error)
		GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeachers(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Student, int, error)
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudents(ctx context.Context, ids []string, exec ...core.DBExecutor) error
		// LockClassSeats locks the class row for the rest of the transaction and returns its occupancy.
		LockClassSeats(ctx context.Context, classID int, exec ...core.DBExecutor) (ClassSeats, error)

		CreateParent(ctx context.Context, prt Parent, exec ...core.DBExecutor) (Parent, error)
		QueryParents(ctx context.Context, filter *ParentFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Parent, int, error)
		GetParent(ctx context.Context, id string, exec ...core.DBExecutor) (Parent, error)
		UpdateParent(ctx context.Context, prt Parent, exec ...core.DBExecutor) (Parent, error)
		DeleteParents(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error)
		QueryTeachers(ctx context.Context, filter *TeacherFilter, ordering []core.DBOrdering, page core.Pagination) ([]Teacher, int, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, id string, nt NewTeacher) (Teacher, error)
		DeleteTeachers(ctx context.Context, ids ...string) error

		CreateStudent(ctx context.Context, ns NewStudent) (Student, error)
		QueryStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering, page core.Pagination) ([]Student, int, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, id string, ns NewStudent) (Student, error)
		DeleteStudents(ctx context.Context, ids ...string) error
		// ImportStudents creates a Student for each valid row of the first sheet of the xlsx workbook read from r.
		ImportStudents(ctx context.Context, r io.Reader) (ImportResult, error)

		CreateParent(ctx context.Context, np NewParent) (Parent, error)
		QueryParents(ctx context.Context, filter *ParentFilter, ordering []core.DBOrdering, page core.Pagination) ([]Parent, int, error)
		GetParent(ctx context.Context, id string) (Parent, error)
		UpdateParent(ctx context.Context, id string, np NewParent) (Parent, error)
		DeleteParents(ctx context.Context, ids ...string) error
	}

	service struct {
		db         core.DB
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Service = (*service)(nil)

// NewService returns the people Service. validate & translator are used to check imported rows.
func NewService(db core.DB, repo Repository, validate *validator.Validate, translator ut.Translator) Service {
	return &service{db: db, repo: repo, validate: validate, translator: translator}
}

func newPerson(np NewPerson, id ...string) Person {
	p := Person{
		ID:       np.ID,
		Username: np.Username,
		Name:     np.Name,
		Surname:  np.Surname,
		Email:    np.Email,
		Phone:    np.Phone,
		Address:  np.Address,
	}
	if len(id) > 0 {
		p.ID = id[0]
	} else {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.CreatedAt = time.Now().UTC()
	}
	return p
}

func (svc *service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	tch := Teacher{
		Person:     newPerson(nt.NewPerson),
		Img:        nt.Img,
		BloodType:  nt.BloodType,
		Sex:        nt.Sex,
		Birthday:   nt.Birthday,
		SubjectIDs: nt.SubjectIDs,
	}
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		tch, err = svc.repo.CreateTeacher(ctx, tch, exec)
		return err
	})
	return tch, errors.Wrap(err, "creating teacher")
}

func (svc *service) QueryTeachers(ctx context.Context, filter *TeacherFilter, ordering []core.DBOrdering, page core.Pagination) ([]Teacher, int, error) {
	return svc.repo.QueryTeachers(ctx, filter, ordering, page)
}

func (svc *service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *service) UpdateTeacher(ctx context.Context, id string, nt NewTeacher) (Teacher, error) {
	tch := Teacher{
		Person:     newPerson(nt.NewPerson, id),
		Img:        nt.Img,
		BloodType:  nt.BloodType,
		Sex:        nt.Sex,
		Birthday:   nt.Birthday,
		SubjectIDs: nt.SubjectIDs,
	}
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		tch, err = svc.repo.UpdateTeacher(ctx, tch, exec)
		return err
	})
	return tch, errors.Wrap(err, "updating teacher")
}

func (svc *service) DeleteTeachers(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTeachers(ctx, ids)
}

// checkSeats makes sure a student can join the class, returning the class grade.
func (svc *service) checkSeats(ctx context.Context, classID int, exec core.DBExecutor) (int, error) {
	seats, err := svc.repo.LockClassSeats(ctx, classID, exec)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return 0, core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: errClassNotFound})
		}
		return 0, errors.Wrap(err, "locking class seats")
	}
	if seats.IsFull() {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: errClassFull})
	}
	return seats.GradeID, nil
}

func (svc *service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	std := Student{
		Person:    newPerson(ns.NewPerson),
		Img:       ns.Img,
		BloodType: ns.BloodType,
		Sex:       ns.Sex,
		Birthday:  ns.Birthday,
		ParentID:  ns.ParentID,
		ClassID:   ns.ClassID,
		GradeID:   ns.GradeID,
	}
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		gradeID, err := svc.checkSeats(ctx, std.ClassID, exec)
		if err != nil {
			return err
		}
		if std.GradeID == 0 {
			std.GradeID = gradeID
		}
		std, err = svc.repo.CreateStudent(ctx, std, exec)
		return err
	})
	return std, errors.Wrap(err, "creating student")
}

func (svc *service) QueryStudents(ctx context.Context, filter *StudentFilter, ordering []core.DBOrdering, page core.Pagination) ([]Student, int, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering, page)
}

func (svc *service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *service) UpdateStudent(ctx context.Context, id string, ns NewStudent) (Student, error) {
	std := Student{
		Person:    newPerson(ns.NewPerson, id),
		Img:       ns.Img,
		BloodType: ns.BloodType,
		Sex:       ns.Sex,
		Birthday:  ns.Birthday,
		ParentID:  ns.ParentID,
		ClassID:   ns.ClassID,
		GradeID:   ns.GradeID,
	}
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		orig, err := svc.repo.GetStudent(ctx, id, exec)
		if err != nil {
			return err
		}
		if orig.ClassID != std.ClassID {
			gradeID, err := svc.checkSeats(ctx, std.ClassID, exec)
			if err != nil {
				return err
			}
			if std.GradeID == 0 {
				std.GradeID = gradeID
			}
		} else if std.GradeID == 0 {
			std.GradeID = orig.GradeID
		}
		std, err = svc.repo.UpdateStudent(ctx, std, exec)
		return err
	})
	return std, errors.Wrap(err, "updating student")
}

func (svc *service) DeleteStudents(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudents(ctx, ids)
}

func (svc *service) CreateParent(ctx context.Context, np NewParent) (Parent, error) {
	prt, err := svc.repo.CreateParent(ctx, Parent{Person: newPerson(np.NewPerson)})
	return prt, errors.Wrap(err, "creating parent")
}

func (svc *service) QueryParents(ctx context.Context, filter *ParentFilter, ordering []core.DBOrdering, page core.Pagination) ([]Parent, int, error) {
	return svc.repo.QueryParents(ctx, filter, ordering, page)
}

func (svc *service) GetParent(ctx context.Context, id string) (Parent, error) {
	return svc.repo.GetParent(ctx, id)
}

func (svc *service) UpdateParent(ctx context.Context, id string, np NewParent) (Parent, error) {
	prt, err := svc.repo.UpdateParent(ctx, Parent{Person: newPerson(np.NewPerson, id)})
	return prt, errors.Wrap(err, "updating parent")
}

func (svc *service) DeleteParents(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteParents(ctx, ids)
}
