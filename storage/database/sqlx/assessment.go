package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assessment"
)

var (
	examOrdering = map[string]string{
		"id": "id", "title": "title", "start_time": "start_time", "end_time": "end_time", "lesson_id": "lesson_id",
	}
	assignmentOrdering = map[string]string{
		"id": "id", "title": "title", "start_date": "start_date", "due_date": "due_date", "lesson_id": "lesson_id",
	}
	resultOrdering = map[string]string{"id": "id", "score": "score", "student_id": "student_id"}
)

type assessmentRepository struct {
	baseRepo
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(exec core.DBExecutor) *assessmentRepository {
	return &assessmentRepository{baseRepo{exec: exec}}
}

// filterWork filters exams & assignments; the class & teacher are the lesson's.
func filterWork(b sq.SelectBuilder, filter *assessment.WorkFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.Search != "" {
		b = b.Where(search(filter.Search, "title"))
	}
	if filter.LessonID > 0 {
		b = b.Where(sq.Eq{"lesson_id": filter.LessonID})
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Expr("lesson_id IN (SELECT id FROM lessons WHERE class_id = ?)", filter.ClassID))
	}
	if filter.TeacherID != "" {
		b = b.Where(sq.Expr("lesson_id IN (SELECT id FROM lessons WHERE teacher_id = ?)", filter.TeacherID))
	}
	return b
}

// exams

var examColumns = []string{"id", "title", "start_time", "end_time", "lesson_id"}

func (repo assessmentRepository) CreateExam(ctx context.Context, exm assessment.Exam, exec ...core.DBExecutor) (assessment.Exam, error) {
	q := psql.Insert("exams").
		Columns("title", "start_time", "end_time", "lesson_id").
		Values(exm.Title, exm.StartTime.UTC(), exm.EndTime.UTC(), exm.LessonID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &exm.ID, q); err != nil {
		return assessment.Exam{}, trapWriteErr(err, "inserting exam")
	}
	return exm, nil
}

func (repo assessmentRepository) QueryExams(
	ctx context.Context,
	filter *assessment.WorkFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]assessment.Exam, int, error) {
	list := orderBy(filterWork(psql.Select(examColumns...).From("exams"), filter), ordering, examOrdering, "start_time DESC", "id")
	cnt := filterWork(psql.Select("COUNT(*)").From("exams"), filter)

	exams := make([]assessment.Exam, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &exams, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying exams")
	}
	return exams, total, nil
}

func (repo assessmentRepository) GetExam(ctx context.Context, id int, exec ...core.DBExecutor) (assessment.Exam, error) {
	var exm assessment.Exam
	if err := getOne(ctx, repo.getExec(exec), &exm, psql.Select(examColumns...).From("exams").Where(sq.Eq{"id": id})); err != nil {
		return assessment.Exam{}, trapNoRowsErr(err, "getting exam")
	}
	return exm, nil
}

func (repo assessmentRepository) UpdateExam(ctx context.Context, exm assessment.Exam, exec ...core.DBExecutor) (assessment.Exam, error) {
	q := psql.Update("exams").
		SetMap(map[string]interface{}{
			"title":      exm.Title,
			"start_time": exm.StartTime.UTC(),
			"end_time":   exm.EndTime.UTC(),
			"lesson_id":  exm.LessonID,
		}).
		Where(sq.Eq{"id": exm.ID}).
		Suffix("RETURNING " + joinColumns(examColumns))
	var updated assessment.Exam
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return assessment.Exam{}, trapNoRowsErr(err, "updating exam")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteExams(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("exams").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting exams")
}

// assignments

var assignmentColumns = []string{"id", "title", "start_date", "due_date", "lesson_id"}

func (repo assessmentRepository) CreateAssignment(ctx context.Context, asg assessment.Assignment, exec ...core.DBExecutor) (assessment.Assignment, error) {
	q := psql.Insert("assignments").
		Columns("title", "start_date", "due_date", "lesson_id").
		Values(asg.Title, asg.StartDate.UTC(), asg.DueDate.UTC(), asg.LessonID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &asg.ID, q); err != nil {
		return assessment.Assignment{}, trapWriteErr(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assessmentRepository) QueryAssignments(
	ctx context.Context,
	filter *assessment.WorkFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]assessment.Assignment, int, error) {
	list := orderBy(filterWork(psql.Select(assignmentColumns...).From("assignments"), filter), ordering, assignmentOrdering, "due_date DESC", "id")
	cnt := filterWork(psql.Select("COUNT(*)").From("assignments"), filter)

	assignments := make([]assessment.Assignment, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &assignments, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying assignments")
	}
	return assignments, total, nil
}

func (repo assessmentRepository) GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (assessment.Assignment, error) {
	var asg assessment.Assignment
	q := psql.Select(assignmentColumns...).From("assignments").Where(sq.Eq{"id": id})
	if err := getOne(ctx, repo.getExec(exec), &asg, q); err != nil {
		return assessment.Assignment{}, trapNoRowsErr(err, "getting assignment")
	}
	return asg, nil
}

func (repo assessmentRepository) UpdateAssignment(ctx context.Context, asg assessment.Assignment, exec ...core.DBExecutor) (assessment.Assignment, error) {
	q := psql.Update("assignments").
		SetMap(map[string]interface{}{
			"title":      asg.Title,
			"start_date": asg.StartDate.UTC(),
			"due_date":   asg.DueDate.UTC(),
			"lesson_id":  asg.LessonID,
		}).
		Where(sq.Eq{"id": asg.ID}).
		Suffix("RETURNING " + joinColumns(assignmentColumns))
	var updated assessment.Assignment
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return assessment.Assignment{}, trapNoRowsErr(err, "updating assignment")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteAssignments(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("assignments").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting assignments")
}

// results

var resultColumns = []string{"id", "score", "exam_id", "assignment_id", "student_id"}

func filterResults(b sq.SelectBuilder, filter *assessment.ResultFilter) sq.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.StudentID != "" {
		b = b.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if filter.ExamID > 0 {
		b = b.Where(sq.Eq{"exam_id": filter.ExamID})
	}
	if filter.AssignmentID > 0 {
		b = b.Where(sq.Eq{"assignment_id": filter.AssignmentID})
	}
	if filter.ClassID > 0 {
		b = b.Where(sq.Expr("student_id IN (SELECT id FROM students WHERE class_id = ?)", filter.ClassID))
	}
	return b
}

func (repo assessmentRepository) CreateResult(ctx context.Context, res assessment.Result, exec ...core.DBExecutor) (assessment.Result, error) {
	q := psql.Insert("results").
		Columns("score", "exam_id", "assignment_id", "student_id").
		Values(res.Score, res.ExamID, res.AssignmentID, res.StudentID).
		Suffix("RETURNING id")
	if err := getOne(ctx, repo.getExec(exec), &res.ID, q); err != nil {
		return assessment.Result{}, trapWriteErr(err, "inserting result")
	}
	return res, nil
}

func (repo assessmentRepository) QueryResults(
	ctx context.Context,
	filter *assessment.ResultFilter,
	ordering []core.DBOrdering,
	page core.Pagination,
	exec ...core.DBExecutor,
) ([]assessment.Result, int, error) {
	list := orderBy(filterResults(psql.Select(resultColumns...).From("results"), filter), ordering, resultOrdering, "id")
	cnt := filterResults(psql.Select("COUNT(*)").From("results"), filter)

	results := make([]assessment.Result, 0)
	total, err := queryPage(ctx, repo.getExec(exec), &results, list, cnt, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying results")
	}
	return results, total, nil
}

func (repo assessmentRepository) GetResult(ctx context.Context, id int, exec ...core.DBExecutor) (assessment.Result, error) {
	var res assessment.Result
	if err := getOne(ctx, repo.getExec(exec), &res, psql.Select(resultColumns...).From("results").Where(sq.Eq{"id": id})); err != nil {
		return assessment.Result{}, trapNoRowsErr(err, "getting result")
	}
	return res, nil
}

func (repo assessmentRepository) UpdateResult(ctx context.Context, res assessment.Result, exec ...core.DBExecutor) (assessment.Result, error) {
	q := psql.Update("results").
		SetMap(map[string]interface{}{
			"score":         res.Score,
			"exam_id":       res.ExamID,
			"assignment_id": res.AssignmentID,
			"student_id":    res.StudentID,
		}).
		Where(sq.Eq{"id": res.ID}).
		Suffix("RETURNING " + joinColumns(resultColumns))
	var updated assessment.Result
	if err := getOne(ctx, repo.getExec(exec), &updated, q); err != nil {
		return assessment.Result{}, trapNoRowsErr(err, "updating result")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteResults(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, repo.getExec(exec), psql.Delete("results").Where(sq.Eq{"id": ids}))
	return trapDeleteErr(err, "deleting results")
}
