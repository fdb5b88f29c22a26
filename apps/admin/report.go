package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/report"
)

func (cli *commandLine) exportReport(args []string) error {
	cmd := flag.NewFlagSet("report", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	typ := cmd.String("type", "", "The report type, see `GET /v1/reports/types`.")
	from := cmd.String("from", "", "Start date: YYYY-MM-DD or RFC3339.")
	to := cmd.String("to", "", "End date: YYYY-MM-DD (whole day) or RFC3339.")
	classID := cmd.Int("class", 0, "Class ID.")
	gradeID := cmd.Int("grade", 0, "Grade ID.")
	studentID := cmd.String("student", "", "Student ID.")
	teacherID := cmd.String("teacher", "", "Teacher ID.")
	lessonID := cmd.Int("lesson", 0, "Lesson ID.")
	present := cmd.String("present", "", "Attendance status: true or false.")
	out := cmd.String("out", "", "Output file. Defaults to the report file name.")

	if err := cmd.Parse(args); err != nil {
		return errHelp
	}
	if *typ == "" {
		cmd.Usage()
		return errHelp
	}

	params := report.Params{
		Type:      report.Type(*typ),
		ClassID:   *classID,
		GradeID:   *gradeID,
		StudentID: *studentID,
		TeacherID: *teacherID,
		LessonID:  *lessonID,
	}
	var err error
	if params.StartDate, err = report.ParseDate(*from); err != nil {
		return errors.Wrap(err, "-from")
	}
	if params.EndDate, err = report.ParseDate(*to); err != nil {
		return errors.Wrap(err, "-to")
	}
	if *present != "" {
		b, err := strconv.ParseBool(*present)
		if err != nil {
			return errors.Wrap(err, "-present")
		}
		params.Present = &b
	}

	file, err := cli.reportSvc.Export(context.Background(), params)
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}

	path := *out
	if path == "" {
		path = file.Name
	}
	if err = ioutil.WriteFile(path, file.Content, 0644); err != nil {
		return errors.Wrap(err, "writing report")
	}
	_, _ = fmt.Fprintf(cli.out, "%s: %d rows written to %s\n", file.Title, file.Rows, path)
	return nil
}
