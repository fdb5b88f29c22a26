package people

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
)

// ImportColumns is the expected column order of a students import sheet.
var ImportColumns = []string{
	"username", "name", "surname", "email", "phone", "address",
	"blood_type", "sex", "birthday", "parent_id", "class_id",
}

var errNoSheet = core.NewValidationError(errors.New("the workbook does not contain any sheet"))

type (
	RowError struct {
		Row    int               `json:"row"` // 1-based, header included
		Errors map[string]string `json:"errors"`
	}

	ImportResult struct {
		Imported []Student  `json:"imported"`
		Failed   []RowError `json:"failed"`
	}
)

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseStudentRow maps a sheet row onto a NewStudent, following ImportColumns.
func parseStudentRow(row []string) (NewStudent, map[string]string) {
	fldErrs := make(map[string]string)
	ns := NewStudent{
		NewPerson: NewPerson{
			Username: cell(row, 0),
			Name:     cell(row, 1),
			Surname:  cell(row, 2),
			Email:    null.NewString(cell(row, 3), cell(row, 3) != ""),
			Phone:    null.NewString(cell(row, 4), cell(row, 4) != ""),
			Address:  cell(row, 5),
		},
		BloodType: strings.ToUpper(cell(row, 6)),
		Sex:       strings.ToUpper(cell(row, 7)),
		ParentID:  cell(row, 9),
	}
	if s := cell(row, 8); s != "" {
		bday, err := time.Parse("2006-01-02", s)
		if err != nil {
			fldErrs["birthday"] = "must be a date formatted as YYYY-MM-DD"
		}
		ns.Birthday = bday
	}
	if s := cell(row, 10); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			fldErrs["class_id"] = "must be a number"
		}
		ns.ClassID = id
	}
	return ns, fldErrs
}

func (svc *service) ImportStudents(ctx context.Context, r io.Reader) (ImportResult, error) {
	result := ImportResult{Imported: []Student{}, Failed: []RowError{}}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, core.NewValidationError(errors.Wrap(err, "opening workbook"))
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return result, errNoSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return result, errors.Wrap(err, fmt.Sprintf("reading rows of sheet %q", sheet))
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(strings.Join(row, "")) == 0 {
			continue // blank row
		}

		ns, fldErrs := parseStudentRow(row)
		if len(fldErrs) > 0 {
			result.Failed = append(result.Failed, RowError{Row: i + 1, Errors: fldErrs})
			continue
		}
		if err = ns.Validate(svc.validate); err != nil {
			result.Failed = append(result.Failed, RowError{Row: i + 1, Errors: core.FieldErrors(err, svc.translator)})
			continue
		}
		std, err := svc.CreateStudent(ctx, ns)
		if err != nil {
			if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
				return result, errors.Wrap(err, fmt.Sprintf("importing row %d", i+1))
			}
			result.Failed = append(result.Failed, RowError{Row: i + 1, Errors: core.FieldErrors(err, svc.translator)})
			continue
		}
		result.Imported = append(result.Imported, std)
	}
	return result, nil
}
