package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/report"
)

type reportStub struct {
	report.Service
	params report.Params
}

func (s *reportStub) Export(_ context.Context, params report.Params) (report.File, error) {
	s.params = params
	if params.Type != report.TypeClasses {
		return report.File{}, report.ErrInvalidType
	}
	return report.File{Name: "ClassReport.xlsx", Title: "Class Report", Rows: 2, Content: []byte("xlsx")}, nil
}

type peopleStub struct {
	people.Service
	content []byte
}

func (s *peopleStub) ImportStudents(_ context.Context, r io.Reader) (people.ImportResult, error) {
	var err error
	s.content, err = ioutil.ReadAll(r)
	return people.ImportResult{
		Imported: []people.Student{{}},
		Failed:   []people.RowError{{Row: 3, Errors: map[string]string{"class_id": "class is full"}}},
	}, err
}

func setup() (*commandLine, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return &commandLine{peopleSvc: new(peopleStub), reportSvc: new(reportStub), out: out}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup()
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup()

	migrateFunc = func(_ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}

func Test_commandLine_exportReport(t *testing.T) {
	cli, out := setup()
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.xlsx")

	runCLITests(t, cli, []cliTest{
		{name: "no type", args: []string{"report"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"report", "-lol"}, wantErr: errHelp},
		{name: "bad date", args: []string{"report", "-type", "classes", "-from", "lol"}, wantErrStr: "-from: must be an RFC3339 timestamp or a YYYY-MM-DD date"},
		{name: "bad present", args: []string{"report", "-type", "classes", "-present", "lol"}, wantErrStr: `-present: strconv.ParseBool: parsing "lol": invalid syntax`},
		{name: "invalid type", args: []string{"report", "-type", "lol"}, wantErrStr: "exporting report: Invalid report type"},
		{name: "export", args: []string{"report", "-type", "classes", "-from", "2021-03-01", "-class", "2", "-grade", "3", "-present", "true", "-out", path}},
	})

	stub := cli.reportSvc.(*reportStub)
	assert.Equal(t, 2, stub.params.ClassID)
	assert.Equal(t, 3, stub.params.GradeID)
	assert.True(t, stub.params.StartDate.DateOnly)
	require.NotNil(t, stub.params.Present)
	assert.True(t, *stub.params.Present)

	content, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(content))
	assert.Contains(t, out.String(), "Class Report: 2 rows written to "+path)
}

func Test_commandLine_importStudents(t *testing.T) {
	cli, out := setup()
	path := filepath.Join(t.TempDir(), "students.xlsx")
	require.NoError(t, ioutil.WriteFile(path, []byte("workbook"), 0600))

	runCLITests(t, cli, []cliTest{
		{name: "no file", args: []string{"importstudents"}, wantErr: errHelp},
		{name: "import", args: []string{"importstudents", "-file", path}},
	})

	assert.Equal(t, "workbook", string(cli.peopleSvc.(*peopleStub).content))
	assert.Contains(t, out.String(), "1 students imported, 1 rows failed")
	assert.Contains(t, out.String(), "row 3: map[class_id:class is full]")

	err := cli.run([]string{"admin", "importstudents", "-file", filepath.Join(t.TempDir(), "ghost.xlsx")})
	assert.Error(t, err)
}
