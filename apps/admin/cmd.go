package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/report"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sqlx.DB
	peopleSvc people.Service
	reportSvc report.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a database migration command (up, down, status, redo, ...)")
	_, _ = fmt.Fprintln(cli.out, "  report -type TYPE [-from DATE] [-to DATE] [-class ID] [-grade ID] [-student ID] [-teacher ID] [-lesson ID] [-present BOOL] [-out FILE]")
	_, _ = fmt.Fprintln(cli.out, "      - export a report workbook")
	_, _ = fmt.Fprintln(cli.out, "  importstudents -file FILE - create students from the rows of an xlsx workbook")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "report":
		return cli.exportReport(args[2:])
	case "importstudents":
		return cli.importStudents(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
