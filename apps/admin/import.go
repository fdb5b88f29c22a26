package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) importStudents(args []string) error {
	cmd := flag.NewFlagSet("importstudents", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	path := cmd.String("file", "", "The xlsx workbook. Its first sheet must list students in the import column order.")

	if err := cmd.Parse(args); err != nil {
		return errHelp
	}
	if *path == "" {
		cmd.Usage()
		return errHelp
	}

	f, err := os.Open(*path)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	result, err := cli.peopleSvc.ImportStudents(context.Background(), f)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}

	_, _ = fmt.Fprintf(cli.out, "%d students imported, %d rows failed\n", len(result.Imported), len(result.Failed))
	for _, rowErr := range result.Failed {
		_, _ = fmt.Fprintf(cli.out, "  row %d: %v\n", rowErr.Row, rowErr.Errors)
	}
	return nil
}
