package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/trezcool/masomo-calendar/core/session"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	db      *sql.DB
	engine  string
	svc     *session.Service
	in      io.Reader
	out     io.Writer
	stdinFd int
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  deletesession -id ID [-scope this-session|this-session-onwards|all-sessions] [-yes] - delete sessions")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	deleteSessionCmd := flag.NewFlagSet("deletesession", flag.ContinueOnError)
	deleteSessionCmd.SetOutput(cli.out)
	deleteSessionID := deleteSessionCmd.String("id", "", "The id of the session to delete.")
	deleteSessionScope := deleteSessionCmd.String("scope", session.ThisOnly.String(), "Which sessions of the series to delete.")
	deleteSessionYes := deleteSessionCmd.Bool("yes", false, "Do not ask for confirmation.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "deletesession":
		if err := deleteSessionCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteSessionID == "" {
			deleteSessionCmd.Usage()
			return errHelp
		}
		scope, err := session.ParseScope(*deleteSessionScope)
		if err != nil {
			return err
		}
		return cli.deleteSession(*deleteSessionID, scope, *deleteSessionYes)
	default:
		cli.printUsage()
		return errHelp
	}
}
