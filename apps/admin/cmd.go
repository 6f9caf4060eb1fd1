package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/services/apiclient"
)

var (
	newAPIClientFunc = func(baseURL, token string) (courseDeleter, error) { // mockable
		return apiclient.New(baseURL, token)
	}

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sql.DB
	validate   *validator.Validate
	translator ut.Translator
	usrSvc     user.Service
	in         io.Reader
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command (up, down, status, version...)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-name NAME] - pre-register an author")
	fmt.Fprintln(cli.out, "  token -email EMAIL - print a session token for the API")
	fmt.Fprintln(cli.out, "  deletecourse -id ID -url URL -email EMAIL [-yes] - delete a course through the API")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The author's email, as known by Google.")
	addUserName := addUserCmd.String("name", "", "The author's display name.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenEmail := tokenCmd.String("email", "", "The author's email.")

	deleteCourseCmd := flag.NewFlagSet("deletecourse", flag.ContinueOnError)
	deleteCourseID := deleteCourseCmd.Int("id", 0, "The course id.")
	deleteCourseURL := deleteCourseCmd.String("url", "", "The base URL of the running server, e.g. http://localhost:8000")
	deleteCourseEmail := deleteCourseCmd.String("email", "", "The email of the course's author.")
	deleteCourseYes := deleteCourseCmd.Bool("yes", false, "Skip the confirmation.")

	for _, fs := range []*flag.FlagSet{addUserCmd, tokenCmd, deleteCourseCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		usr, err := cli.addUser(*addUserName, *addUserEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "author %s registered (%s)\n", usr.Email, usr.ID)
		return nil
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		token, err := cli.token(*tokenEmail)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, token)
		return nil
	case "deletecourse":
		if err := deleteCourseCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteCourseID <= 0 || *deleteCourseURL == "" || *deleteCourseEmail == "" {
			deleteCourseCmd.Usage()
			return errHelp
		}
		return cli.deleteCourse(*deleteCourseID, *deleteCourseURL, *deleteCourseEmail, *deleteCourseYes)
	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a y/N question; anything but y or yes is a no.
func (cli *commandLine) confirm(question string) bool {
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(cli.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}
