package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/guard"
	"github.com/dmitrijs2005/notehub/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// homeView is where admin-only views redirect to.
const homeView = "home"

// command is a view or action reachable from the prompt.
type command struct {
	req   guard.Requirement
	usage string
	run   func(ctx context.Context, args []string) error
}

type invocation struct {
	name string
	args []string
}

// shell dispatches prompt lines to commands, gating each one through the
// route guard.
type shell struct {
	commands map[string]command
	state    func() session.State
	failed   *invocation
}

func newShell(state func() session.State) *shell {
	return &shell{commands: make(map[string]command), state: state}
}

func (s *shell) handle(name string, req guard.Requirement, usage string, run func(ctx context.Context, args []string) error) {
	s.commands[name] = command{req: req, usage: usage, run: run}
}

// dispatch runs one command. It reports false when the user asked to quit.
func (s *shell) dispatch(ctx context.Context, name string, args []string) bool {
	switch name {
	case "exit", "quit":
		printlnFn("Bye!")
		return false
	case "help":
		s.help()
		return true
	case "retry":
		if s.failed == nil {
			printlnFn("Nothing to retry")
			return true
		}
		inv := *s.failed
		return s.dispatch(ctx, inv.name, inv.args)
	}

	cmd, ok := s.commands[name]
	if !ok {
		printlnFn("Unknown command:", name)
		return true
	}

	st := s.state()
	switch guard.Evaluate(st, cmd.req) {
	case guard.Spinner:
		printlnFn("Checking your session, try again in a moment...")
	case guard.RedirectSignIn:
		if st.Err != nil {
			printlnFn("Error:", client.Message(st.Err))
		}
		printlnFn("Please sign in first: use 'signin' or 'admin-login'")
	case guard.RedirectHome:
		printlnFn("That view is for admins only")
		if home, ok := s.commands[homeView]; ok && name != homeView {
			s.run(ctx, homeView, nil, home)
		}
	case guard.Render:
		s.run(ctx, name, args, cmd)
	}
	return true
}

func (s *shell) run(ctx context.Context, name string, args []string, cmd command) {
	err := cmd.run(ctx, args)
	switch {
	case err == nil:
		if s.failed != nil && s.failed.name == name {
			s.failed = nil
		}
	case errors.Is(err, session.ErrSignInCancelled):
		printlnFn("Sign-in cancelled")
	default:
		printlnFn("Error:", client.Message(err))
		s.failed = &invocation{name: name, args: args}
		printlnFn("Type 'retry' to try again")
	}
}

func (s *shell) help() {
	st := s.state()
	names := make([]string, 0, len(s.commands))
	for name, cmd := range s.commands {
		if guard.Evaluate(st, cmd.req) == guard.Render {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	printlnFn("Available commands:")
	for _, name := range names {
		printlnFn("  " + s.commands[name].usage)
	}
	printlnFn("  retry | help | exit")
}

// runREPL starts a simple read–eval–print loop for the notehub CLI.
//
// It reads a line from reader, parses the first token as the command and
// the rest as its arguments, and dispatches through the shell. Commands
// prompt for further input on the same reader. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn). Command errors are
// printed as one message and remembered so "retry" can re-run the command;
// they never stop the loop.
func runREPL(ctx context.Context, s *shell, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("notehub %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if !s.dispatch(ctx, parts[0], parts[1:]) {
			return
		}
	}
}
