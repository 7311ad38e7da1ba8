package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context, title string) error
	Done(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Logout(ctx context.Context) error
}

var errUsage = errors.New("usage")

// runREPL reads one command per line and dispatches it to a. Command errors
// are printed and the loop goes on; it ends on EOF or "exit"/"quit".
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, list, add <title>, done <n|id>, delete <n|id>, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "toodo %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), parts[0]))

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: (l)ist, add <title>, done <n>, delete <n>, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "add":
			if arg == "" {
				cmdErr = fmt.Errorf("%w: add <title>", errUsage)
				break
			}
			cmdErr = a.Add(ctx, arg)
		case "done":
			if arg == "" {
				cmdErr = fmt.Errorf("%w: done <n|id>", errUsage)
				break
			}
			cmdErr = a.Done(ctx, arg)
		case "delete", "rm":
			if arg == "" {
				cmdErr = fmt.Errorf("%w: delete <n|id>", errUsage)
				break
			}
			cmdErr = a.Delete(ctx, arg)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", cmdErr)
		}
	}
}
