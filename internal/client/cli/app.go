// Package cli implements the interactive toodo client.
package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/sameershelar/toodo/internal/api"
)

// Client is what the CLI needs from the toodo service.
type Client interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	ListTodos(ctx context.Context) ([]*api.Todo, error)
	SaveTodo(ctx context.Context, t *api.Todo) (*api.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

type App struct {
	client Client
	reader *bufio.Reader
	out    io.Writer
	email  string

	readSecret func() ([]byte, error)

	// last listing, so users can refer to todos by position
	listed []*api.Todo
}

func NewApp(c Client, in io.Reader, out io.Writer) *App {
	return &App{client: c, reader: bufio.NewReader(in), out: out, readSecret: stdinSecret()}
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() && a.email != "" {
		return "(" + a.email + ") "
	}
	return ""
}

// Run reads commands until EOF or "exit".
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to toodo (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}
