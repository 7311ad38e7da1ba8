package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameershelar/toodo/internal/api"
)

type fakeClient struct {
	loggedIn bool
	todos    []*api.Todo
	saved    []*api.Todo
	deleted  []string
	loginErr error
}

func (f *fakeClient) Register(context.Context, string, string) (string, error) { return "u-1", nil }

func (f *fakeClient) Login(_ context.Context, _, password string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = password == "password1"
	if !f.loggedIn {
		return errors.New("unauthorized: invalid email or password")
	}
	return nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.loggedIn = false
	return nil
}

func (f *fakeClient) LoggedIn() bool { return f.loggedIn }

func (f *fakeClient) ListTodos(context.Context) ([]*api.Todo, error) { return f.todos, nil }

func (f *fakeClient) SaveTodo(_ context.Context, t *api.Todo) (*api.Todo, error) {
	f.saved = append(f.saved, t)
	out := *t
	if out.ID == "" {
		out.ID = "t-new"
	}
	return &out, nil
}

func (f *fakeClient) DeleteTodo(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func runScript(t *testing.T, c Client, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(c, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	app.readSecret = nil
	app.Run(context.Background())
	return out.String()
}

func TestSessionFlow(t *testing.T) {
	fc := &fakeClient{todos: []*api.Todo{{ID: "t-1", Title: "milk"}, {ID: "t-2", Title: "eggs", IsComplete: true}}}

	out := runScript(t, fc,
		"help",
		"login", "a@example.com", "password1",
		"help",
		"list",
		"add buy bread",
		"done 1",
		"delete t-2",
		"logout",
		"exit",
	)

	assert.Contains(t, out, "Available commands: register, login, exit")
	assert.Contains(t, out, "Logged in as a@example.com")
	assert.Contains(t, out, "toodo (a@example.com) >")
	assert.Contains(t, out, " 1. [ ] milk")
	assert.Contains(t, out, " 2. [x] eggs")
	assert.Contains(t, out, "Completed: milk")
	assert.Contains(t, out, "Bye!")

	require.Len(t, fc.saved, 2)
	assert.Equal(t, "buy bread", fc.saved[0].Title)
	assert.Equal(t, "t-1", fc.saved[1].ID)
	assert.True(t, fc.saved[1].IsComplete)
	assert.Equal(t, []string{"t-2"}, fc.deleted)
	assert.False(t, fc.loggedIn)
}

func TestFailedLoginKeepsLoopRunning(t *testing.T) {
	fc := &fakeClient{}

	out := runScript(t, fc, "login", "a@example.com", "wrong", "bogus", "exit")

	assert.Contains(t, out, "Error: unauthorized")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.Contains(t, out, "Bye!")
}

func TestUsageErrors(t *testing.T) {
	fc := &fakeClient{loggedIn: true}
	out := runScript(t, fc, "add", "done", "delete", "done 3")

	assert.Contains(t, out, "usage: add <title>")
	assert.Contains(t, out, "usage: done <n|id>")
	assert.Contains(t, out, "usage: delete <n|id>")
	assert.Contains(t, out, "no todo #3")
	assert.Empty(t, fc.saved)
}

func TestREPLStopsOnEOF(t *testing.T) {
	var out bytes.Buffer
	runREPL(context.Background(), NewApp(&fakeClient{}, strings.NewReader(""), &out), func() string { return "" },
		bufio.NewReader(strings.NewReader("")), &out)
	assert.Equal(t, "toodo > ", out.String())
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(&fakeClient{}, strings.NewReader("  a@example.com \r\nlastline"), &out)

	got, err := a.ask("Email")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got)
	assert.Equal(t, "Email: ", out.String())

	got, err = a.ask("Email")
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = a.ask("Email")
	assert.ErrorIs(t, err, io.EOF)
}

func TestAskSecret(t *testing.T) {
	t.Run("piped input keeps spaces", func(t *testing.T) {
		var out bytes.Buffer
		a := NewApp(&fakeClient{}, strings.NewReader(" pass word \n"), &out)
		a.readSecret = nil

		got, err := a.askSecret("Password")
		require.NoError(t, err)
		assert.Equal(t, " pass word ", got)
	})

	t.Run("terminal", func(t *testing.T) {
		var out bytes.Buffer
		a := NewApp(&fakeClient{}, strings.NewReader(""), &out)
		a.readSecret = func() ([]byte, error) { return []byte("s3cret"), nil }

		got, err := a.askSecret("Password")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
		assert.Equal(t, "Password: \n", out.String())

		a.readSecret = func() ([]byte, error) { return nil, errors.New("boom") }
		_, err = a.askSecret("Password")
		assert.EqualError(t, err, "boom")
	})
}
