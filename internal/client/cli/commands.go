package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sameershelar/toodo/internal/api"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) credentials() (string, string, error) {
	email, err := a.ask("Email")
	if err != nil {
		return "", "", err
	}
	password, err := a.askSecret("Password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.client.Register(ctx, email, password); err != nil {
		return err
	}
	a.println("Registered. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, email, password); err != nil {
		return err
	}
	a.email = email
	a.println("Logged in as", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.email = ""
	a.listed = nil
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.client.ListTodos(ctx)
	if err != nil {
		return err
	}
	a.listed = items
	if len(items) == 0 {
		a.println("Nothing to do.")
		return nil
	}
	for i, t := range items {
		mark := " "
		if t.IsComplete {
			mark = "x"
		}
		fmt.Fprintf(a.out, "%2d. [%s] %s\n", i+1, mark, t.Title)
	}
	return nil
}

func (a *App) Add(ctx context.Context, title string) error {
	t, err := a.client.SaveTodo(ctx, &api.Todo{Title: title})
	if err != nil {
		return err
	}
	a.println("Added", t.ID)
	return nil
}

func (a *App) Done(ctx context.Context, ref string) error {
	t, err := a.resolve(ref)
	if err != nil {
		return err
	}
	updated := *t
	updated.IsComplete = true
	if _, err := a.client.SaveTodo(ctx, &updated); err != nil {
		return err
	}
	t.IsComplete = true
	a.println("Completed:", t.Title)
	return nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	id := ref
	if t, err := a.resolve(ref); err == nil {
		id = t.ID
	}
	if err := a.client.DeleteTodo(ctx, id); err != nil {
		return err
	}
	a.println("Deleted")
	return nil
}

// resolve finds a todo from the last listing by 1-based position or id.
func (a *App) resolve(ref string) (*api.Todo, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.listed) {
			return nil, fmt.Errorf("no todo #%d in the last listing; run 'list' first", n)
		}
		return a.listed[n-1], nil
	}
	for _, t := range a.listed {
		if t.ID == ref {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown todo %q; run 'list' first", ref)
}
