// ABOUTME: Command-line client for the deep-thoughts API
// ABOUTME: Signs up, logs in, posts thoughts, reacts, befriends, and reads the feed over GraphQL

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/deep-thoughts/internal/client"
)

const defaultServerURL = "http://localhost:3001"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

	app := &app{
		client: client.New(getEnv("DEEP_THOUGHTS_URL", defaultServerURL), client.WithToken(getToken())),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "signup":
		err = app.signup(ctx, args)
	case "login":
		err = app.login(ctx, args)
	case "logout":
		err = app.logout()
	case "me":
		err = app.me(ctx)
	case "post":
		err = app.post(ctx, args)
	case "react":
		err = app.react(ctx, args)
	case "befriend":
		err = app.befriend(ctx, args)
	case "feed":
		err = app.feed(ctx, args)
	case "user":
		err = app.user(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Println("Usage: thoughts <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  signup <username> <email>        Create an account and save the token")
	fmt.Println("  login <email>                    Log in and save the token")
	fmt.Println("  logout                           Forget the saved token")
	fmt.Println("  me                               Show your profile")
	fmt.Println("  post <text>                      Share a thought")
	fmt.Println("  react <thought-id> <text>        React to a thought")
	fmt.Println("  befriend <user-id>               Add a friend")
	fmt.Println("  feed [--user name]               List thoughts, newest first")
	fmt.Println("  user <username>                  Show someone's profile")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  DEEP_THOUGHTS_URL      Server URL (default: " + defaultServerURL + ")")
	fmt.Println("  DEEP_THOUGHTS_TOKEN    Token override (default: ~/.config/deep-thoughts/token)")
	fmt.Println()
}

type app struct {
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
}

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: thoughts signup <username> <email>")
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	auth, err := a.client.Signup(ctx, args[0], args[1], password)
	if err != nil {
		return err
	}
	if err := saveToken(auth.Token); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(a.out, "Welcome, %s!\n", auth.User.Username)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: thoughts login <email>")
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	auth, err := a.client.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	if err := saveToken(auth.Token); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(a.out, "Logged in as %s\n", auth.User.Username)
	return nil
}

func (a *app) logout() error {
	if err := removeToken(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) me(ctx context.Context) error {
	u, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	printProfile(a.out, u)
	return nil
}

func (a *app) user(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: thoughts user <username>")
	}
	u, err := a.client.User(ctx, args[0])
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("no user named %q", args[0])
	}
	printProfile(a.out, u)
	return nil
}

func (a *app) post(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("usage: thoughts post <text>")
	}
	t, err := a.client.AddThought(ctx, text)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprint(a.out, "Posted ")
	fmt.Fprintf(a.out, "%s\n", t.ID)
	return nil
}

func (a *app) react(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: thoughts react <thought-id> <text>")
	}
	t, err := a.client.AddReaction(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	printThought(a.out, *t, true)
	return nil
}

func (a *app) befriend(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: thoughts befriend <user-id>")
	}
	u, err := a.client.AddFriend(ctx, args[0])
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "You now have %d friend(s)\n", u.FriendCount)
	return nil
}

func (a *app) feed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("user", "", "only show thoughts by this user")
	reactions := fs.Bool("reactions", false, "include reactions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	thoughts, err := a.client.Thoughts(ctx, *username)
	if err != nil {
		return err
	}
	if len(thoughts) == 0 {
		fmt.Fprintln(a.out, "  (no thoughts yet)")
		return nil
	}
	for _, t := range thoughts {
		printThought(a.out, t, *reactions)
	}
	return nil
}

// readPassword reads without echo from a terminal, or one line from piped input.
func (a *app) readPassword() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	if isTerminal(int(os.Stdin.Fd())) {
		pw, err := readTerminalPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
