// cmd/activities is the interactive terminal front end for the
// enrollment client: it hosts the controller, prints roster renders and
// banner messages, and turns typed commands into actions.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aparkhill/activity-enrollment-client/internal/client"
	"github.com/aparkhill/activity-enrollment-client/internal/config"
	"github.com/aparkhill/activity-enrollment-client/internal/controller"
	"github.com/aparkhill/activity-enrollment-client/internal/model"
	"github.com/aparkhill/activity-enrollment-client/internal/notify"
	"github.com/aparkhill/activity-enrollment-client/internal/session"
	"github.com/aparkhill/activity-enrollment-client/internal/view"
)

const usage = `Commands:
  list                               refresh and print the roster
  signup <activity> <email>          enroll an email (requires login)
  unregister <activity> <email>      withdraw an email (requires login)
  login <username> <password>        log in
  register <username> <password>     create an account
  logout                             end the session
  whoami                             print the current identity
  help                               show this text
  quit                               exit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	api, err := client.New(cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	store := session.NewStore()
	banner := notify.New()
	sessions := session.NewManager(api, store, banner)
	ctrl := controller.New(api, sessions, banner)

	out := os.Stdout
	banner.OnChange(func(m model.Message) {
		if m.Visible {
			fmt.Fprintf(out, "[%s] %s\n", m.Kind, m.Text)
		}
	})
	store.OnChange(func(s model.Session) {
		if s.LoggedIn() {
			fmt.Fprintf(out, "Logged in as: %s\n", s.Username)
		}
	})
	ctrl.OnRender(func(p view.Page) {
		p.Write(out)
	})

	log.Printf("✓ Talking to %s", cfg.BaseURL)

	// Initial population: roster first, then the identity probe.
	ctx := context.Background()
	ctrl.Start(ctx)

	fmt.Fprintln(out, usage)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		if !dispatch(ctx, out, scanner.Text(), ctrl, sessions) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

// dispatch runs one typed command. It returns false when the loop
// should exit.
func dispatch(ctx context.Context, out *os.File, line string, ctrl *controller.Controller, sessions *session.Manager) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(out, usage)
	case "list":
		ctrl.RefreshRoster(ctx)
	case "whoami":
		sess := sessions.Refresh(ctx)
		if sess.LoggedIn() {
			fmt.Fprintf(out, "Logged in as: %s\n", sess.Username)
		} else {
			fmt.Fprintln(out, "Not logged in")
		}
	case "login", "register":
		if len(fields) != 3 {
			fmt.Fprintf(out, "usage: %s <username> <password>\n", fields[0])
			return true
		}
		if fields[0] == "login" {
			sessions.Login(ctx, fields[1], fields[2])
		} else {
			sessions.Register(ctx, fields[1], fields[2])
		}
	case "logout":
		sessions.Logout(ctx)
	case "signup", "unregister":
		// Activity names contain spaces: everything between the
		// command and the trailing email is the name.
		if len(fields) < 3 {
			fmt.Fprintf(out, "usage: %s <activity> <email>\n", fields[0])
			return true
		}
		activity := strings.Join(fields[1:len(fields)-1], " ")
		email := fields[len(fields)-1]
		if fields[0] == "signup" {
			ctrl.Signup(ctx, activity, email)
		} else {
			ctrl.Unregister(ctx, activity, email)
		}
	default:
		fmt.Fprintf(out, "unknown command %q (try help)\n", fields[0])
	}
	return true
}
