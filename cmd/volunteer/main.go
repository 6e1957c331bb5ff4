// Command volunteer is the terminal client for the volunteerhub API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"volunteerhub/internal/client"
	"volunteerhub/internal/clock"
	"volunteerhub/internal/config"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/infrastructure/localstore"
	"volunteerhub/pkg/datefmt"
	"volunteerhub/pkg/tz"
)

const usage = `Usage: volunteer <command> [arguments]

Commands:
  login -email ADDRESS     sign in (password is prompted)
  logout                   forget the stored session
  whoami                   show the signed-in user
  events [-active]         list events
  show ID                  show one event
  volunteers ID            list who signed up
  create [flags]           create an event (see volunteer create -h)
  delete ID                delete an event you organize
  join ID | leave ID       add or remove yourself
  toggle ID                join if not signed up, leave otherwise
`

type app struct {
	api     *client.API
	session *client.Session
	roster  *client.Roster
	loc     *time.Location
	out     io.Writer
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kv, err := localstore.Open(cfg.SessionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open session: %v\n", err)
		os.Exit(1)
	}
	clk := clock.NewSystem()
	api := client.NewAPI(cfg.APIURL, client.WithLocale(cfg.Locale))
	session, err := client.NewSession(api, kv, clk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := &app{
		api:     api,
		session: session,
		roster:  client.NewRoster(api, session, clk),
		loc:     tz.Resolve(cfg.DisplayTimezone),
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "volunteer: %v\n", err)
		if domain.Retryable(err) {
			fmt.Fprintln(os.Stderr, "The server could not be reached; try again.")
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "whoami":
		u := a.session.CurrentUser()
		if u == nil {
			return domain.ErrNotAuthenticated
		}
		fmt.Fprintf(a.out, "%s <%s> (%s)\n", u.Name, u.Email, u.ID)
		return nil
	case "events":
		return a.events(ctx, args)
	case "show":
		return a.withID(args, func(id string) error { return a.show(ctx, id) })
	case "volunteers":
		return a.withID(args, func(id string) error { return a.volunteers(ctx, id) })
	case "create":
		return a.create(ctx, args)
	case "delete":
		return a.withID(args, func(id string) error { return a.delete(ctx, id) })
	case "join":
		return a.withID(args, func(id string) error { return a.setMembership(ctx, id, true) })
	case "leave":
		return a.withID(args, func(id string) error { return a.setMembership(ctx, id, false) })
	case "toggle":
		return a.withID(args, func(id string) error { return a.toggle(ctx, id) })
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func (a *app) withID(args []string, fn func(id string) error) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("expected exactly one event id")
	}
	return fn(args[0])
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	u, err := a.session.Login(ctx, *email, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", u.Name)
	return nil
}

func (a *app) events(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	active := fs.Bool("active", false, "only events that have not ended")
	if err := fs.Parse(args); err != nil {
		return err
	}
	views, err := a.api.ListEvents(ctx, *active)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No events.")
		return nil
	}
	printEventTable(a.out, views, a.loc)
	return nil
}

func (a *app) show(ctx context.Context, id string) error {
	v, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	var me string
	if u := a.session.CurrentUser(); u != nil {
		me = u.ID
	}
	organizer := v.OrganizerID
	if u, err := a.api.GetUser(ctx, v.OrganizerID); err == nil {
		organizer = u.Name.String()
	}
	printEvent(a.out, *v, organizer, me, a.loc)
	return nil
}

func (a *app) volunteers(ctx context.Context, id string) error {
	users, err := a.api.Volunteers(ctx, id)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "Nobody has signed up yet.")
		return nil
	}
	for i, u := range users {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, u.Name)
	}
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var (
		name   = fs.String("name", "", "event name")
		desc   = fs.String("description", "", "event description")
		start  = fs.String("start", "", "start time, RFC3339 (2030-01-02T09:00:00+01:00)")
		end    = fs.String("end", "", "optional end time, RFC3339")
		lat    = fs.Float64("lat", 0, "latitude")
		lng    = fs.Float64("lng", 0, "longitude")
		needed = fs.Int("needed", 0, "volunteers needed")
		image  = fs.String("image", "", "optional image URL")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	token, ok := a.session.Token()
	if !ok {
		return domain.ErrNotAuthenticated
	}

	in := client.CreateEventInput{
		Name:             *name,
		Description:      *desc,
		Position:         entities.Position{Latitude: *lat, Longitude: *lng},
		VolunteersNeeded: *needed,
	}
	var err error
	if in.DateTime, err = time.Parse(time.RFC3339, *start); err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			return fmt.Errorf("-end: %w", err)
		}
		in.EndDateTime = &t
	}
	if *image != "" {
		in.ImageURL = image
	}

	v, err := a.api.CreateEvent(ctx, token, in)
	if err != nil {
		return a.observe(err)
	}
	fmt.Fprintf(a.out, "Created %q (%s).\n", v.Name, v.ID)
	return nil
}

func (a *app) delete(ctx context.Context, id string) error {
	token, ok := a.session.Token()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	if err := a.api.DeleteEvent(ctx, token, id); err != nil {
		return a.observe(err)
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// setMembership toggles only when the current state differs from want.
func (a *app) setMembership(ctx context.Context, id string, want bool) error {
	u := a.session.CurrentUser()
	if u == nil {
		return domain.ErrNotAuthenticated
	}
	v, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if v.HasVolunteer(u.ID) == want {
		if want {
			fmt.Fprintln(a.out, "You are already signed up.")
		} else {
			fmt.Fprintln(a.out, "You are not signed up.")
		}
		return nil
	}
	return a.toggleView(ctx, *v)
}

func (a *app) toggle(ctx context.Context, id string) error {
	v, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	return a.toggleView(ctx, *v)
}

func (a *app) toggleView(ctx context.Context, v entities.EventView) error {
	screen := client.NewEventScreen(v)
	joined, err := a.roster.Toggle(ctx, screen)
	if err != nil {
		return err
	}
	after := screen.View()
	if joined {
		fmt.Fprintf(a.out, "You are signed up for %q. %s\n", after.Name, spotsLine(after))
	} else {
		fmt.Fprintf(a.out, "You left %q. %s\n", after.Name, spotsLine(after))
	}
	return nil
}

func (a *app) observe(err error) error {
	return a.session.Observe(err)
}

func spotsLine(v entities.EventView) string {
	return fmt.Sprintf("%d/%d volunteers, %d left.", len(v.VolunteersIDs), v.VolunteersNeeded, v.SpotsRemaining)
}

func printEventTable(w io.Writer, views []entities.EventView, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWHEN\tSTATUS\tVOLUNTEERS")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\n",
			v.ID, v.Name, datefmt.EventDate(v.DateTime, loc), v.Status, len(v.VolunteersIDs), v.VolunteersNeeded)
	}
	_ = tw.Flush()
}

func printEvent(w io.Writer, v entities.EventView, organizer, me string, loc *time.Location) {
	fmt.Fprintf(w, "%s\n\n%s\n\n", v.Name, v.Description)
	fmt.Fprintf(w, "When:       %s (%s)\n", datefmt.EventDateRange(v.DateTime, v.EffectiveEnd(), loc), v.Status)
	fmt.Fprintf(w, "Where:      %.5f, %.5f\n", v.Position.Latitude, v.Position.Longitude)
	fmt.Fprintf(w, "Organizer:  %s\n", organizer)
	fmt.Fprintf(w, "Volunteers: %s\n", spotsLine(v))
	if v.ImageURL != nil {
		fmt.Fprintf(w, "Image:      %s\n", *v.ImageURL)
	}
	if me != "" && v.HasVolunteer(me) {
		fmt.Fprintln(w, "\nYou are signed up.")
	}
}
