// Command schedulectl is a terminal client for the deputy schedule API.
// It keeps the session token in the user config directory, so a single
// login carries across invocations.
//
// Usage:
//
//	schedulectl -server http://localhost:8080 login -login ivanov
//	schedulectl list
//	schedulectl agenda
//	schedulectl calendar -month 2025-10
//	schedulectl bookings
//	schedulectl approve -id <request-id>
//	schedulectl export -out schedule.ics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/example/deputy-schedule/internal/client"
	"github.com/example/deputy-schedule/internal/schedule"
)

func main() {
	serverURL := flag.String("server", envOr("SCHEDULE_SERVER", "http://localhost:8080"), "API server base URL")
	tokenPath := flag.String("token-file", "", "override path of the stored auth token")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: schedulectl [flags] <login|logout|list|agenda|calendar|bookings|request|approve|reject|export>")
		os.Exit(2)
	}

	path := *tokenPath
	if path == "" {
		var err error
		path, err = client.DefaultTokenPath()
		if err != nil {
			fatal("resolve token path", err)
		}
	}

	api := client.New(*serverURL, client.NewFileTokenStore(path))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "login":
		err = runLogin(ctx, api, args)
	case "logout":
		err = api.Logout(ctx)
	case "list":
		err = runList(ctx, api)
	case "agenda":
		err = runAgenda(ctx, api)
	case "calendar":
		err = runCalendar(ctx, api, args)
	case "bookings":
		err = runBookings(ctx, api)
	case "request":
		err = runRequest(ctx, api, args)
	case "approve":
		err = runDecision(ctx, api, args, true)
	case "reject":
		err = runDecision(ctx, api, args, false)
	case "export":
		err = runExport(ctx, api, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(2)
	}
	if err != nil {
		fatal(command, err)
	}
}

func runLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	login := fs.String("login", "", "account login")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *login == "" {
		return fmt.Errorf("-login is required")
	}

	pass := *password
	if pass == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pass = string(raw)
	}

	user, err := api.Login(ctx, *login, pass)
	if err != nil {
		return err
	}
	fmt.Printf("Вход выполнен: %s (%s)\n", user.FullName, user.Role)
	return nil
}

func runList(ctx context.Context, api *client.Client) error {
	events, err := api.ListEvents(ctx)
	if err != nil {
		return err
	}
	active, archived := schedule.Partition(events, schedule.Filter{})

	fmt.Printf("Актуальные (%d):\n", len(active))
	for _, event := range active {
		printEvent(event)
	}
	fmt.Printf("Архив (%d):\n", len(archived))
	for _, event := range archived {
		printEvent(event)
	}
	return nil
}

func runAgenda(ctx context.Context, api *client.Client) error {
	events, err := api.ListEvents(ctx)
	if err != nil {
		return err
	}
	active, _ := schedule.Partition(events, schedule.Filter{})

	for _, group := range schedule.GroupByDay(active, time.Now()) {
		fmt.Printf("%s\n", group.Label)
		for _, event := range group.Events {
			printEvent(event)
		}
	}
	return nil
}

func runCalendar(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	monthFlag := fs.String("month", "", "month to render (YYYY-MM, current when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	year, month := now.Year(), now.Month()
	if *monthFlag != "" {
		parsed, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			return fmt.Errorf("invalid -month %q, expected YYYY-MM", *monthFlag)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	events, err := api.ListEvents(ctx)
	if err != nil {
		return err
	}

	printMonthGrid(os.Stdout, schedule.BuildMonthGrid(year, month, events, now))
	return nil
}

var monthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}

// printMonthGrid renders the Monday-start month grid. Days carrying
// events are starred; busy days are listed below the grid.
func printMonthGrid(w io.Writer, grid schedule.MonthGrid) {
	fmt.Fprintf(w, "%s %d\n", monthNames[grid.Month], grid.Year)
	fmt.Fprintln(w, " Пн  Вт  Ср  Чт  Пт  Сб  Вс")

	column := grid.LeadingBlanks
	fmt.Fprint(w, strings.Repeat("    ", column))
	for _, cell := range grid.Cells {
		marker := " "
		if len(cell.Events) > 0 {
			marker = "*"
		}
		fmt.Fprintf(w, " %2d%s", cell.Day, marker)
		column++
		if column == 7 {
			fmt.Fprintln(w)
			column = 0
		}
	}
	if column != 0 {
		fmt.Fprintln(w)
	}

	for _, cell := range grid.Cells {
		if len(cell.Events) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", cell.Date)
		for _, event := range cell.Events {
			timing := event.Time
			if event.EndTime != "" {
				timing += "-" + event.EndTime
			}
			fmt.Fprintf(w, "  %s  [%s] %s\n", timing, event.Type, event.Title)
		}
		if cell.Overflow > 0 {
			fmt.Fprintf(w, "  ещё %d\n", cell.Overflow)
		}
	}
}

func runBookings(ctx context.Context, api *client.Client) error {
	requests, err := api.ListPendingBookings(ctx)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Println("Нет заявок на рассмотрении")
		return nil
	}
	for _, request := range requests {
		fmt.Printf("  %s  %s %s  %s (от %s)\n",
			request.ID, request.Date, request.Time, request.Title, request.RequestedBy.Name)
	}
	return nil
}

func runRequest(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("request", flag.ExitOnError)
	title := fs.String("title", "", "meeting subject")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	timeOfDay := fs.String("time", "", "time (HH:MM)")
	endTime := fs.String("end", "", "end time (HH:MM)")
	description := fs.String("desc", "", "details")
	if err := fs.Parse(args); err != nil {
		return err
	}

	request, err := api.SubmitBooking(ctx, schedule.BookingRequest{
		Title:       *title,
		Date:        *date,
		Time:        *timeOfDay,
		EndTime:     *endTime,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Заявка подана: %s\n", request.ID)
	return nil
}

func runDecision(ctx context.Context, api *client.Client, args []string, approve bool) error {
	fs := flag.NewFlagSet("decision", flag.ExitOnError)
	id := fs.String("id", "", "booking request id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	if approve {
		event, err := api.ApproveBooking(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("Заявка одобрена, мероприятие %s добавлено в график\n", event.ID)
		return nil
	}

	if _, err := api.RejectBooking(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Заявка отклонена")
	return nil
}

func runExport(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "schedule.ics", "output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := api.ExportCalendar(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		return err
	}
	fmt.Printf("Календарь сохранён в %s\n", *out)
	return nil
}

func printEvent(event schedule.Event) {
	timing := event.Time
	if event.EndTime != "" {
		timing += "-" + event.EndTime
	}
	extra := event.Location
	if event.RegionName != "" {
		extra = event.RegionName
	}
	fmt.Printf("  %s  %s %s  [%s] %s", event.ID, event.Date, timing, event.Type, event.Title)
	if extra != "" {
		fmt.Printf(" (%s)", extra)
	}
	fmt.Println()
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func fatal(operation string, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "%s: %s (HTTP %d)\n", operation, apiErr.Message, apiErr.StatusCode)
		if len(apiErr.Details) > 0 {
			detail, _ := json.MarshalIndent(apiErr.Details, "", "  ")
			fmt.Fprintln(os.Stderr, string(detail))
		}
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", operation, err)
	os.Exit(1)
}
