package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/finance-tracker/internal/client"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/prompt"
)

const usage = `Usage: fintrack [-api <url>] [-session <path>] <command> [flags]

Commands:
  register   create an account
  login      sign in and store the session
  logout     forget the stored session
  categories list expense categories
  add        record an expense
  list       list expenses (-name, -range, -from, -to, -page)
  edit       change an expense
  delete     remove an expense
  dashboard  totals and per-month spending (-year)
`

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	api         *client.Client
	sessionPath string
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	now         func() time.Time
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	apiURL := fs.String("api", envOr("FINTRACK_API_URL", "http://localhost:8080"), "API base URL")
	sessionPath := fs.String("session", os.Getenv("FINTRACK_SESSION"), "session file (default: user config dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}

	if *sessionPath == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		*sessionPath = path
	}

	a := &app{
		api:         client.New(*apiURL, nil),
		sessionPath: *sessionPath,
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		now:         time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "categories":
		return a.categories(ctx)
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.remove(ctx, rest)
	case "dashboard":
		return a.dashboard(ctx, rest)
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// session returns the stored session, or an error telling the user to
// sign in again.
func (a *app) session() (*client.Session, error) {
	s, err := client.LoadSession(a.sessionPath, a.now())
	if err != nil {
		if errors.Is(err, client.ErrNoSession) {
			return nil, errors.New("not signed in: run `fintrack login` first")
		}
		return nil, err
	}
	return &s, nil
}

func (a *app) password(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := prompt.Password(a.stdin, a.stdout, "Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return pw, nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	pw := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}
	password, err := a.password(*pw)
	if err != nil {
		return err
	}
	user, err := a.api.Register(ctx, *name, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Registered %s (id %d). Sign in with `fintrack login`.\n", user.Email, user.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	pw := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}
	password, err := a.password(*pw)
	if err != nil {
		return err
	}
	s, err := a.api.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	if err := s.Save(a.sessionPath); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(a.stdout, "Welcome, %s. Session valid until %s.\n", displayName(s), s.ExpiresAt.Local().Format(time.Kitchen))
	return nil
}

func (a *app) logout() error {
	s, err := client.LoadSession(a.sessionPath, a.now())
	if err != nil && !errors.Is(err, client.ErrNoSession) {
		return err
	}
	if err := a.endSession(&s); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Signed out.")
	return nil
}

// endSession forgets s in memory and on disk.
func (a *app) endSession(s *client.Session) error {
	s.Clear()
	if err := client.RemoveSession(a.sessionPath); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// checkAuth ends the session when the server no longer accepts its token.
func (a *app) checkAuth(s *client.Session, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if endErr := a.endSession(s); endErr != nil {
			return endErr
		}
		return errors.New("session expired: run `fintrack login` again")
	}
	return err
}

func (a *app) categories(ctx context.Context) error {
	categories, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range categories {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

type expenseFlags struct {
	category    *int64
	amount      *string
	date        *string
	description *string
}

func bindExpenseFlags(fs *flag.FlagSet) expenseFlags {
	return expenseFlags{
		category:    fs.Int64("category", 0, "category id"),
		amount:      fs.String("amount", "", "amount, e.g. 12.50"),
		date:        fs.String("date", "", "date as YYYY-MM-DD (default today)"),
		description: fs.String("desc", "", "optional description"),
	}
}

func (f expenseFlags) apply(e *models.Expense, fs *flag.FlagSet, today time.Time) error {
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["category"] || e.ID == 0 {
		e.CategoryID = *f.category
		e.Name, e.CategoryImageURL = nil, nil
	}
	if set["amount"] || e.ID == 0 {
		amount, err := decimal.NewFromString(strings.TrimSpace(*f.amount))
		if err != nil {
			return fmt.Errorf("invalid amount %q", *f.amount)
		}
		e.Amount = amount
	}
	switch {
	case set["date"]:
		d, err := models.ParseDate(*f.date)
		if err != nil {
			return err
		}
		e.Date = d
	case e.ID == 0:
		e.Date = models.NewDate(today)
	}
	if set["desc"] {
		desc := strings.TrimSpace(*f.description)
		e.Description = &desc
		if desc == "" {
			e.Description = nil
		}
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	fs := a.flags("add")
	ef := bindExpenseFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var e models.Expense
	if err := ef.apply(&e, fs, a.now()); err != nil {
		return err
	}
	created, err := a.api.CreateExpense(ctx, s, e)
	if err != nil {
		return a.checkAuth(s, err)
	}
	fmt.Fprintf(a.stdout, "Added expense %d: %s %s on %s\n", created.ID, created.CategoryName(), created.Amount.StringFixed(2), created.Date)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	fs := a.flags("list")
	name := fs.String("name", "", "filter by category name")
	rangeName := fs.String("range", "all", "all, week, month or custom")
	from := fs.String("from", "", "custom range start (YYYY-MM-DD)")
	to := fs.String("to", "", "custom range end (YYYY-MM-DD)")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, ok := client.ParseRange(*rangeName)
	if !ok {
		return fmt.Errorf("unknown range %q", *rangeName)
	}
	var lo, hi models.Date
	if r == client.RangeCustom {
		if lo, err = optionalDate(*from); err != nil {
			return err
		}
		if hi, err = optionalDate(*to); err != nil {
			return err
		}
	}

	expenses, err := a.api.Expenses(ctx, s, client.Filter{})
	if err != nil {
		return a.checkAuth(s, err)
	}
	expenses = client.FilterByName(expenses, *name)
	expenses = client.FilterByRange(expenses, r, a.now(), lo, hi)
	return a.printPage(client.Paginate(expenses, *page, client.DefaultPerPage))
}

func (a *app) printPage(p client.Page) error {
	if len(p.Items) == 0 {
		fmt.Fprintln(a.stdout, "No expenses found.")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, e := range p.Items {
		desc := ""
		if e.Description != nil {
			desc = *e.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.CategoryName(), e.Amount.StringFixed(2), desc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Page %d of %d\n", p.Page, p.TotalPages)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	fs := a.flags("edit")
	ef := bindExpenseFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := expenseID(fs)
	if err != nil {
		return err
	}

	expenses, err := a.api.Expenses(ctx, s, client.Filter{})
	if err != nil {
		return a.checkAuth(s, err)
	}
	idx := slices.IndexFunc(expenses, func(e models.Expense) bool { return e.ID == id })
	if idx < 0 {
		return fmt.Errorf("expense %d not found", id)
	}
	updated := expenses[idx]
	if err := ef.apply(&updated, fs, a.now()); err != nil {
		return err
	}
	if err := a.api.UpdateExpense(ctx, s, updated); err != nil {
		return a.checkAuth(s, err)
	}

	expenses = client.ReplaceByID(expenses, updated)
	fmt.Fprintf(a.stdout, "Updated expense %d\n", id)
	return a.printPage(client.Paginate(expenses, idx/client.DefaultPerPage+1, client.DefaultPerPage))
}

func (a *app) remove(ctx context.Context, args []string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	fs := a.flags("delete")
	page := fs.Int("page", 1, "page to show afterwards")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := expenseID(fs)
	if err != nil {
		return err
	}

	expenses, err := a.api.Expenses(ctx, s, client.Filter{})
	if err != nil {
		return a.checkAuth(s, err)
	}
	if err := a.api.DeleteExpense(ctx, s, id); err != nil {
		return a.checkAuth(s, err)
	}

	expenses = client.RemoveByID(expenses, id)
	fmt.Fprintf(a.stdout, "Deleted expense %d\n", id)
	return a.printPage(client.Paginate(expenses, *page, client.DefaultPerPage))
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	fs := a.flags("dashboard")
	year := fs.Int("year", a.now().Year(), "year for the monthly breakdown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		expenses []models.Expense
		summary  dto.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = a.api.Expenses(gctx, s, client.Filter{})
		return err
	})
	g.Go(func() (err error) {
		summary, err = a.api.Summary(gctx, s, *year)
		return err
	})
	if err := g.Wait(); err != nil {
		return a.checkAuth(s, err)
	}

	stats := client.Totals(expenses)
	months := client.MonthlyTotals(expenses, *year)

	fmt.Fprintf(a.stdout, "Hello, %s\n\n", displayName(*s))
	fmt.Fprintf(a.stdout, "Total spent:  %s\n", stats.Total.StringFixed(2))
	fmt.Fprintf(a.stdout, "Transactions: %d\n", stats.Count)
	fmt.Fprintf(a.stdout, "Categories:   %d\n\n", stats.DistinctCategories)

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "MONTH\t%d\t\n", *year)
	for i, total := range months {
		fmt.Fprintf(tw, "%s\t%s\t\n", time.Month(i+1).String()[:3], total.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout)
	tw = tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tTOTAL")
	for _, c := range summary.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Count, c.Total.StringFixed(2))
	}
	return tw.Flush()
}

func expenseID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, errors.New("expected exactly one expense id")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", fs.Arg(0))
	}
	return id, nil
}

func optionalDate(s string) (models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(s)
}

func displayName(s client.Session) string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Email
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
