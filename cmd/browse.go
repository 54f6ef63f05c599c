package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_browser/internal/client"
	"sales_browser/internal/listing"
	"sales_browser/internal/output"
	"sales_browser/internal/sales"
	"sales_browser/internal/screens"
)

const browseHelp = `Commands:
  more                     load the next page
  list                     show the loaded sales again
  reload                   reload from the first page
  name <text>              filter by seller name (empty clears)
  min <YYYY-MM-DD>         earliest sale date (empty clears)
  max <YYYY-MM-DD>         latest sale date (empty clears)
  filter                   apply the edited filters now
  show <id>                show one sale
  edit <id> [seller=..] [deals=..] [amount=..]
  delete <id>              delete a sale
  notify <id>              send the sale's SMS
  help                     this text
  quit                     leave`

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse sales interactively",
	Long: `Open the sales list screen.

Filter edits reload the list after a short quiet period; "filter" applies
them right away. Type "help" for the commands.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browseSession is the list screen bound to a terminal.
type browseSession struct {
	ctx  context.Context
	api  *client.SalesClient
	ctrl *listing.Controller
	p    *output.Printer
	in   *bufio.Scanner

	confirmer *promptConfirmer

	// mu serializes output with debounced reloads.
	mu   sync.Mutex
	last renderKey
}

// renderKey identifies what the list last showed.
type renderKey struct {
	epoch uint64
	state listing.State
	items int
	total int64
}

func runBrowse(cmd *cobra.Command, args []string) error {
	api, closeAPI := newSalesClient()
	defer closeAPI()

	s := &browseSession{
		ctx: cmd.Context(),
		api: api,
		p:   newPrinter(cmd),
		in:  bufio.NewScanner(cmd.InOrStdin()),
	}
	s.confirmer = &promptConfirmer{p: s.p, in: s.in}
	s.ctrl = listing.New(api,
		listing.WithPageSize(cfg.List.PageSize),
		listing.WithDebounce(cfg.List.Debounce),
		listing.WithLogger(logger),
		listing.WithOnChange(s.onChange),
	)
	defer s.ctrl.Close()

	if err := s.ctrl.Start(s.ctx); err != nil {
		logger.Debug("first load failed", zap.Error(err))
	}
	s.println("Type \"help\" for commands.")

	for {
		if s.ctx.Err() != nil {
			return nil
		}
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		if quit := s.dispatch(line); quit {
			return nil
		}
	}
}

func (s *browseSession) readLine() (string, bool) {
	s.prompt("> ")
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *browseSession) dispatch(line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		s.println(browseHelp)
	case "more", "m":
		s.loadMore()
	case "list", "ls":
		s.render(s.ctrl.Snapshot())
	case "reload":
		if err := s.ctrl.Reload(s.ctx); err != nil {
			logger.Debug("reload failed", zap.Error(err))
		}
	case "name":
		s.ctrl.SetName(rest)
	case "min", "max":
		s.setDate(command, rest)
	case "filter":
		if err := s.ctrl.ApplyFilters(s.ctx); err != nil {
			logger.Debug("apply filters failed", zap.Error(err))
		}
	case "show", "edit", "delete", "notify":
		s.withSale(command, rest)
	default:
		s.locked(func() { s.p.Warning("Unknown command %q. Type \"help\" for commands.", command) })
	}
	return false
}

func (s *browseSession) loadMore() {
	err := s.ctrl.LoadMore(s.ctx)
	switch {
	case err == nil:
	case errors.Is(err, listing.ErrNoMore):
		s.locked(func() { s.p.Info("All items loaded") })
	case errors.Is(err, listing.ErrBusy):
		s.locked(func() { s.p.Warning("Still loading, try again.") })
	default:
		logger.Debug("load more failed", zap.Error(err))
	}
}

func (s *browseSession) setDate(which, value string) {
	if value != "" {
		if _, err := sales.ParseDate(value); err != nil {
			s.locked(func() { s.p.Error("%q is not a date (YYYY-MM-DD)", value) })
			return
		}
	}
	if which == "min" {
		s.ctrl.SetMinDate(value)
	} else {
		s.ctrl.SetMaxDate(value)
	}
}

func (s *browseSession) withSale(command, rest string) {
	idText, args, _ := strings.Cut(rest, " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		s.locked(func() { s.p.Error("%s needs a sale id", command) })
		return
	}
	sale, ok := s.ctrl.Find(id)
	if !ok {
		s.locked(func() { s.p.Error("Sale %d is not in the loaded list", id) })
		return
	}

	detail := s.detail(sale)
	switch command {
	case "show":
		s.locked(func() {
			if err := output.RenderSale(s.p, sale); err != nil {
				logger.Warn("failed to render sale", zap.Error(err))
			}
		})
	case "edit":
		s.edit(detail, args)
	case "delete":
		if _, err := detail.Delete(s.ctx); err != nil {
			logger.Debug("delete failed", zap.Int64("sale_id", id), zap.Error(err))
		}
	case "notify":
		if err := detail.Notify(s.ctx); err != nil {
			logger.Debug("notify failed", zap.Int64("sale_id", id), zap.Error(err))
		}
	}
}

func (s *browseSession) detail(sale sales.Sale) *screens.Detail {
	d := screens.NewDetail(sale, screens.Deps{
		API:       s.api,
		Toaster:   s,
		Navigator: s,
		Confirmer: s,
		Logger:    logger,
	})
	d.OnSaved = func(updated sales.Sale) {
		s.ctrl.Replace(updated)
		s.locked(func() { s.last = renderKey{} })
	}
	d.OnDeleted = func(id int64) { s.ctrl.Remove(id) }
	return d
}

// edit applies key=value assignments to the form and saves it. Words without
// '=' continue the previous value, so seller=Bruce Wayne works unquoted.
func (s *browseSession) edit(detail *screens.Detail, args string) {
	form := detail.Edit()
	values, err := parseAssignments(args)
	if err != nil {
		s.locked(func() { s.p.Error("%v", err) })
		return
	}
	if len(values) == 0 {
		s.locked(func() { s.p.Warning("Nothing to change. Use seller=.. deals=.. amount=..") })
		form.Cancel()
		return
	}
	for key, value := range values {
		switch key {
		case "seller":
			form.SellerName = value
		case "deals":
			form.Deals = value
		case "amount":
			form.Amount = value
		}
	}

	if _, err := form.Save(s.ctx); err != nil {
		var verr *screens.ValidationError
		if errors.As(err, &verr) {
			s.locked(func() { s.p.Error("%v", verr) })
			return
		}
		logger.Debug("save failed", zap.Error(err))
	}
}

func parseAssignments(args string) (map[string]string, error) {
	values := map[string]string{}
	key := ""
	for _, word := range strings.Fields(args) {
		k, v, ok := strings.Cut(word, "=")
		if ok {
			switch k {
			case "seller", "deals", "amount":
			default:
				return nil, fmt.Errorf("unknown field %q (seller, deals, amount)", k)
			}
			key = k
			values[key] = v
			continue
		}
		if key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", word)
		}
		values[key] += " " + word
	}
	return values, nil
}

func (s *browseSession) onChange(snap listing.Snapshot) {
	switch snap.State {
	case listing.LoadingInitial, listing.Ready, listing.Error:
	default:
		return
	}
	key := renderKey{epoch: snap.Epoch, state: snap.State, items: len(snap.Items), total: snap.TotalItems}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.last {
		return
	}
	s.renderLocked(snap)
}

func (s *browseSession) render(snap listing.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked(snap)
}

func (s *browseSession) renderLocked(snap listing.Snapshot) {
	s.last = renderKey{epoch: snap.Epoch, state: snap.State, items: len(snap.Items), total: snap.TotalItems}
	if f := snap.ActiveFilters; f != (sales.Filters{}) {
		s.p.Info("Filters: name=%q min=%q max=%q", f.Name, f.MinDate, f.MaxDate)
	}
	if err := output.RenderSales(s.p, snap); err != nil {
		logger.Warn("failed to render sales", zap.Error(err))
	}
}

func (s *browseSession) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *browseSession) prompt(text string) {
	s.locked(func() { fmt.Fprint(s.p.Out(), text) })
}

func (s *browseSession) println(text string) {
	s.locked(func() { fmt.Fprintln(s.p.Out(), text) })
}

// Success shows a toast.
func (s *browseSession) Success(msg string) {
	s.locked(func() { s.p.Success("%s", msg) })
}

// Error shows an error toast.
func (s *browseSession) Error(msg string) {
	s.locked(func() { s.p.Error("%s", msg) })
}

// Back returns to the list, redrawing it if it changed.
func (s *browseSession) Back() {
	s.onChange(s.ctrl.Snapshot())
}

// Confirm asks on the terminal. Debounced redraws wait until it is answered.
func (s *browseSession) Confirm(title, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmer.Confirm(title, message)
}
