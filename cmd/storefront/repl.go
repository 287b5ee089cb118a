package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/core/storefront"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type repl struct {
	shop     *storefront.Storefront
	in       *bufio.Scanner
	out      io.Writer
	commands map[string]command
	done     bool
}

func newREPL(shop *storefront.Storefront, in io.Reader, out io.Writer) *repl {
	r := &repl{shop: shop, in: bufio.NewScanner(in), out: out}
	r.commands = map[string]command{
		"help":           {"help", "show this list", r.help},
		"login":          {"login <email>", "log in, prompting for the password", r.login},
		"register":       {"register <email>", "create an account", r.register},
		"logout":         {"logout", "end the session", r.logout},
		"whoami":         {"whoami", "show the active session", r.whoami},
		"list":           {"list", "show the current catalog page", r.list},
		"page":           {"page <n>", "go to catalog page n", r.page},
		"search":         {"search [name=..] [category=..] [min=..] [max=..]", "filter the catalog", r.search},
		"reset":          {"reset", "clear the search and reload everything", r.reset},
		"inc":            {"inc <id>", "raise the quantity selector", r.inc},
		"dec":            {"dec <id>", "lower the quantity selector", r.dec},
		"add":            {"add <id>", "put the selected quantity in the cart", r.add},
		"cart":           {"cart", "show the cart", r.cart},
		"clear":          {"clear", "empty the cart", r.clear},
		"checkout":       {"checkout", "buy everything in the cart", r.checkout},
		"buy":            {"buy <id>", "buy one unit right away", r.buy},
		"new":            {"new name=.. price=.. qty=.. [category=..]", "add a sweet (admin)", r.create},
		"edit":           {"edit <id>", "start editing a sweet (admin)", r.edit},
		"set":            {"set [name=..] [price=..] [qty=..] [category=..]", "change the sweet being edited", r.set},
		"save":           {"save", "save the edit", r.save},
		"cancel":         {"cancel", "discard the edit", r.cancel},
		"delete":         {"delete <id>", "delete a sweet (admin)", r.remove},
		"restock-amount": {"restock-amount <id> <n>", "set the pending restock amount", r.restockAmount},
		"restock":        {"restock <id>", "submit the pending restock (admin)", r.restock},
		"quit":           {"quit", "leave", r.quit},
	}
	return r
}

func (r *repl) run(ctx context.Context) {
	for !r.done && ctx.Err() == nil {
		fmt.Fprint(r.out, r.prompt())
		if !r.in.Scan() {
			return
		}

		args, err := splitArgs(r.in.Text())
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		cmd, ok := r.commands[strings.ToLower(args[0])]
		if !ok {
			fmt.Fprintf(r.out, "unknown command %q, try 'help'\n", args[0])
			continue
		}
		if err := cmd.run(ctx, args[1:]); err != nil {
			r.report(cmd, err)
		}
	}
}

func (r *repl) prompt() string {
	s := r.shop.Session().Session()
	switch {
	case !s.Active():
		return "sweetshop> "
	case s.IsAdmin:
		return s.Email + " (admin)> "
	default:
		return s.Email + "> "
	}
}

func (r *repl) report(cmd command, err error) {
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(r.out, "usage: %s\n", cmd.usage)
	case errors.Is(err, storefront.ErrSessionExpired):
		fmt.Fprintln(r.out, "Your session has expired. Please log in again.")
	case errors.Is(err, storefront.ErrNotLoggedIn):
		fmt.Fprintln(r.out, "Please log in first.")
	case errors.Is(err, domain.ErrForbidden):
		fmt.Fprintln(r.out, "Only admins can do that.")
	default:
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

func (r *repl) help(ctx context.Context, args []string) error {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	w := newTable(r.out)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", r.commands[name].usage, r.commands[name].help)
	}
	return w.Flush()
}

func (r *repl) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	password, err := r.readPassword()
	if err != nil {
		return err
	}
	if err := r.shop.Login(ctx, args[0], password); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Logged in as %s.\n", args[0])
	r.printCatalog()
	return nil
}

func (r *repl) register(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	password, err := r.readPassword()
	if err != nil {
		return err
	}
	if _, err := r.shop.Register(ctx, args[0], password); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Registered. You can log in now.")
	return nil
}

// readPassword reads without echo on a terminal, or a plain line otherwise.
func (r *repl) readPassword() (string, error) {
	fmt.Fprint(r.out, "password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(r.out)
		return string(b), err
	}
	if !r.in.Scan() {
		return "", io.ErrUnexpectedEOF
	}
	return r.in.Text(), nil
}

func (r *repl) logout(ctx context.Context, args []string) error {
	if err := r.shop.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Logged out.")
	return nil
}

func (r *repl) whoami(ctx context.Context, args []string) error {
	s := r.shop.Session().Session()
	if !s.Active() {
		return storefront.ErrNotLoggedIn
	}
	role := "customer"
	if s.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(r.out, "%s (%s)\n", s.Email, role)
	return nil
}

func (r *repl) list(ctx context.Context, args []string) error {
	if !r.shop.Session().Active() {
		return storefront.ErrNotLoggedIn
	}
	r.printCatalog()
	return nil
}

func (r *repl) page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	r.shop.Catalog().SetPage(n)
	r.printCatalog()
	return nil
}

func (r *repl) search(ctx context.Context, args []string) error {
	kv, err := keyValues(args, "name", "category", "min", "max")
	if err != nil {
		return err
	}
	form := storefront.FilterForm{
		Name:     kv["name"],
		Category: kv["category"],
		MinPrice: kv["min"],
		MaxPrice: kv["max"],
	}
	if err := r.shop.ApplySearch(ctx, form); err != nil {
		return err
	}
	r.printCatalog()
	return nil
}

func (r *repl) reset(ctx context.Context, args []string) error {
	if err := r.shop.ResetSearch(ctx); err != nil {
		return err
	}
	r.printCatalog()
	return nil
}

func (r *repl) inc(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	n, err := r.shop.IncreaseSelector(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "selected %d\n", n)
	return nil
}

func (r *repl) dec(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	n, err := r.shop.DecreaseSelector(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "selected %d\n", n)
	return nil
}

func (r *repl) add(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	added, err := r.shop.AddToCart(id)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(r.out, "Out of stock.")
		return nil
	}
	line, _ := r.shop.Cart().Line(id)
	fmt.Fprintf(r.out, "%s x%d in cart\n", line.Name, line.Qty)
	return nil
}

func (r *repl) cart(ctx context.Context, args []string) error {
	r.printCart()
	return nil
}

func (r *repl) clear(ctx context.Context, args []string) error {
	r.shop.ClearCart()
	fmt.Fprintln(r.out, "Cart cleared.")
	return nil
}

func (r *repl) checkout(ctx context.Context, args []string) error {
	if len(r.shop.Cart().Lines()) == 0 {
		fmt.Fprintln(r.out, "Cart is empty.")
		return nil
	}
	receipt, err := r.shop.Checkout(ctx)
	if err == nil || receipt.Total() > 0 {
		r.printReceipt(receipt)
	}
	return err
}

func (r *repl) buy(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	if err := r.shop.Mutations().Purchase(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Purchased.")
	return nil
}

func (r *repl) create(ctx context.Context, args []string) error {
	kv, err := keyValues(args, "name", "category", "price", "qty")
	if err != nil {
		return err
	}
	m := r.shop.Mutations()
	form := m.AddForm()
	if v, ok := kv["name"]; ok {
		form.Name = v
	}
	if v, ok := kv["category"]; ok {
		form.Category = v
	}
	if v, ok := kv["price"]; ok {
		form.Price = v
	}
	if v, ok := kv["qty"]; ok {
		form.Quantity = v
	}
	m.SetAddForm(form)

	if err := m.Create(ctx); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Added %s.\n", form.Name)
	return nil
}

func (r *repl) edit(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	if !r.shop.Session().Privileged() {
		return domain.ErrForbidden
	}
	if err := r.shop.Mutations().StartEdit(id); err != nil {
		return err
	}
	r.printEdit()
	return nil
}

func (r *repl) set(ctx context.Context, args []string) error {
	kv, err := keyValues(args, "name", "category", "price", "qty")
	if err != nil {
		return err
	}
	m := r.shop.Mutations()
	buf, ok := m.Editing()
	if !ok {
		return storefront.ErrNotEditing
	}

	if v, ok := kv["name"]; ok {
		buf.Name = v
	}
	if v, ok := kv["category"]; ok {
		if buf.Category, err = domain.ParseCategory(v); err != nil {
			return err
		}
	}
	if v, ok := kv["price"]; ok {
		if buf.Price, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("%w: price must be a number", domain.ErrInvalidInput)
		}
	}
	if v, ok := kv["qty"]; ok {
		if buf.Quantity, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: quantity must be a whole number", domain.ErrInvalidInput)
		}
	}

	if err := m.UpdateEdit(buf); err != nil {
		return err
	}
	r.printEdit()
	return nil
}

func (r *repl) save(ctx context.Context, args []string) error {
	if err := r.shop.Mutations().SaveEdit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Saved.")
	return nil
}

func (r *repl) cancel(ctx context.Context, args []string) error {
	r.shop.Mutations().CancelEdit()
	return nil
}

func (r *repl) remove(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	if err := r.shop.Mutations().Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Deleted.")
	return nil
}

func (r *repl) restockAmount(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := itemArg(args[:1])
	if err != nil {
		return err
	}
	r.shop.Mutations().SetRestockAmount(id, args[1])
	return nil
}

func (r *repl) restock(ctx context.Context, args []string) error {
	id, err := itemArg(args)
	if err != nil {
		return err
	}
	if err := r.shop.Mutations().Restock(ctx, id); err != nil {
		return err
	}
	item, _ := r.shop.Catalog().Item(id)
	fmt.Fprintf(r.out, "%s now has %d in stock.\n", item.Name, item.Quantity)
	return nil
}

func (r *repl) quit(ctx context.Context, args []string) error {
	r.done = true
	return nil
}

func itemArg(args []string) (domain.ItemID, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errUsage
	}
	return domain.ItemID(id), nil
}

// keyValues parses key=value arguments, rejecting keys not in allowed.
func keyValues(args []string, allowed ...string) (map[string]string, error) {
	kv := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.ToLower(key)
		if !ok || !contains(allowed, key) {
			return nil, errUsage
		}
		kv[key] = value
	}
	return kv, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together
// so names like name="Kaju Katli" survive.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		inArg   bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inArg = true
		case !quoted && (r == ' ' || r == '\t'):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
