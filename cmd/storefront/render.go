package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rl1809/sweet-shop/internal/core/storefront"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func (r *repl) printCatalog() {
	catalog := r.shop.Catalog()
	items := catalog.Visible()
	if len(items) == 0 {
		fmt.Fprintln(r.out, "No sweets found.")
		return
	}

	cart := r.shop.Cart()
	w := newTable(r.out)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tLEFT\tSELECTED")
	for _, item := range items {
		left := cart.RemainingStock(item)
		status := fmt.Sprint(left)
		if left == 0 {
			status = "sold out"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%s\t%d\n",
			item.ID, item.Name, item.Category, item.Price, item.Quantity, status, cart.Selector(item.ID))
	}
	w.Flush()

	if catalog.Paginated() {
		fmt.Fprintf(r.out, "page %d/%d\n", catalog.CurrentPage(), catalog.TotalPages(catalog.PageSize()))
	}
}

func (r *repl) printCart() {
	cart := r.shop.Cart()
	lines := cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(r.out, "Cart is empty.")
		return
	}

	w := newTable(r.out)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\n", l.ItemID, l.Name, l.Qty, l.Price, l.Subtotal())
	}
	fmt.Fprintf(w, "\t\t%d\t\t%.2f\n", cart.Units(), cart.Total())
	w.Flush()
}

func (r *repl) printReceipt(receipt storefront.Receipt) {
	if len(receipt.Lines) == 0 {
		return
	}

	w := newTable(r.out)
	fmt.Fprintln(w, "NAME\tBOUGHT\tREQUESTED\tPAID")
	for _, l := range receipt.Lines {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n", l.Name, l.Purchased, l.Qty, l.Price*float64(l.Purchased))
	}
	w.Flush()

	if receipt.Complete() {
		fmt.Fprintf(r.out, "Order placed. Total %.2f\n", receipt.Total())
	} else {
		fmt.Fprintf(r.out, "Order incomplete. Charged %.2f\n", receipt.Total())
	}
}

func (r *repl) printEdit() {
	buf, ok := r.shop.Mutations().Editing()
	if !ok {
		return
	}
	fmt.Fprintf(r.out, "editing #%d: name=%q category=%s price=%.2f qty=%d\n",
		buf.ItemID, buf.Name, buf.Category, buf.Price, buf.Quantity)
}
