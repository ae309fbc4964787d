package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/storefront"
)

// drain prints the notifications already queued and returns without waiting.
func drain(w io.Writer, notes <-chan storefront.Notification) {
	for {
		select {
		case n := <-notes:
			printNotification(w, n)
		default:
			return
		}
	}
}

func printNotification(w io.Writer, n storefront.Notification) {
	switch n := n.(type) {
	case storefront.Message:
		fmt.Fprintln(w, n.Text)
	case storefront.CartChanged:
		printCart(w, n.Cart, n.Totals)
	case storefront.CatalogChanged:
		fmt.Fprintf(w, "-- catalog [%s] --\n", n.Filter)
		printProducts(w, n.Products)
	case storefront.QuantityReset:
		fmt.Fprintf(w, "quantity of %s shown as %d\n", n.ProductID, n.Display)
	case storefront.SloganReady:
		fmt.Fprintf(w, "%s: %s%s\n", n.ProductID, n.Generation.Text, sourceSuffix(n.Generation.IsFallback()))
	case storefront.SizeReady:
		fmt.Fprintln(w, n.Generation.Text)
	case storefront.ProductCreated:
		fmt.Fprintf(w, "created %s\n", n.Product.ID)
	case storefront.CheckedOut:
		fmt.Fprintf(w, "checked out %d items, total %s %s\n", n.Totals.ItemCount, n.Totals.Formatted(), n.Totals.Total.Currency)
	}
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\n", p.ID, p.Name, p.Type, p.Size, p.Price, p.Price.Currency)
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, c domain.Cart, totals domain.Totals) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE")
	for _, l := range c.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ProductID, l.Name, l.Quantity, l.Price)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "items: %d  total: %s %s\n", totals.ItemCount, totals.Formatted(), totals.Total.Currency)
}
