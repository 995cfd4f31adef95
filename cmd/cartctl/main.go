// Command cartctl edits the persisted cart from a terminal.
//
//	cartctl list
//	cartctl add ID
//	cartctl remove ID
//	cartctl update ID AMOUNT
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/shopcart/internal/bootstrap"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/notify"
	"github.com/nikolayk812/shopcart/internal/service"
	"golang.org/x/text/message"
)

const usage = `usage:
  cartctl list
  cartctl add ID
  cartctl remove ID
  cartctl update ID AMOUNT
`

var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (runErr error) {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}

	log, err := bootstrap.NewLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}

	tp, shutdownTracing, err := bootstrap.NewTracerProvider(ctx, cfg, "cartctl", stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}
	defer func() {
		runErr = errors.Join(runErr, shutdownTracing(context.Background()))
	}()

	store, closeStore, err := bootstrap.NewStore(ctx, cfg, bootstrap.Deps{
		Log:            log,
		Notifier:       notify.NewWriter(stderr),
		TracerProvider: tp,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}
	defer closeStore()

	cart, err := dispatch(ctx, store, args)
	if err != nil {
		// mutation failures were already reported by the notifier
		return err
	}

	printCart(stdout, cart, domain.Money{Currency: cfg.CurrencyUnit()}, message.NewPrinter(cfg.LanguageTag()))
	return nil
}

func dispatch(ctx context.Context, store *service.Store, args []string) (domain.Cart, error) {
	switch {
	case args[0] == "list" && len(args) == 1:
		return store.Cart(), nil

	case args[0] == "add" && len(args) == 2:
		id, err := parseID(args[1])
		if err != nil {
			return domain.Cart{}, err
		}
		return store.AddProduct(ctx, id)

	case args[0] == "remove" && len(args) == 2:
		id, err := parseID(args[1])
		if err != nil {
			return domain.Cart{}, err
		}
		return store.RemoveProduct(ctx, id)

	case args[0] == "update" && len(args) == 3:
		id, err := parseID(args[1])
		if err != nil {
			return domain.Cart{}, err
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return domain.Cart{}, fmt.Errorf("%w: amount[%s]: %w", errUsage, args[2], err)
		}
		return store.UpdateProductAmount(ctx, domain.AmountUpdate{ProductID: id, Amount: amount})
	}

	return domain.Cart{}, errUsage
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id[%s]: %w", errUsage, s, err)
	}
	return id, nil
}

// printCart lists items in cart order; price uses currency only, for display.
func printCart(w io.Writer, cart domain.Cart, money domain.Money, p *message.Printer) {
	if cart.Len() == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tAMOUNT")
	for _, item := range cart.Items {
		money.Amount = item.Price
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", item.ID, item.Title, money.Format(p), item.Amount)
	}
	_ = tw.Flush()
}
