package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"cartflow/pkg/backend"
	"cartflow/pkg/cart"
	"cartflow/pkg/config"
	"cartflow/pkg/logger"
)

// session holds the store opened for one command invocation.
type session struct {
	store   *cart.Store
	release func() error
}

type opener func(ctx context.Context) (*session, error)

// openFromEnv opens the storage selected by CARTFLOW_* variables and loads
// the persisted cart.
func openFromEnv(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), "cartctl", nil)
	storage, release, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	store := cart.NewStore(storage, cart.WithKey(cfg.Storage.Key), cart.WithLogger(log))
	if err := store.Load(ctx); err != nil {
		return nil, multierr.Append(err, release())
	}
	return &session{store: store, release: release}, nil
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(openFromEnv)
}

func newRootCmdWith(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Inspect and edit the persisted shopping cart",
		SilenceUsage: true,
	}

	// withStore runs fn against a loaded store and prints the cart afterwards.
	withStore := func(fn func(ctx context.Context, s *cart.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			sess, err := open(ctx)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, sess.release()) }()

			if err := fn(ctx, sess.store); err != nil {
				return err
			}
			if err := sess.store.LastWriteErr(); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), sess.store)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE:  withStore(func(context.Context, *cart.Store) error { return nil }),
	}

	var title, image, price string
	add := &cobra.Command{
		Use:   "add ID",
		Short: "Add a product, or one more unit of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := cart.Product{ID: args[0], Title: title, ImageURL: image}
			if price != "" {
				d, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid price %q: %w", price, err)
				}
				p.Price = d
			}
			return withStore(func(ctx context.Context, s *cart.Store) error {
				return s.AddToCart(ctx, p)
			})(cmd, args)
		},
	}
	add.Flags().StringVar(&title, "title", "", "display name")
	add.Flags().StringVar(&image, "image-url", "", "image reference")
	add.Flags().StringVar(&price, "price", "", "unit price")

	inc := &cobra.Command{
		Use:   "inc ID",
		Short: "Add one unit to a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *cart.Store) error {
				return s.Increment(ctx, args[0])
			})(cmd, args)
		},
	}

	dec := &cobra.Command{
		Use:   "dec ID",
		Short: "Remove one unit from a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *cart.Store) error {
				return s.Decrement(ctx, args[0])
			})(cmd, args)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, s *cart.Store) error {
			return s.Clear(ctx)
		}),
	}

	root.AddCommand(list, add, inc, dec, clearCmd)
	return root
}

func printCart(w io.Writer, s *cart.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range s.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, it.Title, it.Quantity, it.Price.StringFixed(2), it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", s.Count(), s.Total().StringFixed(2))
	return tw.Flush()
}
