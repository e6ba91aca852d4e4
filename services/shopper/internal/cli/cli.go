// Package cli implements the shopper subcommands on top of the storefront
// client and the local cart store.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/shopper/internal/cart"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/shopper/internal/client"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `usage: shopper <command> [flags]

commands:
  products [-search q] [-category id] [-sort newest|price_asc|price_desc|name_asc] [-min N] [-max N] [-in-stock]
  related <id> [-limit N]
  add <id> [-qty N]
  remove <id>
  set <id> <qty>
  cart
  clear
  checkout -name NAME -email EMAIL [-phone PHONE] -address ADDRESS
`

var ErrUsage = errors.New("invalid usage")

// Catalog is the part of the storefront API the shopper needs.
type Catalog interface {
	ListProducts() ([]client.Product, error)
	CategoryProducts(categoryID uuid.UUID) ([]client.Product, error)
	GetProduct(id uuid.UUID) (*client.Product, error)
	Related(id uuid.UUID, limit int) ([]client.Product, error)
	PlaceOrder(req client.OrderRequest) (string, error)
}

type App struct {
	catalog Catalog
	store   cart.Store
	out     io.Writer
	logger  *zap.Logger
}

func New(catalog Catalog, store cart.Store, out io.Writer, logger *zap.Logger) *App {
	return &App{
		catalog: catalog,
		store:   store,
		out:     out,
		logger:  logger,
	}
}

// Run executes one subcommand. args excludes the program name.
func (a *App) Run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "products":
		return a.products(rest)
	case "related":
		return a.related(rest)
	case "add":
		return a.add(rest)
	case "remove":
		return a.remove(rest)
	case "set":
		return a.set(rest)
	case "cart":
		return a.show()
	case "clear":
		return a.clear()
	case "checkout":
		return a.checkout(rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// parse lets flags appear before or after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if fs.NArg() == 0 {
			return positional, nil
		}

		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func productID(positional []string, want int) (uuid.UUID, error) {
	if len(positional) != want {
		return uuid.Nil, fmt.Errorf("%w: expected %d argument(s), got %d", ErrUsage, want, len(positional))
	}

	id, err := uuid.Parse(positional[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a product id", ErrUsage, positional[0])
	}

	return id, nil
}

func (a *App) products(args []string) error {
	fs := newFlagSet("products", a.out)
	search := fs.String("search", "", "match titles containing this text")
	category := fs.String("category", "", "only products in this category id")
	sortBy := fs.String("sort", client.SortNewest, "newest, price_asc, price_desc or name_asc")
	minPrice := fs.String("min", "", "minimum effective price")
	maxPrice := fs.String("max", "", "maximum effective price")
	inStock := fs.Bool("in-stock", false, "hide sold out products")

	if _, err := parse(fs, args); err != nil {
		return err
	}

	filter := client.Filter{Search: *search, Sort: *sortBy, InStock: *inStock}
	var err error
	if filter.MinPrice, err = optionalDecimal("min", *minPrice); err != nil {
		return err
	}
	if filter.MaxPrice, err = optionalDecimal("max", *maxPrice); err != nil {
		return err
	}

	var products []client.Product
	if *category != "" {
		categoryID, err := uuid.Parse(*category)
		if err != nil {
			return fmt.Errorf("%w: %q is not a category id", ErrUsage, *category)
		}
		products, err = a.catalog.CategoryProducts(categoryID)
		if err != nil {
			return err
		}
	} else {
		if products, err = a.catalog.ListProducts(); err != nil {
			return err
		}
	}

	a.printProducts(filter.Apply(products))
	return nil
}

func optionalDecimal(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: -%s must be a number", ErrUsage, name)
	}

	return d, nil
}

func (a *App) related(args []string) error {
	fs := newFlagSet("related", a.out)
	limit := fs.Int("limit", 4, "how many products to show")

	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := productID(positional, 1)
	if err != nil {
		return err
	}

	products, err := a.catalog.Related(id, *limit)
	if err != nil {
		return err
	}

	a.printProducts(products)
	return nil
}

func (a *App) add(args []string) error {
	fs := newFlagSet("add", a.out)
	qty := fs.Int("qty", 1, "units to add")

	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := productID(positional, 1)
	if err != nil {
		return err
	}

	product, err := a.catalog.GetProduct(id)
	if err != nil {
		return err
	}

	return a.mutate(func(c *cart.Cart) error {
		err := c.Add(cart.Item{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.EffectivePrice(),
			Image:     product.Image(),
			Stock:     product.Stock,
		}, *qty)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Added %d x %s to cart.\n", *qty, product.Title)
		return nil
	})
}

func (a *App) remove(args []string) error {
	id, err := productID(args, 1)
	if err != nil {
		return err
	}

	return a.mutate(func(c *cart.Cart) error {
		c.Remove(id)
		return nil
	})
}

func (a *App) set(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: set <id> <qty>", ErrUsage)
	}

	id, err := productID(args[:1], 1)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q is not a quantity", ErrUsage, args[1])
	}

	return a.mutate(func(c *cart.Cart) error {
		c.SetQuantity(id, qty)
		return nil
	})
}

func (a *App) clear() error {
	return a.mutate(func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

func (a *App) show() error {
	c, err := a.store.Load()
	if err != nil {
		return err
	}

	a.printCart(c)
	return nil
}

func (a *App) checkout(args []string) error {
	fs := newFlagSet("checkout", a.out)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")
	address := fs.String("address", "", "shipping address")

	if _, err := parse(fs, args); err != nil {
		return err
	}

	var missing []string
	for flagName, v := range map[string]string{"name": *name, "email": *email, "address": *address} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "-"+flagName)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: missing %s", ErrUsage, strings.Join(missing, ", "))
	}

	c, err := a.store.Load()
	if err != nil {
		return err
	}
	if c.Empty() {
		return errors.New("cart is empty")
	}

	req := client.OrderRequest{
		CustomerName:    strings.TrimSpace(*name),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(*email)),
		CustomerPhone:   strings.TrimSpace(*phone),
		ShippingAddress: strings.TrimSpace(*address),
		TotalPrice:      c.Total(),
		Items:           make([]client.OrderItem, len(c.Items)),
	}
	for i, item := range c.Items {
		req.Items[i] = client.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	orderID, err := a.catalog.PlaceOrder(req)
	if err != nil {
		a.logger.Warn("Checkout failed", zap.Error(err))
		return err
	}

	c.Clear()
	if err := a.store.Save(c); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Order placed successfully. Order id: %s\n", orderID)
	return nil
}

func (a *App) mutate(fn func(c *cart.Cart) error) error {
	c, err := a.store.Load()
	if err != nil {
		return err
	}

	if err := fn(c); err != nil {
		return err
	}

	if err := a.store.Save(c); err != nil {
		return err
	}

	a.printCart(c)
	return nil
}

func (a *App) printProducts(products []client.Product) {
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTOCK\t")
	for _, p := range products {
		badge := ""
		if p.IsNew {
			badge = " [new]"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%d\t\n", p.ID, p.Title, badge, p.EffectivePrice().StringFixed(2), p.Stock)
	}
	_ = w.Flush()
}

func (a *App) printCart(c *cart.Cart) {
	if c.Empty() {
		fmt.Fprintln(a.out, "Cart is empty.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL\t")
	for _, item := range c.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t\n",
			item.ProductID, item.Title, item.Quantity, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	_ = w.Flush()

	fmt.Fprintf(a.out, "%d item(s), total %s\n", c.Count(), c.Total().StringFixed(2))
}
