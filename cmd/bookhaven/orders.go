package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/bookhaven"
)

// Run executes the orders command.
func (c *OrdersCmd) Run(deps *Dependencies) error {
	filter := bookhaven.OrderFilter{Limit: c.Limit}
	if c.Email != "" {
		filter.Email = &c.Email
	}

	orders, err := deps.Orders.FindOrders(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return err
	}

	if len(orders) == 0 {
		fmt.Fprintln(deps.Stdout, "No orders found.")
		return nil
	}

	for _, o := range orders {
		books := 0
		for _, item := range o.Items {
			books += item.Quantity
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d books  $%s  %s\n",
			o.ID,
			o.CreatedAt.Local().Format(time.DateTime),
			o.Customer.Name,
			books,
			o.Total.StringFixed(2),
			o.Payment.Label(),
		)
	}
	return nil
}
