package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nitpy-cse/assetreg/internal/client"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/table"
)

// integerAssetColumns are sent as JSON numbers.
var integerAssetColumns = map[string]bool{
	"year_of_purchase": true,
	"quantity":         true,
}

// ViewFlags control the client-side table: global search, sort and export.
type ViewFlags struct {
	Search string
	Sort   string
	Order  string
	Export string
}

func (f *ViewFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Search, "search", f.Search, "Show only rows containing this text in any column")
	fs.StringVar(&f.Sort, "sort", f.Sort, "Sort the table by this column")
	fs.StringVar(&f.Order, "order", "asc", "Sort order for --sort (asc,desc)")
	fs.StringVar(&f.Export, "export", f.Export, "Also write every loaded row to this .xlsx file")
}

func (f *ViewFlags) sortOrder() (table.SortOrder, error) {
	switch strings.ToLower(f.Order) {
	case "", "asc":
		return table.Ascending, nil
	case "desc":
		return table.Descending, nil
	}
	return table.Unsorted, fmt.Errorf("--order must be asc or desc, not %q", f.Order)
}

// show applies the flags to a loaded view, renders it and exports it.
func show[T any](out io.Writer, v *table.View[T], f *ViewFlags) error {
	v.SetFilter(f.Search)
	if f.Sort != "" {
		order, err := f.sortOrder()
		if err != nil {
			return err
		}
		if err := v.SetSort(f.Sort, order); err != nil {
			return err
		}
	}
	if err := v.Render(out); err != nil {
		return err
	}
	if f.Export != "" {
		if err := exportFile(v, f.Export); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d rows to %s\n", v.Len(), f.Export)
	}
	return nil
}

// AssetListFlags are passed to the server as list parameters.
type AssetListFlags struct {
	View         ViewFlags
	ServerSort   string
	ServerOrder  string
	FilterColumn string
	FilterValue  string
	Limit        int
	Offset       int
}

func (f *AssetListFlags) BindFlags(fs *pflag.FlagSet) {
	f.View.BindFlags(fs)
	fs.StringVar(&f.ServerSort, "server-sort", f.ServerSort, "Column the server orders by")
	fs.StringVar(&f.ServerOrder, "server-order", f.ServerOrder, "Server ordering direction (asc,desc)")
	fs.StringVar(&f.FilterColumn, "filter-column", f.FilterColumn, "Column the server filters on (exact match)")
	fs.StringVar(&f.FilterValue, "filter-value", f.FilterValue, "Value for --filter-column")
	fs.IntVar(&f.Limit, "limit", f.Limit, "Maximum rows to fetch (server default 50)")
	fs.IntVar(&f.Offset, "offset", f.Offset, "Rows to skip")
}

func (f *AssetListFlags) params() client.AssetParams {
	return client.AssetParams{
		Sort:         f.ServerSort,
		Order:        f.ServerOrder,
		FilterColumn: f.FilterColumn,
		FilterValue:  f.FilterValue,
		Limit:        f.Limit,
		Offset:       f.Offset,
	}
}

// showAssets fetches the assets and renders them.
func showAssets(ctx context.Context, out io.Writer, c *client.Client, f *AssetListFlags) error {
	assets, err := c.FetchAssets(ctx, f.params())
	if err != nil {
		return err
	}
	v := table.NewAssetView()
	v.SetRows(assets)
	return show(out, v, &f.View)
}

func NewAssetsCommand(g *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List and manage assets",
	}
	cmd.AddCommand(
		newAssetsListCommand(g),
		newAssetsAddCommand(g),
		newAssetsEditCommand(g),
		newAssetsDeleteCommand(g),
	)
	return cmd
}

func newAssetsListCommand(g *GlobalFlags) *cobra.Command {
	f := &AssetListFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the asset table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.Client()
			if err != nil {
				return err
			}
			return showAssets(cmd.Context(), cmd.OutOrStdout(), c, f)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newAssetsAddCommand(g *GlobalFlags) *cobra.Command {
	var a model.Asset
	list := &AssetListFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.Client()
			if err != nil {
				return err
			}
			id, err := c.CreateAsset(cmd.Context(), &a)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created asset %d\n", id)
			return showAssets(cmd.Context(), cmd.OutOrStdout(), c, list)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&a.YearOfPurchase, "year", 0, "Year of purchase")
	fs.StringVar(&a.ItemName, "item", "", "Item name")
	fs.IntVar(&a.Quantity, "quantity", 0, "Quantity")
	fs.StringVar(&a.InventoryNumber, "inventory", "", "Inventory number")
	fs.StringVar(&a.RoomNumber, "room", "", "Room number")
	fs.StringVar(&a.FloorNumber, "floor", "", "Floor number")
	fs.StringVar(&a.BuildingBlock, "building", "", "Building block")
	fs.StringVar(&a.Remarks, "remarks", "", "Remarks")
	fs.StringVar(&a.DepartmentOrigin, "origin", model.OriginOwn, "Department origin (own,other)")
	list.BindFlags(fs)
	return cmd
}

func newAssetsEditCommand(g *GlobalFlags) *cobra.Command {
	var sets []string
	list := &AssetListFlags{}

	cmd := &cobra.Command{
		Use:   "edit ID --set column=value [--set column=value ...]",
		Short: "Change some columns of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssetFields(sets)
			if err != nil {
				return err
			}

			c, err := g.Client()
			if err != nil {
				return err
			}
			n, err := c.EditAsset(cmd.Context(), id, fields)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No asset with id %d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated asset %d\n", id)
			}
			return showAssets(cmd.Context(), cmd.OutOrStdout(), c, list)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column=value to change; repeatable")
	list.BindFlags(cmd.Flags())
	return cmd
}

func newAssetsDeleteCommand(g *GlobalFlags) *cobra.Command {
	list := &AssetListFlags{}

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := g.Client()
			if err != nil {
				return err
			}
			n, err := c.DeleteAsset(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d asset(s)\n", n)
			return showAssets(cmd.Context(), cmd.OutOrStdout(), c, list)
		},
	}
	list.BindFlags(cmd.Flags())
	return cmd
}

// parseAssetFields turns column=value pairs into an update body. Integer
// columns are sent as numbers.
func parseAssetFields(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("nothing to change, use --set column=value")
	}
	fields := make(map[string]any, len(sets))
	for _, s := range sets {
		col, val, ok := strings.Cut(s, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --set %q, want column=value", s)
		}
		if !model.IsEditableAssetColumn(col) {
			return nil, fmt.Errorf("column %q cannot be edited", col)
		}
		if integerAssetColumns[col] {
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%s must be a whole number", col)
			}
			fields[col] = n
			continue
		}
		fields[col] = val
	}
	return fields, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
