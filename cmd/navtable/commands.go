package main

import (
	"fmt"
	"strings"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/pkg/memhost"
	"github.com/goliatone/go-navigator/pkg/routetable"
	"github.com/goliatone/go-navigator/tree"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "navtable",
		Short:         "Inspect navigator route tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newValidateCmd(),
		newRoutesCmd(),
		newTraceCmd(),
		newSchemaCmd(),
		newURLCmd(),
	)
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate FILE...",
		Short:   "Load and validate layered route table files",
		Example: "  navtable validate routes.yaml local.toml",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := routetable.LoadLayered(args...)
			if err != nil {
				return err
			}
			t, err := tree.Build(table.Routes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d routes from %d files\n", t.Len(), len(args))
			return nil
		},
	}
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes FILE...",
		Short: "List the routes of layered route table files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := routetable.LoadLayered(args...)
			if err != nil {
				return err
			}
			t, err := tree.Build(table.Routes)
			if err != nil {
				return err
			}
			writer := tablewriter.NewWriter(cmd.OutOrStdout())
			writer.SetHeader([]string{"route", "params", "subroute", "url", "title"})
			t.Walk(func(node *tree.Node) bool {
				writer.Append([]string{
					node.Path,
					strings.Join(t.RequiredParams(node), ","),
					yesNo(node.SubRoute),
					yesNo(node.UpdateURL),
					node.Title,
				})
				return true
			})
			writer.Render()
			return nil
		},
	}
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace ROUTE FILE...",
		Short: "Show which layer defines a top-level route",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := routetable.LoadStack(args[1:]...)
			if err != nil {
				return err
			}
			payload, err := stack.Trace(args[0]).ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of route table files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := routetable.SchemaJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}

func newURLCmd() *cobra.Command {
	var files []string
	var location string
	cmd := &cobra.Command{
		Use:     "url ROUTE [KEY=VALUE...]",
		Short:   "Print the URL a navigation would write",
		Example: "  navtable url settings.profile id=7 --table routes.yaml",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return fmt.Errorf("at least one --table is required")
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			table, err := routetable.LoadLayered(files...)
			if err != nil {
				return err
			}
			n, err := nav.New(memhost.New(location), table.Options()...)
			if err != nil {
				return err
			}
			if err := n.Start(); err != nil {
				return err
			}
			url, err := n.BuildURL(args[0], params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&files, "table", "t", nil, "route table file, repeat to layer")
	cmd.Flags().StringVar(&location, "from", "/", "location the navigator starts from")
	return cmd
}

func parseParams(args []string) (nav.RouteParams, error) {
	params := nav.RouteParams{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("param %q must be KEY=VALUE", arg)
		}
		params[key] = value
	}
	return params, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
