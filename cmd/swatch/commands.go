package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/swatch/internal/app"
	"github.com/five82/swatch/internal/config"
	"github.com/five82/swatch/internal/logtail"
	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
}

func (g *globalFlags) options() app.Options {
	return app.Options{ConfigPath: g.configPath, PrefsPath: g.prefsPath}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var (
		repriceSeconds int
		product        state.Product
	)

	root := &cobra.Command{
		Use:   "swatch",
		Short: "Build and price decorated apparel quotes in the terminal",
		Long: `swatch keeps a pricing session (product, selections, price and saved
quotes) in one store, persists it between runs and prices it from
configurable formulas or a remote pricing API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := g.options()
			opts.RepriceEvery = repriceSeconds
			opts.Product = product
			return app.Run(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ~/.config/swatch/config.toml)")
	pf.StringVar(&g.prefsPath, "prefs", "", "preferences file (default ~/.config/swatch/prefs.toml)")

	f := root.Flags()
	f.IntVar(&repriceSeconds, "reprice", 0, "reprice/auto-save interval in seconds (default 30)")
	f.StringVar(&product.ID, "product", "", "product id to load at startup")
	f.StringVar(&product.Name, "name", "", "product display name")
	f.StringVar(&product.StyleNumber, "style", "", "product style number")
	f.StringVar(&product.Category, "category", "", "pricing category for the product")
	f.Float64Var(&product.BasePrice, "base-price", 0, "product base price")
	f.StringSliceVar(&product.Colors, "colors", nil, "available colors (comma separated)")
	f.StringSliceVar(&product.Sizes, "sizes", nil, "available sizes (comma separated)")

	root.AddCommand(
		newQuotesCmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newLogsCmd(g),
	)
	return root
}

func newQuotesCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "List saved quotes, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.Open(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			quotes := selectors.RecentQuotes(env.Store.State(), limit)
			return writeQuotes(cmd.OutOrStdout(), quotes)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum quotes to list")
	return cmd
}

func writeQuotes(w io.Writer, quotes []state.Quote) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(w, "No saved quotes.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRODUCT\tMETHOD\tQTY\tTOTAL\tUPDATED")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t$%.2f\t%s\n",
			shortID(q.ID), q.Name, q.Product.Name, q.Selections.EmbellishmentType,
			q.Selections.Quantity, q.Pricing.TotalPrice, q.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the persisted pricing state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.Open(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := encodeExport(env.Store.Export(), format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// encodeExport renders exp as JSON or YAML. YAML goes through the JSON form
// so both use the same field names.
func encodeExport(exp state.Export, format string) ([]byte, error) {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	switch strings.ToLower(format) {
	case "json", "":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("encode export: %w", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode export: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func newImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the persisted state with an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			exp, err := decodeExport(data)
			if err != nil {
				return err
			}

			env, err := app.Open(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Store.Import(exp); err != nil {
				return fmt.Errorf("import state: %w", err)
			}
			if !env.Persister.Flush() {
				return fmt.Errorf("import state: write to storage failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d saved quotes.\n", selectors.QuoteCount(env.Store.State()))
			return nil
		},
	}
}

// decodeExport accepts JSON or YAML export files.
func decodeExport(data []byte) (state.Export, error) {
	var exp state.Export
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &exp); err != nil {
			return state.Export{}, fmt.Errorf("parse import: %w", err)
		}
		return exp, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return state.Export{}, fmt.Errorf("parse import: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return state.Export{}, fmt.Errorf("parse import: %w", err)
	}
	if err := json.Unmarshal(asJSON, &exp); err != nil {
		return state.Export{}, fmt.Errorf("parse import: %w", err)
	}
	return exp, nil
}

func newLogsCmd(g *globalFlags) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the swatch log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out, err := logtail.Read(cfg.LogPath(), lines)
			if err != nil {
				return err
			}
			out = logtail.ColorizeLines(logtail.Filter(out, level), logtail.DefaultPalette())
			for _, line := range out {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "number of lines to read (0 for all)")
	cmd.Flags().StringVarP(&level, "level", "l", "", "minimum level: debug, info, warn or error")
	return cmd
}
