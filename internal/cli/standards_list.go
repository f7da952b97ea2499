package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/standards"
	"stdinspector/internal/standards/checks"
)

var standardsListQuiet bool

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "List and describe standards",
	Long: `Discover which standards exist and what each one checks.
Standards are evaluated by "stdinspector check".

Examples:
  stdinspector standards list
  stdinspector standards show PY001
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var standardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available standards in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range checks.Default().List() {
			if standardsListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), s.Descriptor().Code)
				continue
			}
			printStandard(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

var standardsShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show details of one standard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := checks.Default()
		s, ok := reg.Lookup(args[0])
		if !ok {
			return inspecterr.Configuration("unknown standard %s", args[0])
		}
		printStandard(cmd.OutOrStdout(), s)
		return nil
	},
}

func printStandard(w io.Writer, s standards.Standard) {
	d := s.Descriptor()
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "STANDARD: %s\n", d.Code)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, d.Description)
	fmt.Fprintf(w, "Category:       %s\n", d.Category)
	fmt.Fprintf(w, "Severity:       %s\n", d.Severity)
	fmt.Fprintf(w, "Requires:       %v\n", d.Standard)
	fmt.Fprintf(w, "Recommendation: %s\n", d.Recommendation)

	if cs, ok := s.(standards.ConfigurableStandard); ok {
		if opts := cs.Options(); len(opts) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Options:")
			for _, opt := range opts {
				def := opt.Default
				if def == "" {
					def = "\"\""
				}
				fmt.Fprintf(w, "  %s\n", opt.Name)
				fmt.Fprintf(w, "    Description: %s\n", opt.Description)
				fmt.Fprintf(w, "    Default:     %s\n", def)
			}
		}
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(standardsCmd)
	standardsCmd.AddCommand(standardsListCmd)
	standardsListCmd.Flags().BoolVarP(&standardsListQuiet, "quiet", "q", false, "Only print standard codes")
	standardsCmd.AddCommand(standardsShowCmd)
}
