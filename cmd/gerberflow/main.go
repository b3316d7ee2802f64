// Command gerberflow parses a Gerber Layer Format file and prints a summary
// of its graphics stream.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	gerber "gerberflow"
	"gerberflow/driver"
)

var (
	flagDigest bool
	flagQuiet  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gerberflow",
		Short: "Read and summarize Gerber Layer Format files",
	}
	root.AddCommand(newParseCmd())
	return root
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Gerber file and print a summary of its graphics stream",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	addParseFlags(cmd.Flags())
	return cmd
}

func addParseFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&flagDigest, "digest", false, "compute and print the file's MD5 content digest")
	fs.BoolVar(&flagQuiet, "quiet", false, "suppress structured logging")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if flagQuiet {
		logger = zerolog.Nop()
	}

	d, err := driver.OpenFile(args[0], driver.WithLogger(logger), driver.WithDigest(flagDigest))
	if err != nil {
		return err
	}
	result, err := d.Parse()
	if err != nil {
		return fmt.Errorf("gerberflow: %w", err)
	}

	printSummary(cmd, result)
	return nil
}

func printSummary(cmd *cobra.Command, result *gerber.Result) {
	out := cmd.OutOrStdout()
	bounds := result.Stream.Bounds()
	fmt.Fprintf(out, "units:      %s\n", result.Units)
	fmt.Fprintf(out, "objects:    %d\n", len(result.Stream.Objects))
	if bounds.Empty() {
		fmt.Fprintln(out, "bounds:     (empty)")
	} else {
		fmt.Fprintf(out, "bounds:     [%.4f, %.4f] - [%.4f, %.4f]\n", bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY)
	}
	fmt.Fprintf(out, "attributes: %d file-level\n", result.FileAttributes.Len())
	for _, a := range result.FileAttributes.All() {
		marker := ""
		if !gerber.IsStandardAttributeName(a.Name) {
			marker = " (custom)"
		}
		fmt.Fprintf(out, "  %s = %v%s\n", a.Name, a.Values, marker)
	}
	if result.MD5 != "" {
		fmt.Fprintf(out, "md5:        %s\n", result.MD5)
	}
}
