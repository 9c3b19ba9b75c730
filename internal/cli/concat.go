package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/col/internal/merge"
)

// ConcatOptions holds flags for the concat command.
type ConcatOptions struct {
	*RootOptions
	Separator string
	Stats     bool

	// RunIDs allows overriding the run id generator (for testing).
	RunIDs merge.RunIDGenerator
}

// NewConcatCommand creates the concat command.
func NewConcatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConcatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "concat <file>...",
		Short: "Merge timestamped files line by line",
		Long: `Merge timestamped files line by line.

Each line is "<timestamp> <data...>". All files must have the same number of
lines and the same timestamp at every line; the merged line is the timestamp
followed by the data of each file, in argument order.

Example:
  col concat left.txt right.txt
  col concat --separator '|' --stats a.log b.log c.log`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcat(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Separator, "separator", merge.DefaultSeparator, "separator written between output fields")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print a per-file summary to stderr after merging")

	return cmd
}

func runConcat(opts *ConcatOptions, files []string, cmd *cobra.Command) error {
	sep := opts.Separator
	if !cmd.Flags().Changed("separator") && opts.Config != nil && opts.Config.Separator != "" {
		sep = opts.Config.Separator
	}

	m := &merge.Merger{
		Separator: sep,
		RunIDs:    opts.RunIDs,
	}
	if opts.Logger != nil {
		opts.Logger.Info("merging files", "count", len(files))
	}
	stats, err := m.Run(files, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if opts.Stats {
		formatter := &OutputFormatter{
			Format: opts.Format,
			Writer: cmd.ErrOrStderr(),
		}
		if opts.Format == "json" {
			return formatter.Success(stats)
		}
		renderStats(cmd.ErrOrStderr(), stats)
	}
	return nil
}

// renderStats prints one row per input file and a total footer.
func renderStats(w io.Writer, stats merge.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "File", "Lines", "Bytes"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	var total int64
	for i, f := range stats.Files {
		total += f.Bytes
		table.Append([]string{
			strconv.Itoa(i + 1),
			f.Path,
			strconv.Itoa(f.Lines),
			strconv.FormatInt(f.Bytes, 10),
		})
	}
	table.SetFooter([]string{"", "records", strconv.Itoa(stats.Records), strconv.FormatInt(total, 10)})
	table.Render()
}
