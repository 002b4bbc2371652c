package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagwater/internal/ingest"
	"tagwater/internal/script"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Ingest a tagging script into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveWorkDir(workDir)
			if err != nil {
				return err
			}
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), dir, args[0])
			if err != nil {
				return err
			}

			if !res.OK {
				ctx.reportFailure(cmd, res)
				if res.Commit != nil && len(res.Commit.FailedCopies) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d file copies also failed\n", len(res.Commit.FailedCopies))
				}
				return errReported
			}
			printLines(cmd.ErrOrStderr(), ansiYellow, res.Messages)

			out := cmd.OutOrStdout()
			groups := 0
			for _, g := range res.Commit.Groups {
				if g.Err == nil {
					groups++
				}
			}
			fmt.Fprintf(out, "Committed %d files and %d groups (run %s)\n", len(res.Commit.Files), groups, res.RunID)
			if n := len(res.Commit.FailedCopies); n > 0 {
				fmt.Fprintf(out, "%d file copies failed; their entries exist without stored bytes\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workDir, "workdir", "w", "", "Directory script paths are relative to (default: current directory)")
	return cmd
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var workDir string
	var format string

	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Parse and validate a script without committing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unsupported format %q (want table, json or yaml)", format)
			}
			dir, err := resolveWorkDir(workDir)
			if err != nil {
				return err
			}
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			doc, res, err := p.Check(cmd.Context(), dir, args[0])
			if err != nil {
				return err
			}
			if !res.OK {
				ctx.reportFailure(cmd, res)
				return errReported
			}

			switch format {
			case "json":
				return writeJSON(cmd, doc)
			case "yaml":
				return writeYAML(cmd, doc)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDocument(doc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&workDir, "workdir", "w", "", "Directory script paths are relative to (default: current directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}

// reportFailure prints the failure lines of a run followed by tag suggestions.
func (c *commandContext) reportFailure(cmd *cobra.Command, res *ingest.Result) {
	stderr := cmd.ErrOrStderr()
	printLines(stderr, ansiRed, res.Messages)
	if len(res.UnknownTags) == 0 || c.store == nil {
		return
	}
	printLines(stderr, ansiYellow, suggestTags(cmd.Context(), c.store, res.UnknownTags))
}

func resolveWorkDir(flag string) (string, error) {
	if dir := strings.TrimSpace(flag); dir != "" {
		return dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return dir, nil
}

func renderDocument(doc *script.Document) string {
	var b strings.Builder

	fileRows := make([][]string, 0, len(doc.Files))
	for i, f := range doc.Files {
		fileRows = append(fileRows, []string{
			strconv.Itoa(i + 1),
			f.Path,
			strings.Join(f.Tags.Sorted(), " "),
			strconv.Itoa(f.Line),
		})
	}
	b.WriteString(renderTable("Files", []string{"#", "Path", "Tags", "Line"}, fileRows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
	b.WriteString("\n")

	if len(doc.Groups) > 0 {
		groupRows := make([][]string, 0, len(doc.Groups))
		for i, g := range doc.Groups {
			groupRows = append(groupRows, []string{
				strconv.Itoa(i + 1),
				strings.Join(doc.MemberPaths(g), ", "),
				strings.Join(g.Tags.Sorted(), " "),
				yesNo(g.Autotag),
			})
		}
		b.WriteString(renderTable("Groups", []string{"#", "Members", "Tags", "Autotag"}, groupRows,
			[]columnAlignment{alignRight}))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d files, %d groups, %d distinct tags\n", len(doc.Files), len(doc.Groups), len(doc.Tags))
	return b.String()
}
