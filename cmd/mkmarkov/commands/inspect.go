package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/modelfile"
)

var (
	inspectName  string
	inspectLimit int
	inspectWidth int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <token>",
	Short: "Show the successors of one token",
	Long: `Show what the model emits after a token, most frequent first.

Tokens are written as start, end, word("text"), call("name") and
body("name"); a bare string is a word. For call and body tokens the
parameter table of the function is shown too.

Examples:
  mkmarkov inspect start
  mkmarkov inspect おはよう
  mkmarkov inspect 'call("x2")'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := chain.ParseToken(args[0])
		if err != nil {
			return fmt.Errorf("parse token %q: %w", args[0], err)
		}
		c, err := getContext()
		if err != nil {
			return err
		}
		model, path, err := loadModel(cmd.Context(), c, inspectName)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderInspect(model, tok, path, inspectLimit, inspectWidth))
		return nil
	},
}

// renderInspect renders the successor and parameter panel of tok.
func renderInspect(m *chain.Model, tok chain.Token, path string, limit, width int) string {
	succ := slices.Clone(m.Successors(tok))
	slices.SortStableFunc(succ, func(a, b chain.Transition) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return chain.Compare(a.To, b.To)
	})
	var total uint64
	for _, t := range succ {
		total += t.Count
	}
	lines := make([]string, len(succ))
	for i, t := range succ {
		lines[i] = fmt.Sprintf("%-8s %7s  %s", fmt.Sprint(t.Count), cli.Percent(t.Count, total), t.To)
	}

	panel := cli.Panel{
		Styles:   cli.NewStyles(cli.DefaultTheme),
		Title:    tok.String(),
		Status:   fmt.Sprintf("%d successors", len(succ)),
		Sections: []cli.Section{{Label: "successors", Lines: lines, Max: limit}},
		Footer:   fmt.Sprintf("%s  total %d", path, total),
	}

	if tok.Kind == chain.KindCall || tok.Kind == chain.KindBody {
		for _, pk := range m.Parameters(tok.Text) {
			var keyTotal uint64
			for _, ch := range pk.Choices {
				keyTotal += ch.Count
			}
			rows := make([]string, len(pk.Choices))
			for i, ch := range pk.Choices {
				rows[i] = fmt.Sprintf("%-8s %7s  %s", fmt.Sprint(ch.Count), cli.Percent(ch.Count, keyTotal), ch.Value)
			}
			panel.Sections = append(panel.Sections, cli.Section{Label: "param " + pk.Key, Lines: rows, Max: limit})
		}
	}
	return panel.Render(width)
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectName, "name", "n", modelfile.DefaultName, "model name")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "lines shown per section (0: all)")
	inspectCmd.Flags().IntVar(&inspectWidth, "width", 72, "panel width")
}
