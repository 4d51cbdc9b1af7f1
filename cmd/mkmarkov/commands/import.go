package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/corpus"
)

var (
	importTextQuery string
	importRepair    bool
)

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Load JSON/JSONL note dumps into the corpus",
	Long: `Load notes from JSON arrays or JSON Lines files into the corpus.

Directories are walked for .json, .jsonl and .ndjson files; a .corpusignore
file at the directory root excludes paths with gitignore syntax.

Each record is a note object with "id" and "text", or a bare string. Use
--text-query to pick the text out of other shapes with a jq expression.

Examples:
  mkmarkov import notes.json
  mkmarkov import ./dumps --text-query '.text // .renote.text'
  mkmarkov import broken.json --repair`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		store, db, err := openCorpus(c)
		if err != nil {
			return err
		}
		defer db.Close()

		opts := corpus.DecodeOptions{TextQuery: importTextQuery, Repair: importRepair, Logger: slog.Default()}
		ctx := cmd.Context()
		total, files := 0, 0
		for _, root := range args {
			paths, err := corpus.Files(root)
			if err != nil {
				return err
			}
			for _, p := range paths {
				notes, err := corpus.ReadFile(p, opts)
				if err != nil {
					return err
				}
				if err := store.Put(ctx, notes); err != nil {
					return fmt.Errorf("import %s: %w", p, err)
				}
				slog.Debug("imported file", "path", p, "notes", len(notes))
				total += len(notes)
				files++
			}
		}

		count, err := store.Count(ctx)
		if err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Imported %d notes from %d files (%d in corpus)", total, files, count)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTextQuery, "text-query", "", "jq expression selecting each record's text")
	importCmd.Flags().BoolVar(&importRepair, "repair", false, "repair malformed JSON instead of failing")
}
