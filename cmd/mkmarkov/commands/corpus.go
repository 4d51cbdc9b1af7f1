package commands

import (
	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/cli"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Corpus maintenance",
}

// corpusInfo is the report of 'corpus info'.
type corpusInfo struct {
	Store  string `json:"store" yaml:"store"`
	Notes  int    `json:"notes" yaml:"notes"`
	Cursor string `json:"cursor,omitempty" yaml:"cursor,omitempty"`
}

var corpusInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the number of stored notes and the fetch cursor",
	Args:  cobra.NoArgs,
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

		ctx := cmd.Context()
		n, err := store.Count(ctx)
		if err != nil {
			return err
		}
		cursor, err := store.Cursor(ctx)
		if err != nil {
			return err
		}
		return outputResult(cmd, corpusInfo{Store: c.Corpus, Notes: n, Cursor: cursor})
	},
}

var corpusClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every note and the fetch cursor",
	Args:  cobra.NoArgs,
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

		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Removed %d notes", n)
		return nil
	},
}

func init() {
	corpusCmd.AddCommand(corpusInfoCmd)
	corpusCmd.AddCommand(corpusClearCmd)
}
