package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/modelfile"
	"github.com/White-Green/MkMarkov/pkg/segment"
)

var (
	buildName      string
	buildFormat    string
	buildCompress  bool
	buildSegmenter string
	buildWorkers   int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a Markov model from the corpus",
	Long: `Build a Markov model from every note in the corpus and save it to the
context's storage as models/<name>.<format>[.zst].

Examples:
  mkmarkov build
  mkmarkov build --name weekly --format json --compress
  mkmarkov build --segmenter space --workers 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("format") {
			c.Format = buildFormat
		}
		if flags.Changed("compress") {
			c.Compress = buildCompress
		}
		if flags.Changed("segmenter") {
			c.Segmenter = buildSegmenter
		}
		if flags.Changed("workers") {
			c.Workers = buildWorkers
		}
		opts, err := modelOptions(c)
		if err != nil {
			return err
		}
		seg, err := segment.ByName(c.Segmenter)
		if err != nil {
			return err
		}
		out, err := openStorage(c)
		if err != nil {
			return err
		}

		store, db, err := openCorpus(c)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		texts, err := store.Texts(ctx)
		if err != nil {
			return err
		}

		start := time.Now()
		counter, err := chain.BuildCorpus(ctx, texts, &chain.Builder{Segmenter: seg}, c.Workers)
		if err != nil {
			return err
		}
		model := counter.Model()
		slog.Debug("model built", "notes", len(texts), "elapsed", time.Since(start))

		path, err := modelfile.Save(ctx, out, buildName, model, opts)
		if err != nil {
			return err
		}
		st := model.Stats()
		cli.PrintSuccess(cmd.OutOrStdout(), "Built %s from %d notes in %s: %d transitions, %d words, %d functions",
			path, len(texts), cli.FormatDuration(time.Since(start)), st.Transitions, st.Words, st.Functions)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildName, "name", "n", modelfile.DefaultName, "model name")
	buildCmd.Flags().StringVar(&buildFormat, "format", "", "model file format (msgpack, json)")
	buildCmd.Flags().BoolVar(&buildCompress, "compress", false, "zstd-compress the model file")
	buildCmd.Flags().StringVar(&buildSegmenter, "segmenter", "", "word segmenter (ipa, space, rune)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "parallel workers (0: one per CPU)")
}
