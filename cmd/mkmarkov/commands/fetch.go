package commands

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/corpus"
	"github.com/White-Green/MkMarkov/pkg/misskey"
)

var (
	fetchUsername string
	fetchResume   bool
	fetchDelay    time.Duration
	fetchBaseURL  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect a Misskey user's notes into the corpus",
	Long: `Collect a user's local notes from Misskey, newest first, 100 per page,
and store them in the corpus. Notes already in the corpus are replaced.

The id of the oldest note fetched is remembered; --resume continues below it,
so an interrupted fetch can pick up where it stopped.

The access token and host may also come from MISSKEY_API_KEY and
MISSKEY_INSTANCE_HOST.

Examples:
  mkmarkov fetch --username alice
  mkmarkov fetch --resume`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		username := c.Username
		if fetchUsername != "" {
			username = strings.TrimPrefix(fetchUsername, "@")
		}
		if username == "" {
			return fmt.Errorf("no username; use --username or 'mkmarkov config set username <name>'")
		}

		store, db, err := openCorpus(c)
		if err != nil {
			return err
		}
		defer db.Close()

		opts := []misskey.Option{misskey.WithPageDelay(fetchDelay), misskey.WithLogger(slog.Default())}
		if fetchBaseURL != "" {
			opts = append(opts, misskey.WithBaseURL(fetchBaseURL))
		}
		client := misskey.NewClient(c.MisskeyHost, c.APIKey, opts...)

		ctx := cmd.Context()
		user, err := client.ResolveUser(ctx, username, "")
		if err != nil {
			return err
		}
		slog.Info("fetching notes", "host", client.Host(), "username", username, "user_id", user.ID)

		untilID := ""
		if fetchResume {
			if untilID, err = store.Cursor(ctx); err != nil {
				return err
			}
		}

		start := time.Now()
		total, err := client.Collect(ctx, user.ID, untilID, func(page []misskey.Note) error {
			notes := make([]corpus.Note, len(page))
			for i, n := range page {
				notes[i] = corpus.Note{ID: n.ID, Text: n.Text, CreatedAt: n.CreatedAt}
			}
			if err := store.Put(ctx, notes); err != nil {
				return err
			}
			return store.SetCursor(ctx, page[len(page)-1].ID)
		})
		if err != nil {
			return fmt.Errorf("fetch stopped after %d notes: %w", total, err)
		}

		count, err := store.Count(ctx)
		if err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Fetched %d notes in %s (%d in corpus)", total, cli.FormatDuration(time.Since(start)), count)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchUsername, "username", "u", "", "account to fetch (overrides the context)")
	fetchCmd.Flags().BoolVar(&fetchResume, "resume", false, "continue below the oldest note fetched so far")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", misskey.DefaultPageDelay, "pause between pages")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", "", "API base URL (default https://<host>/api)")
}
