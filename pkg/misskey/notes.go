package misskey

import (
	"context"
	"fmt"
	"time"
)

// User is the subset of a Misskey user object used here.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Host     *string `json:"host"`
}

// Note is the subset of a Misskey note object used here. Text is nil for
// renotes and file-only notes.
type Note struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdAt"`
	Text      *string `json:"text"`
}

// ResolveUser looks up a user by username. host selects a remote user; an
// empty host searches this instance.
func (c *Client) ResolveUser(ctx context.Context, username, host string) (User, error) {
	params := map[string]any{
		"username": username,
		"detail":   false,
	}
	if host != "" {
		params["host"] = host
	}
	var users []User
	if err := c.http.request(ctx, "users/search-by-username-and-host", params, &users); err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	if len(users) > 0 {
		return users[0], nil
	}
	return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
}

// NotesQuery selects a page of a user's notes, newest first.
type NotesQuery struct {
	UserID string
	// UntilID returns only notes older than this note.
	UntilID string
	Limit   int
	// Local restricts the page to notes posted on this instance.
	Local bool
}

// Notes fetches one page of notes.
func (c *Client) Notes(ctx context.Context, q NotesQuery) ([]Note, error) {
	limit := q.Limit
	if limit <= 0 || limit > PageLimit {
		limit = PageLimit
	}
	params := map[string]any{
		"userId": q.UserID,
		"limit":  limit,
		"local":  q.Local,
	}
	if q.UntilID != "" {
		params["untilId"] = q.UntilID
	}
	var notes []Note
	if err := c.http.request(ctx, "users/notes", params, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Collect pages backwards through a user's local notes, starting below
// untilID (or at the newest note when untilID is empty), and hands each page
// to fn. It stops at the first empty page and returns the number of notes
// seen. Pages are spaced by the configured page delay.
func (c *Client) Collect(ctx context.Context, userID, untilID string, fn func([]Note) error) (int, error) {
	total := 0
	for {
		page, err := c.Notes(ctx, NotesQuery{UserID: userID, UntilID: untilID, Local: true})
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}
		if err := fn(page); err != nil {
			return total, err
		}
		total += len(page)
		untilID = page[len(page)-1].ID
		c.config.logger.Info("misskey: fetched page", "notes", len(page), "total", total, "until", untilID)

		if c.config.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(c.config.pageDelay):
			}
		}
	}
}
