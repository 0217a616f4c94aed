package trends

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Client looks up currently-discussed post titles for a niche. Results
// only enrich the idea-generation prompt, so every failure here is
// soft: callers log and continue without trends.
type Client struct {
	reddit *reddit.Client
}

// New creates a trends Client. Reddit script-app credentials are read
// from REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME and
// REDDIT_PASSWORD; without them a read-only client is used.
func New() (*Client, error) {
	id := os.Getenv("REDDIT_CLIENT_ID")
	secret := os.Getenv("REDDIT_CLIENT_SECRET")

	var (
		rc  *reddit.Client
		err error
	)
	if id != "" && secret != "" {
		rc, err = reddit.NewClient(reddit.Credentials{
			ID:       id,
			Secret:   secret,
			Username: os.Getenv("REDDIT_USERNAME"),
			Password: os.Getenv("REDDIT_PASSWORD"),
		})
	} else {
		rc, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &Client{reddit: rc}, nil
}

// Top returns up to n post titles from this week's top search results
// for the niche.
func (c *Client) Top(ctx context.Context, niche string, n int) ([]string, error) {
	posts, _, err := c.reddit.Subreddit.SearchPosts(ctx, niche, "", &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: n},
			Time:        "week",
		},
		Sort: "top",
	})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	log.Printf("[trends] Found %d trending posts for %q", len(titles), niche)
	return titles, nil
}
