package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
)

const defaultSearchURL = "https://api.pexels.com/videos/search"

// Fetcher finds and downloads stock clips for an idea. Portrait
// orientation is preferred; when no portrait results can be found the
// search is retried once without the orientation constraint.
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	searchURL  string
}

// New creates a new footage Fetcher.
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		searchURL:  defaultSearchURL,
	}
}

type searchResponse struct {
	Videos []struct {
		VideoFiles []videoFile `json:"video_files"`
	} `json:"videos"`
}

type videoFile struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Link   string `json:"link"`
}

// Fetch searches for clips matching the idea and downloads up to the
// configured maximum into workDir. The returned paths are in download
// order; an empty result is the caller's signal that assembly is
// impossible.
func (f *Fetcher) Fetch(ctx context.Context, best *idea.Idea, niche, workDir string) ([]string, error) {
	apiKey := os.Getenv("PEXELS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY not set")
	}

	terms := append([]string{best.Title}, best.KeyPoints...)
	terms = append(terms, best.Keywords...)
	if len(terms) > 3 {
		terms = terms[:3]
	}

	var urls []string
	for _, term := range terms {
		found, err := f.search(ctx, apiKey, term, true)
		if err != nil {
			log.Printf("[footage] ⚠️  Search %q failed: %v", term, err)
			continue
		}
		urls = append(urls, found...)
	}

	if len(urls) < f.cfg.Footage.MinClipsFound {
		log.Println("[footage] Not enough vertical footage found, trying broader terms...")
		for _, term := range []string{niche, "social media", "vertical video", "shorts"} {
			if len(urls) >= f.cfg.Footage.MaxClips {
				break
			}
			found, err := f.search(ctx, apiKey, term, true)
			if err != nil {
				log.Printf("[footage] ⚠️  Search %q failed: %v", term, err)
				continue
			}
			urls = append(urls, found...)
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no stock footage found")
	}

	clips := f.download(ctx, urls, workDir)
	if len(clips) == 0 {
		return nil, fmt.Errorf("no stock footage could be downloaded")
	}
	log.Printf("[footage] ✅ Downloaded %d clip(s)", len(clips))
	return clips, nil
}

// search queries the stock API for one term. Portrait searches that
// exhaust their retries fall back to an orientation-free search.
func (f *Fetcher) search(ctx context.Context, apiKey, term string, portrait bool) ([]string, error) {
	query := url.Values{}
	query.Set("query", term)
	query.Set("per_page", fmt.Sprintf("%d", f.cfg.Footage.PerPage))
	if portrait {
		query.Set("orientation", "portrait")
	} else {
		query.Set("orientation", "landscape")
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		urls, err := f.searchOnce(ctx, apiKey, query.Encode(), portrait)
		if err == nil {
			return urls, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}
		log.Printf("[footage] Search attempt %d for %q failed: %v — retrying...", attempt, term, err)
		time.Sleep(2 * time.Second)
	}

	if portrait {
		log.Printf("[footage] No portrait results for %q, retrying without orientation preference", term)
		return f.search(ctx, apiKey, term, false)
	}
	return nil, lastErr
}

func (f *Fetcher) searchOnce(ctx context.Context, apiKey, rawQuery string, portrait bool) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.searchURL+"?"+rawQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	var urls []string
	for _, video := range result.Videos {
		files := append([]videoFile{}, video.VideoFiles...)
		sort.Slice(files, func(i, j int) bool { return files[i].Height > files[j].Height })

		if portrait {
			var vertical []videoFile
			for _, vf := range files {
				if vf.Height > vf.Width {
					vertical = append(vertical, vf)
				}
			}
			if len(vertical) > 0 {
				files = vertical
			}
		}
		if len(files) > 0 {
			urls = append(urls, files[0].Link)
		}
	}
	return urls, nil
}

// download streams clips to disk until enough have been saved. Each URL
// gets a bounded number of attempts; undersized files are discarded.
func (f *Fetcher) download(ctx context.Context, urls []string, workDir string) []string {
	var clips []string
	for i, clipURL := range urls {
		if len(clips) >= f.cfg.Footage.MaxClips {
			break
		}

		path := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", i))
		var err error
		for attempt := 1; attempt <= 3; attempt++ {
			err = f.downloadOne(ctx, clipURL, path)
			if err == nil {
				clips = append(clips, path)
				break
			}
			if ctx.Err() != nil {
				return clips
			}
			log.Printf("[footage] Download %d attempt %d failed: %v — retrying...", i+1, attempt, err)
			time.Sleep(2 * time.Second)
		}
	}
	return clips
}

func (f *Fetcher) downloadOne(ctx context.Context, clipURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", clipURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	// A real clip is never this small; tiny responses are error pages.
	if written < 1000 {
		os.Remove(path)
		return fmt.Errorf("downloaded file too small (%d bytes)", written)
	}
	return nil
}
