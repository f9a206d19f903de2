// Package deezer is the track source backed by the public Deezer REST API.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.deezer.com"

	// questionPoolSize is how many chart tracks a single question samples.
	questionPoolSize = 25
)

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ core.TrackSource = (*Client)(nil)

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}
}

type apiTrack struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Artist  struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Cover       string `json:"cover"`
		CoverMedium string `json:"cover_medium"`
	} `json:"album"`
}

func (t apiTrack) toSource() core.SourceTrack {
	cover := t.Album.CoverMedium
	if cover == "" {
		cover = t.Album.Cover
	}
	return core.SourceTrack{
		ExternalID: strconv.FormatInt(t.ID, 10),
		Title:      t.Title,
		Artist:     t.Artist.Name,
		PreviewURL: t.Preview,
		CoverURL:   cover,
	}
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type chartResponse struct {
	Tracks struct {
		Data []apiTrack `json:"data"`
	} `json:"tracks"`
	Error *apiError `json:"error"`
}

type searchResponse struct {
	Data  []apiTrack `json:"data"`
	Error *apiError  `json:"error"`
}

// FetchTracksByGenre reads the editorial chart of the genre and tops it up
// from a ranked catalog search when the chart has fewer than n usable tracks.
// It is best effort: fewer than n tracks is not an error.
func (c *Client) FetchTracksByGenre(ctx context.Context, genre domain.Genre, n int) ([]core.SourceTrack, error) {
	if n <= 0 {
		return []core.SourceTrack{}, nil
	}
	logger := log.With().Str("module", "deezer").Stringer("genre", genre).Logger()

	var chart chartResponse
	chartErr := c.get(ctx, fmt.Sprintf("/editorial/%d/charts", int(genre)), url.Values{
		"limit": {strconv.Itoa(n)},
	}, &chart, func() *apiError { return chart.Error })
	if chartErr != nil {
		logger.Warn().Err(chartErr).Msg("chart request failed, falling back to search")
	}

	out := make([]core.SourceTrack, 0, n)
	seen := make(map[string]struct{}, n)
	collect := func(tracks []apiTrack) {
		for _, t := range tracks {
			if len(out) >= n {
				return
			}
			st := t.toSource()
			if !st.Usable() {
				continue
			}
			if _, dup := seen[st.ExternalID]; dup {
				continue
			}
			seen[st.ExternalID] = struct{}{}
			out = append(out, st)
		}
	}
	collect(chart.Tracks.Data)
	if len(out) >= n {
		return out, nil
	}

	var search searchResponse
	searchErr := c.get(ctx, "/search", url.Values{
		"q":     {fmt.Sprintf("genre:%q", genre.SearchTerm())},
		"limit": {strconv.Itoa(n)},
		"order": {"RANKING"},
	}, &search, func() *apiError { return search.Error })
	if searchErr != nil {
		if chartErr != nil {
			return nil, fmt.Errorf("%w: deezer: %v", domain.ErrUpstream, searchErr)
		}
		logger.Warn().Err(searchErr).Int("have", len(out)).Msg("search fallback failed")
		return out, nil
	}
	collect(search.Data)
	logger.Debug().Int("want", n).Int("got", len(out)).Msg("tracks fetched")
	return out, nil
}

// GenerateQuestion samples the genre chart and builds one multiple choice
// question of the given kind about a random track of it.
func (c *Client) GenerateQuestion(ctx context.Context, genre domain.Genre, kind domain.QuestionKind) (*domain.QuizQuestion, error) {
	fetched, err := c.FetchTracksByGenre(ctx, genre, questionPoolSize)
	if err != nil {
		return nil, err
	}
	pool := core.UsableTracks(fetched)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: empty %s chart", domain.ErrInsufficientTracks, genre)
	}
	return core.BuildQuestion(pool, pool[rand.IntN(len(pool))], kind, rand.Shuffle)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, into any, apiErr func() *apiError) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if e := apiErr(); e != nil {
		return fmt.Errorf("deezer error %d %s: %s", e.Code, e.Type, e.Message)
	}
	return nil
}
