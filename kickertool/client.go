package kickertool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the public tournament API of the remote platform.
	DefaultBaseURL = "https://api.kickertool.de/v1/public/tournaments"

	requestTimeout = 10 * time.Second
)

// Client issues authenticated calls against the remote tournament API and
// classifies every outcome into the error taxonomy of this package. The
// remote system is treated as untrusted and occasionally inconsistent; the
// sync layer decides what to do with each classified outcome.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchTournament pulls the nested tournament snapshot. The courts field of
// the snapshot is unreliable (observed empirically: it may be absent even
// when courts exist); callers must use FetchCourts for court data.
func (c *Client) FetchTournament(ctx context.Context, tournamentID string, includeMatches, includeStandings, includeCourts bool) (*TournamentSnapshot, error) {
	params := url.Values{}
	params.Set("includeMatches", boolParam(includeMatches))
	params.Set("includeStandings", boolParam(includeStandings))
	params.Set("includeCourts", boolParam(includeCourts))

	body, err := c.get(ctx, "/"+tournamentID, params)
	if err != nil {
		return nil, err
	}

	var snapshot TournamentSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, ErrMalformedResponse
	}
	if err := json.Unmarshal(body, &snapshot.Raw); err != nil {
		return nil, ErrMalformedResponse
	}
	return &snapshot, nil
}

// FetchCourts pulls the court list through the dedicated endpoint. This is
// the only trustworthy source of court data and courts_count.
func (c *Client) FetchCourts(ctx context.Context, tournamentID string, includeMatchDetails bool) ([]CourtDTO, error) {
	params := url.Values{}
	if includeMatchDetails {
		params.Set("includeMatchDetails", "true")
	}

	body, err := c.get(ctx, "/"+tournamentID+"/courts", params)
	if err != nil {
		return nil, err
	}

	var courts []CourtDTO
	if err := json.Unmarshal(body, &courts); err != nil {
		return nil, ErrMalformedResponse
	}
	return courts, nil
}

// FetchEntries pulls the tournament-wide entry list, or the discipline-scoped
// list when disciplineID is non-empty.
func (c *Client) FetchEntries(ctx context.Context, tournamentID, disciplineID string) ([]EntryDTO, error) {
	path := "/" + tournamentID + "/entries"
	if disciplineID != "" {
		path = "/" + tournamentID + "/discipline/" + disciplineID + "/entries"
	}

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var entries []EntryDTO
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, ErrMalformedResponse
	}
	return entries, nil
}

func (c *Client) FetchGroupStandings(ctx context.Context, tournamentID, groupID string) ([]StandingDTO, error) {
	body, err := c.get(ctx, "/"+tournamentID+"/groups/"+groupID+"/standings", nil)
	if err != nil {
		return nil, err
	}

	var standings []StandingDTO
	if err := json.Unmarshal(body, &standings); err != nil {
		return nil, ErrMalformedResponse
	}
	return standings, nil
}

func (c *Client) FetchMatch(ctx context.Context, tournamentID, matchID string) (*MatchDTO, error) {
	body, err := c.get(ctx, "/"+tournamentID+"/matches/"+matchID, nil)
	if err != nil {
		return nil, err
	}

	var match MatchDTO
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, ErrMalformedResponse
	}
	return &match, nil
}

// SubmitMatchResult pushes a result upstream. With live=true the score is a
// live update that leaves the match running; otherwise it is the final
// result that closes the match. The remote answers 412 when the match is not
// in running state, classified as ErrMatchNotRunning.
func (c *Client) SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result MatchResult, live bool) (*MatchDTO, error) {
	endpoint := "/result"
	if live {
		endpoint = "/live-result"
	}

	payload, err := json.Marshal(map[string]interface{}{"result": result})
	if err != nil {
		return nil, fmt.Errorf("failed to encode match result: %w", err)
	}

	body, err := c.do(ctx, http.MethodPut, "/"+tournamentID+"/matches/"+matchID+endpoint, nil, payload)
	if err != nil {
		return nil, err
	}

	var match MatchDTO
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, ErrMalformedResponse
	}
	return &match, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("kickertool API call", slog.String("method", method), slog.String("url", requestURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusPreconditionFailed:
		return nil, ErrMatchNotRunning
	default:
		return nil, &RemoteError{StatusCode: resp.StatusCode}
	}
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &TransportError{Err: err}
}

func boolParam(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
