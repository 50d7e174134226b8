// Letterboxd API implementation of [Service]
//
// Letterboxd API response types based on https://api-docs.letterboxd.com/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	opAuthenticate = "authenticate"
	opSearch       = "search"
	opListEntries  = "list_entries"
	opGetList      = "get_list"
	opUpdateList   = "update_list"

	filmSearchItem = "FilmSearchItem"
	messageError   = "Error"
)

// LetterboxdFilmSummary is the compact film object embedded in search results and list entries.
type LetterboxdFilmSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseYear int    `json:"releaseYear"`
}

func (f LetterboxdFilmSummary) toFilm() models.Film {
	return models.Film{ID: f.ID, Name: f.Name, ReleaseYear: f.ReleaseYear}
}

// LetterboxdSearchItem is one polymorphic search result; only film items carry Film.
type LetterboxdSearchItem struct {
	Type string                 `json:"type"`
	Film *LetterboxdFilmSummary `json:"film,omitempty"`
}

// LetterboxdSearchResponse represents GET /search.
type LetterboxdSearchResponse struct {
	Next  string                 `json:"next,omitempty"`
	Items []LetterboxdSearchItem `json:"items"`
}

// LetterboxdListEntry is one film in a list.
type LetterboxdListEntry struct {
	Rank int                   `json:"rank,omitempty"`
	Film LetterboxdFilmSummary `json:"film"`
}

// LetterboxdListEntriesResponse represents GET /list/{id}/entries.
type LetterboxdListEntriesResponse struct {
	Next  string                `json:"next,omitempty"`
	Items []LetterboxdListEntry `json:"items"`
}

type letterboxdMember struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// LetterboxdList represents GET /list/{id}.
type LetterboxdList struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	FilmCount   int              `json:"filmCount"`
	Published   bool             `json:"published"`
	Ranked      bool             `json:"ranked"`
	Description string           `json:"description,omitempty"`
	Owner       letterboxdMember `json:"owner"`
}

type listUpdateEntry struct {
	Film string `json:"film"`
}

// LetterboxdListUpdateRequest is the PATCH /list/{id} body.
type LetterboxdListUpdateRequest struct {
	Name          string            `json:"name"`
	Entries       []listUpdateEntry `json:"entries,omitempty"`
	FilmsToRemove []string          `json:"filmsToRemove,omitempty"`
}

// LetterboxdMessage is a per-request status message returned by update endpoints.
type LetterboxdMessage struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// LetterboxdListUpdateResponse represents the PATCH /list/{id} response.
type LetterboxdListUpdateResponse struct {
	Data     LetterboxdList      `json:"data"`
	Messages []LetterboxdMessage `json:"messages"`
}

// LetterboxdOpts configures a [LetterboxdService].
type LetterboxdOpts struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client // transport is wrapped with request signing; nil uses http.DefaultTransport
}

// LetterboxdService implements the Service interface for the Letterboxd API.
// Every request is signed; list updates additionally need an access token from [LetterboxdService.Authenticate].
type LetterboxdService struct {
	baseURL    string
	oauth      *oauth2.Config
	signed     *http.Client
	httpClient *http.Client
	token      *oauth2.Token
}

// NewLetterboxdService creates a new Letterboxd service with the given API credentials.
func NewLetterboxdService(opts LetterboxdOpts) (*LetterboxdService, error) {
	if opts.APIKey == "" || opts.APISecret == "" {
		return nil, fmt.Errorf("%w: letterboxd api_key and api_secret", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = shared.DefaultBaseURL
	}

	var base http.RoundTripper
	var timeout = defaultTimeout
	if opts.HTTPClient != nil {
		base = opts.HTTPClient.Transport
		if opts.HTTPClient.Timeout > 0 {
			timeout = opts.HTTPClient.Timeout
		}
	}

	signed := &http.Client{
		Transport: newSigningTransport(opts.APIKey, opts.APISecret, base),
		Timeout:   timeout,
	}

	return &LetterboxdService{
		baseURL: baseURL,
		oauth: &oauth2.Config{
			ClientID:     opts.APIKey,
			ClientSecret: opts.APISecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + "/auth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		signed:     signed,
		httpClient: signed,
	}, nil
}

// Name returns the service name.
func (s *LetterboxdService) Name() string {
	return "Letterboxd"
}

// Authenticated reports whether an access token is held.
func (s *LetterboxdService) Authenticated() bool {
	return s.token != nil
}

// Authenticate performs the OAuth2 password grant against /auth/token.
//
// The token exchange itself goes through the signing transport. Subsequent requests carry the
// bearer token and refresh it automatically.
func (s *LetterboxdService) Authenticate(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return shared.NewServiceError(shared.KindFatal, opAuthenticate, 0,
			fmt.Errorf("%w: username and password", shared.ErrMissingCredentials))
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, s.signed)
	token, err := s.oauth.PasswordCredentialsToken(tokenCtx, username, password)
	if err != nil {
		status := 0
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		return shared.NewServiceError(shared.KindFatal, opAuthenticate, status,
			fmt.Errorf("%w: %v", shared.ErrAuthFailed, err))
	}

	s.token = token
	s.httpClient = &http.Client{
		Transport: &oauth2.Transport{
			Source: s.oauth.TokenSource(tokenCtx, token),
			Base:   s.signed.Transport,
		},
		Timeout: s.signed.Timeout,
	}
	return nil
}

// doRequest performs a signed request and decodes a JSON response into result.
//
// Failures are returned as [*shared.ServiceError] tagged by [classify].
func (s *LetterboxdService) doRequest(ctx context.Context, op, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return shared.NewServiceError(shared.KindFatal, op, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return shared.NewServiceError(shared.KindFatal, op, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		kind := shared.KindTransient
		if ctx.Err() != nil {
			kind = shared.KindFatal
			err = ctx.Err()
		} else if isTokenRefreshFailure(err) {
			kind = shared.KindFatal
			err = fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		return shared.NewServiceError(kind, op, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind, sentinel := classify(op, resp.StatusCode)
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return shared.NewServiceError(kind, op, resp.StatusCode, fmt.Errorf("%w: %s", sentinel, errResp.Message))
		}
		return shared.NewServiceError(kind, op, resp.StatusCode, sentinel)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return shared.NewServiceError(shared.KindTransient, op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
		}
	}

	return nil
}

// classify maps an HTTP status to an error kind and sentinel.
//
// Search failures other than authentication only drop the one candidate; list failures abort the run.
func classify(op string, status int) (shared.ErrorKind, error) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.KindFatal, shared.ErrNotAuthenticated
	case status == http.StatusTooManyRequests || status >= 500:
		return shared.KindTransient, shared.ErrServiceUnavailable
	case op == opSearch && status == http.StatusNotFound:
		return shared.KindNoMatch, shared.ErrNoMatch
	case op == opSearch:
		return shared.KindTransient, shared.ErrAPIRequest
	case status == http.StatusNotFound:
		return shared.KindFatal, shared.ErrListNotFound
	default:
		return shared.KindFatal, shared.ErrAPIRequest
	}
}

func isTokenRefreshFailure(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re)
}

// SearchFilm returns the best autocomplete match for query.
//
// Calls GET /search?input={query}&perPage=1&searchMethod=Autocomplete&include=FilmSearchItem
func (s *LetterboxdService) SearchFilm(ctx context.Context, query string) (*models.Film, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.NewServiceError(shared.KindNoMatch, opSearch, 0, fmt.Errorf("%w: empty query", shared.ErrNoMatch))
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("perPage", "1")
	params.Set("searchMethod", "Autocomplete")
	params.Set("include", filmSearchItem)

	var response LetterboxdSearchResponse
	if err := s.doRequest(ctx, opSearch, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	for _, item := range response.Items {
		if item.Type == filmSearchItem && item.Film != nil && item.Film.ID != "" {
			film := item.Film.toFilm()
			return &film, nil
		}
	}

	return nil, shared.NewServiceError(shared.KindNoMatch, opSearch, 0, fmt.Errorf("%w for '%s'", shared.ErrNoMatch, query))
}

// ListEntries fetches one page of list entries.
//
// Calls GET /list/{id}/entries?perPage={n}&cursor={cursor}
func (s *LetterboxdService) ListEntries(ctx context.Context, listID, cursor string, perPage int) (*models.EntriesPage, error) {
	if listID == "" {
		return nil, shared.NewServiceError(shared.KindFatal, opListEntries, 0, fmt.Errorf("%w: list ID", shared.ErrMissingArgument))
	}

	params := url.Values{}
	if perPage > 0 {
		params.Set("perPage", strconv.Itoa(perPage))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	endpoint := fmt.Sprintf("/list/%s/entries", url.PathEscape(listID))
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var response LetterboxdListEntriesResponse
	if err := s.doRequest(ctx, opListEntries, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &models.EntriesPage{
		Films: make([]models.Film, 0, len(response.Items)),
		Next:  response.Next,
	}
	for _, entry := range response.Items {
		if entry.Film.ID == "" {
			continue
		}
		page.Films = append(page.Films, entry.Film.toFilm())
	}

	return page, nil
}

// GetList retrieves list metadata.
//
// Calls GET /list/{id}
func (s *LetterboxdService) GetList(ctx context.Context, listID string) (*models.List, error) {
	var response LetterboxdList
	endpoint := fmt.Sprintf("/list/%s", url.PathEscape(listID))
	if err := s.doRequest(ctx, opGetList, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	owner := response.Owner.DisplayName
	if owner == "" {
		owner = response.Owner.Username
	}

	return &models.List{
		ID:          response.ID,
		Name:        response.Name,
		FilmCount:   response.FilmCount,
		Published:   response.Published,
		Ranked:      response.Ranked,
		OwnerName:   owner,
		Description: response.Description,
	}, nil
}

// UpdateList adds and removes films in one PATCH, preserving the list's current name.
//
// Calls GET /list/{id} then PATCH /list/{id}. Requires [LetterboxdService.Authenticate].
func (s *LetterboxdService) UpdateList(ctx context.Context, listID string, toAdd, toRemove []string) error {
	if s.token == nil {
		return shared.NewServiceError(shared.KindFatal, opUpdateList, 0,
			fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated))
	}

	list, err := s.GetList(ctx, listID)
	if err != nil {
		return err
	}

	request := LetterboxdListUpdateRequest{
		Name:          list.Name,
		Entries:       make([]listUpdateEntry, len(toAdd)),
		FilmsToRemove: toRemove,
	}
	for i, id := range toAdd {
		request.Entries[i] = listUpdateEntry{Film: id}
	}

	var response LetterboxdListUpdateResponse
	endpoint := fmt.Sprintf("/list/%s", url.PathEscape(listID))
	if err := s.doRequest(ctx, opUpdateList, http.MethodPatch, endpoint, request, &response); err != nil {
		return err
	}

	var problems []string
	for _, msg := range response.Messages {
		if msg.Type == messageError {
			problems = append(problems, fmt.Sprintf("%s (%s)", msg.Title, msg.Code))
		}
	}
	if len(problems) > 0 {
		return shared.NewServiceError(shared.KindFatal, opUpdateList, 0,
			fmt.Errorf("%w: %s", shared.ErrUpdateRejected, strings.Join(problems, "; ")))
	}

	return nil
}
