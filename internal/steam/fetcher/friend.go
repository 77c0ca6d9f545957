package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/steamfriends/internal/setup/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrRequestFailed     = errors.New("friend list request failed")
	ErrUnexpectedStatus  = errors.New("unexpected friend list response status")
	ErrMalformedResponse = errors.New("malformed friend list response")
)

// friendListPath is the Steam Web API method returning a user's friend list.
const friendListPath = "/ISteamUser/GetFriendList/v0001/"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 4 << 20

// FriendListResponse is the body returned by GetFriendList.
type FriendListResponse struct {
	FriendsList *FriendsList `json:"friendslist"`
}

// FriendsList wraps the list of relationships.
type FriendsList struct {
	Friends []Friend `json:"friends"`
}

// Friend is a single relationship entry. Only SteamID is kept by the cache.
//
//nolint:tagliatelle // Steam returns snake_case
type Friend struct {
	SteamID      string `json:"steamid"`
	Relationship string `json:"relationship"`
	FriendSince  int64  `json:"friend_since"`
}

// FriendFetcher handles retrieval of friend lists from the Steam Web API.
type FriendFetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	requestSem *semaphore.Weighted
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewFriendFetcher creates a FriendFetcher for the configured API key and endpoint.
// A nil httpClient falls back to http.DefaultClient.
func NewFriendFetcher(cfg *config.Steam, httpClient *http.Client, logger *zap.Logger) *FriendFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &FriendFetcher{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.RequestTimeoutDuration(),
		requestSem: semaphore.NewWeighted(int64(max(cfg.MaxConcurrentRequests, 1))),
		tracer:     otel.Tracer("steamfriends/fetcher"),
		logger:     logger.Named("friend_fetcher"),
	}
}

// GetFriendIDs issues one request for steamID's friend list and returns the
// IDs it contains. Any transport error, non-200 status or unparsable body is
// returned as an error and no partial result is produced.
func (f *FriendFetcher) GetFriendIDs(ctx context.Context, steamID string) ([]string, error) {
	ctx, span := f.tracer.Start(ctx, "steam.GetFriendList",
		trace.WithAttributes(attribute.String("steam.id", steamID)))
	defer span.End()

	friendIDs, err := f.fetch(ctx, steamID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "friend list request failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("steam.friend_count", len(friendIDs)))

	return friendIDs, nil
}

func (f *FriendFetcher) fetch(ctx context.Context, steamID string) ([]string, error) {
	// Waiting for a slot does not count against the request timeout
	if err := f.requestSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer f.requestSem.Release(1)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(steamID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, redactKey(err, f.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrRequestFailed, err)
	}

	friendIDs, err := ParseFriendIDs(body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Fetched friend list",
		zap.String("steamID", steamID),
		zap.Int("friendCount", len(friendIDs)))

	return friendIDs, nil
}

// ParseFriendIDs decodes a GetFriendList body and returns the unique,
// non-empty friend IDs in response order.
func ParseFriendIDs(body []byte) ([]string, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var response FriendListResponse
	if err := sonic.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if response.FriendsList == nil {
		return nil, fmt.Errorf("%w: missing friendslist", ErrMalformedResponse)
	}

	seen := make(map[string]struct{}, len(response.FriendsList.Friends))
	friendIDs := make([]string, 0, len(response.FriendsList.Friends))

	for _, friend := range response.FriendsList.Friends {
		if friend.SteamID == "" {
			continue
		}
		if _, ok := seen[friend.SteamID]; ok {
			continue
		}

		seen[friend.SteamID] = struct{}{}
		friendIDs = append(friendIDs, friend.SteamID)
	}

	return friendIDs, nil
}

// requestURL builds the GetFriendList URL for steamID.
func (f *FriendFetcher) requestURL(steamID string) string {
	params := url.Values{}
	params.Set("key", f.apiKey)
	params.Set("steamid", steamID)
	params.Set("relationship", "friend")

	return f.baseURL + friendListPath + "?" + params.Encode()
}

// redactKey strips the API key out of transport errors, which embed the request URL.
func redactKey(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), apiKey, "REDACTED"))
}
