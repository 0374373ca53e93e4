package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/karstmaps/threewords/internal/models"
	"golang.org/x/time/rate"
)

// What3WordsHost is the fixed host of the what3words API.
const What3WordsHost = "api.what3words.com"

const (
	forwardPath = "/v2/forward"
	reversePath = "/v2/reverse"
	defaultLang = "en"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// What3WordsClient implements forward and reverse geocoding against the
// what3words v2 API. One instance is safe for concurrent use: all fields
// are set at construction and never mutated.
type What3WordsClient struct {
	client     HTTPClient    // HTTP client for making requests
	forwardURL string        // Absolute URL of the forward endpoint
	reverseURL string        // Absolute URL of the reverse endpoint
	apiKey     string        // API key with geocoding access
	log        *slog.Logger  // Logger for logging operations
	limiter    *rate.Limiter // Rate limiter
}

// Common errors for the what3words client.
var (
	ErrMissingAPIKey = errors.New("what3words API key is required")
	ErrBadQuery      = errors.New("search string must be 'word.word.word'")
	ErrAuthFailed    = errors.New("what3words API rejected the API key")
	ErrQueryFailed   = errors.New("what3words API rejected the query")
	ErrParse         = errors.New("error parsing result")
)

// wordsPattern accepts exactly three groups of Unicode letters separated by
// single literal dots. Digits, underscores and whitespace are rejected.
var wordsPattern = regexp.MustCompile(`^\p{L}+\.\p{L}+\.\p{L}+$`)

// coordinate decodes a latitude or longitude the API serves either as a
// JSON number or as a quoted string.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", raw, err)
	}

	*c = coordinate(value)
	return nil
}

// what3wordsResponse covers both the success and the failure shape of the
// v2 API. On success the body itself is the single matched record; on
// failure only status carries a non-zero code.
type what3wordsResponse struct {
	Words    string `json:"words"`
	Geometry *struct {
		Lat coordinate `json:"lat"`
		Lng coordinate `json:"lng"`
	} `json:"geometry"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// NewWhat3WordsClient creates a client with a default HTTP transport.
// It fails if the API key is empty.
func NewWhat3WordsClient(apiKey string, rateLimit int, log *slog.Logger) (*What3WordsClient, error) {
	const timeout = 10

	return NewWhat3WordsClientWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewWhat3WordsClientWithClient allows injecting a custom HTTP client, which
// is also where timeout, proxy and TLS overrides live.
func NewWhat3WordsClientWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) (*What3WordsClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &What3WordsClient{
		client:     client,
		forwardURL: fmt.Sprintf("https://%s%s", What3WordsHost, forwardPath),
		reverseURL: fmt.Sprintf("https://%s%s", What3WordsHost, reversePath),
		apiKey:     apiKey,
		log:        log,
		limiter:    limiter,
	}, nil
}

// Geocode resolves a three-word label into coordinates.
// The label must have the shape 'word.word.word'; anything else fails with
// ErrBadQuery before any network call is made. The check is purely
// syntactic, it does not verify the label resolves to a real square.
func (w *What3WordsClient) Geocode(ctx context.Context, words, lang string) (*models.Location, error) {
	if !wordsPattern.MatchString(words) {
		return nil, ErrBadQuery
	}

	params := url.Values{}
	params.Set("addr", words)
	params.Set("lang", normalizeLang(lang))
	params.Set("key", w.apiKey)

	return w.call(ctx, w.forwardURL, params)
}

// GeocodeAll is the sequence-shaped variant of Geocode. The address scheme
// guarantees exactly one match, so the slice always has length one.
func (w *What3WordsClient) GeocodeAll(ctx context.Context, words, lang string) ([]*models.Location, error) {
	location, err := w.Geocode(ctx, words, lang)
	if err != nil {
		return nil, err
	}

	return []*models.Location{location}, nil
}

// Reverse resolves coordinates into the three-word label of the grid square
// containing the point. Every point on the covered surface has a label, so
// a well-formed request always yields a result.
func (w *What3WordsClient) Reverse(ctx context.Context, point models.Coordinates, lang string) (*models.Location, error) {
	params := url.Values{}
	params.Set("coords", point.String())
	params.Set("lang", normalizeLang(lang))
	params.Set("key", w.apiKey)

	return w.call(ctx, w.reverseURL, params)
}

// ReverseAll is the sequence-shaped variant of Reverse.
func (w *What3WordsClient) ReverseAll(ctx context.Context, point models.Coordinates, lang string) ([]*models.Location, error) {
	location, err := w.Reverse(ctx, point, lang)
	if err != nil {
		return nil, err
	}

	return []*models.Location{location}, nil
}

// call performs one GET against the given endpoint and parses the reply.
func (w *What3WordsClient) call(ctx context.Context, endpoint string, params url.Values) (*models.Location, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := endpoint + "?" + params.Encode()
	w.log.DebugContext(ctx, "what3words request URL", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	w.log.DebugContext(ctx, "what3words raw response", "body", string(body))

	location, err := w.parse(body)
	if err != nil {
		// The API reports most failures in the body, including on non-2xx
		// replies. Fall back to the HTTP status only when the body carried
		// no usable status object.
		if resp.StatusCode != http.StatusOK && !errors.Is(err, ErrAuthFailed) && !errors.Is(err, ErrQueryFailed) {
			w.log.ErrorContext(ctx, "what3words API error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("what3words API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, err
	}

	return location, nil
}

// parse maps a response body to a Location. A non-zero status code marks a
// failure: 401 means the key was rejected, everything else is a bad query.
// A success body must carry a geometry object.
func (w *What3WordsClient) parse(body []byte) (*models.Location, error) {
	var result what3wordsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode what3words response: %w", err)
	}

	if result.Status.Code != 0 {
		if result.Status.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrAuthFailed, result.Status.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, result.Status.Message)
	}

	if result.Geometry == nil {
		return nil, ErrParse
	}

	return &models.Location{
		Words: result.Words,
		Point: models.Coordinates{
			Latitude:  float64(result.Geometry.Lat),
			Longitude: float64(result.Geometry.Lng),
		},
		Raw: json.RawMessage(body),
	}, nil
}

func normalizeLang(lang string) string {
	if lang == "" {
		return defaultLang
	}

	return strings.ToLower(lang)
}
