package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/karstmaps/threewords/internal/geocoding"
	"github.com/karstmaps/threewords/internal/models"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func newTestClient(t *testing.T, client geocoding.HTTPClient) *geocoding.What3WordsClient {
	t.Helper()

	w3w, err := geocoding.NewWhat3WordsClientWithClient(
		client,
		"test-api-key",
		rate.NewLimiter(rate.Inf, 0),
		slog.Default(),
	)
	require.NoError(t, err)

	return w3w
}

func TestNewWhat3WordsClient(t *testing.T) {
	t.Run("missing API key fails", func(t *testing.T) {
		client, err := geocoding.NewWhat3WordsClient("", 5, slog.Default())

		require.Nil(t, client)
		require.ErrorIs(t, err, geocoding.ErrMissingAPIKey)
	})

	t.Run("valid key succeeds", func(t *testing.T) {
		client, err := geocoding.NewWhat3WordsClient("test-api-key", 5, slog.Default())

		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

func TestWhat3WordsClient_Geocode(t *testing.T) {
	ctx := t.Context()

	t.Run("successful forward lookup", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), geocoding.What3WordsHost)
				assert.Contains(t, req.URL.Path, "/v2/forward")
				assert.Equal(t, "index.home.raft", req.URL.Query().Get("addr"))
				assert.Equal(t, "en", req.URL.Query().Get("lang"))
				assert.Equal(t, "test-api-key", req.URL.Query().Get("key"))
				assert.Equal(t, "application/json", req.Header.Get("Accept"))

				responseBody := `{"words":"index.home.raft","geometry":{"lat":51.521251,"lng":-0.203586}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "")

		require.NoError(t, err)
		require.NotNil(t, location)
		assert.Equal(t, "index.home.raft", location.Words)
		assert.InEpsilon(t, 51.521251, location.Point.Latitude, 0.0001)
		assert.InEpsilon(t, -0.203586, location.Point.Longitude, 0.0001)
		assert.JSONEq(t, `{"words":"index.home.raft","geometry":{"lat":51.521251,"lng":-0.203586}}`, string(location.Raw))
	})

	t.Run("language is lowercased", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "de", req.URL.Query().Get("lang"))

				responseBody := `{"words":"welt.wort.karte","geometry":{"lat":52.52,"lng":13.405}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "welt.wort.karte", "DE")

		require.NoError(t, err)
		assert.Equal(t, "welt.wort.karte", location.Words)
	})

	t.Run("malformed query fails without a network call", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called for a malformed query")
				return &http.Response{}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "not a valid query", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorIs(t, err, geocoding.ErrBadQuery)
	})

	t.Run("string coordinates are coerced", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `{"words":"index.home.raft","geometry":{"lat":"51.521251","lng":"-0.203586"}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "en")

		require.NoError(t, err)
		assert.InEpsilon(t, 51.521251, location.Point.Latitude, 0.0001)
		assert.InEpsilon(t, -0.203586, location.Point.Longitude, 0.0001)
	})

	t.Run("zero coordinate is preserved", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `{"words":"prosecco.zebra.codes","geometry":{"lat":0,"lng":6.305}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "prosecco.zebra.codes", "en")

		require.NoError(t, err)
		assert.InDelta(t, 0.0, location.Point.Latitude, 0.0000001)
		assert.InEpsilon(t, 6.305, location.Point.Longitude, 0.0001)
	})

	t.Run("invalid API key", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `{"status":{"code":401,"message":"Invalid key"}}`
				return &http.Response{
					StatusCode: http.StatusUnauthorized,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorIs(t, err, geocoding.ErrAuthFailed)
		assert.ErrorContains(t, err, "Invalid key")
	})

	t.Run("missing geometry in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"words":"index.home.raft"}`)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorIs(t, err, geocoding.ErrParse)
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`not json`)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorContains(t, err, "failed to decode what3words response")
	})

	t.Run("non-JSON body on HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusBadGateway,
					Body:       io.NopCloser(bytes.NewBufferString(`<html>bad gateway</html>`)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Geocode(ctx, "index.home.raft", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorContains(t, err, "what3words API returned status 502")
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		rateCtx, cancel := context.WithCancel(context.Background())
		cancel() // cancel immediately
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called when rate limit blocks")
				return &http.Response{}, nil
			},
		}

		w3w, err := geocoding.NewWhat3WordsClientWithClient(
			mockClient,
			"test-api-key",
			rate.NewLimiter(rate.Every(time.Second), 1),
			slog.Default(),
		)
		require.NoError(t, err)

		location, err := w3w.Geocode(rateCtx, "index.home.raft", "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorContains(t, err, "rate limit exceeded")
	})
}

func TestWhat3WordsClient_Reverse(t *testing.T) {
	ctx := t.Context()

	t.Run("successful reverse lookup", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.Path, "/v2/reverse")
				assert.Equal(t, "51.521251,-0.203586", req.URL.Query().Get("coords"))
				assert.Equal(t, "en", req.URL.Query().Get("lang"))
				assert.Equal(t, "test-api-key", req.URL.Query().Get("key"))

				responseBody := `{"words":"index.home.raft","geometry":{"lat":51.521251,"lng":-0.203586}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		point := models.Coordinates{Latitude: 51.521251, Longitude: -0.203586}
		location, err := w3w.Reverse(ctx, point, "en")

		require.NoError(t, err)
		require.NotNil(t, location)
		assert.Equal(t, "index.home.raft", location.Words)
		assert.InEpsilon(t, 51.521251, location.Point.Latitude, 0.0001)
	})

	t.Run("API rejects coordinates", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `{"status":{"code":3,"message":"Bad coordinates"}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		w3w := newTestClient(t, mockClient)
		location, err := w3w.Reverse(ctx, models.Coordinates{Latitude: 999, Longitude: 999}, "en")

		require.Error(t, err)
		assert.Nil(t, location)
		assert.ErrorIs(t, err, geocoding.ErrQueryFailed)
		assert.ErrorContains(t, err, "Bad coordinates")
	})
}

func TestWhat3WordsClient_AllVariants(t *testing.T) {
	ctx := t.Context()
	responseBody := `{"words":"index.home.raft","geometry":{"lat":51.521251,"lng":-0.203586}}`

	mockClient := &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
			}, nil
		},
	}

	w3w := newTestClient(t, mockClient)

	t.Run("GeocodeAll wraps the single result", func(t *testing.T) {
		single, err := w3w.Geocode(ctx, "index.home.raft", "en")
		require.NoError(t, err)

		all, err := w3w.GeocodeAll(ctx, "index.home.raft", "en")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, single, all[0])
	})

	t.Run("ReverseAll wraps the single result", func(t *testing.T) {
		point := models.Coordinates{Latitude: 51.521251, Longitude: -0.203586}

		single, err := w3w.Reverse(ctx, point, "en")
		require.NoError(t, err)

		all, err := w3w.ReverseAll(ctx, point, "en")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, single, all[0])
	})

	t.Run("GeocodeAll propagates query errors", func(t *testing.T) {
		all, err := w3w.GeocodeAll(ctx, "not three words", "en")

		require.Error(t, err)
		assert.Nil(t, all)
		assert.ErrorIs(t, err, geocoding.ErrBadQuery)
	})
}

func TestWordsValidation(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			responseBody := `{"words":"x","geometry":{"lat":1,"lng":2}}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
			}, nil
		},
	}
	w3w := newTestClient(t, mockClient)
	ctx := t.Context()

	valid := []string{
		"index.home.raft",
		"daring.lion.race",
		"плотина.лечение.увлечение", // Unicode letters are allowed
	}
	for _, words := range valid {
		t.Run("accepts "+words, func(t *testing.T) {
			_, err := w3w.Geocode(ctx, words, "en")
			require.NoError(t, err)
		})
	}

	invalid := []string{
		"",
		"index.home",              // two words
		"index.home.raft.extra",   // four words
		"index..raft",             // empty word
		"index.home.r4ft",         // digit
		"index.home_raft",         // underscore
		"index home raft",         // spaces instead of dots
		"index.home.raft ",        // trailing whitespace
		" index.home.raft",        // leading whitespace
		"index.home.raft\nsecond", // embedded newline
	}
	for _, words := range invalid {
		t.Run("rejects "+words, func(t *testing.T) {
			_, err := w3w.Geocode(ctx, words, "en")
			require.ErrorIs(t, err, geocoding.ErrBadQuery)
		})
	}
}
