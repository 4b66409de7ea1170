package scenario_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/avelins/restaurant-loadgen/internal/client"
	"github.com/avelins/restaurant-loadgen/internal/dispatcher"
	"github.com/avelins/restaurant-loadgen/internal/entities"
	"github.com/avelins/restaurant-loadgen/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []entities.Outcome
}

func (r *fakeRecorder) Record(ctx context.Context, o entities.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

type capturedRequest struct {
	method string
	order  client.OrderRequest
	ids    []int
}

// captureServer records every request in arrival order and answers
// each method the way the restaurant service does.
func captureServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var reqs []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cr := capturedRequest{method: r.Method}

		switch r.Method {
		case http.MethodPost:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&cr.order))
		default:
			for _, part := range strings.Split(strings.TrimPrefix(r.URL.Path, "/orders/"), "/") {
				id, err := strconv.Atoi(part)
				assert.NoError(t, err)
				cr.ids = append(cr.ids, id)
			}
		}

		mu.Lock()
		reqs = append(reqs, cr)
		mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"status":"ok"}`))
		case http.MethodGet:
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{"success":true}`))
		}
	}))

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

func assertBetween(t *testing.T, v, min, max int) {
	t.Helper()
	assert.GreaterOrEqual(t, v, min)
	assert.LessOrEqual(t, v, max)
}

func newTestScenario(t *testing.T, srvURL string, rec scenario.Recorder) (*scenario.Scenario, *syncWriter) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := new(syncWriter)

	c := client.New(srvURL, 0, out)
	d := dispatcher.New(logger, 20)

	return scenario.New(logger, c, d, rec, scenario.Config{BatchMin: 10, BatchMax: 20}), out
}

func TestScenario_Run(t *testing.T) {
	srv, captured := captureServer(t)
	defer srv.Close()

	rec := new(fakeRecorder)
	s, out := newTestScenario(t, srv.URL, rec)

	require.NoError(t, s.Run(context.Background()))

	reqs := captured()

	counts := map[string]int{}
	for _, r := range reqs {
		counts[r.method]++
	}

	// Each phase is a batch of 10 to 20 invocations.
	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		assert.GreaterOrEqual(t, counts[method], 10, method)
		assert.LessOrEqual(t, counts[method], 20, method)
	}

	// Phases run strictly in order: every add completes before the
	// first query arrives, every query before the first removal.
	lastPost, firstGet, lastGet, firstDelete := -1, -1, -1, -1
	for i, r := range reqs {
		switch r.method {
		case http.MethodPost:
			lastPost = i
		case http.MethodGet:
			if firstGet == -1 {
				firstGet = i
			}
			lastGet = i
		case http.MethodDelete:
			if firstDelete == -1 {
				firstDelete = i
			}
		}
	}
	assert.Less(t, lastPost, firstGet)
	assert.Less(t, lastGet, firstDelete)

	// Randomized parameters stay inside the service's ID ranges.
	for _, r := range reqs {
		switch r.method {
		case http.MethodPost:
			require.Len(t, r.order.Items, 1)
			assertBetween(t, r.order.Items[0], 1, 21)
			assertBetween(t, r.order.TableID, 1, 20)
		case http.MethodGet:
			require.Len(t, r.ids, 1)
			assertBetween(t, r.ids[0], 1, 99)
		case http.MethodDelete:
			require.Len(t, r.ids, 2)
			assertBetween(t, r.ids[0], 1, 99)
			assertBetween(t, r.ids[1], 1, 21)
		}
	}

	// One recorded outcome per completed invocation, tagged with its batch.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.outcomes, len(reqs))

	batches := map[string]int{}
	for _, o := range rec.outcomes {
		batches[o.Batch]++
	}
	assert.Equal(t, counts[http.MethodPost], batches[scenario.BatchAddOrders])
	assert.Equal(t, counts[http.MethodGet], batches[scenario.BatchQueryOrders])
	assert.Equal(t, counts[http.MethodDelete], batches[scenario.BatchRemoveItems])

	// Every response body was printed.
	printed := out.buf.String()
	assert.Contains(t, printed, `Add Order Response: {"status":"ok"}`)
	assert.Contains(t, printed, "Response: []")
	assert.Contains(t, printed, `Remove Item Response: {"success":true}`)
}

func TestScenario_FailedBatchDoesNotStopLaterPhases(t *testing.T) {
	var mu sync.Mutex
	counts := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		counts[r.Method]++
		mu.Unlock()

		if r.Method == http.MethodPost {
			// Kill the connection so the add-order batch fails at the
			// transport level.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("response writer does not support hijacking")
				return
			}
			conn, _, err := hj.Hijack()
			if assert.NoError(t, err) {
				conn.Close()
			}
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s, _ := newTestScenario(t, srv.URL, new(fakeRecorder))

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), scenario.BatchAddOrders)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, counts[http.MethodGet], 10)
	assert.GreaterOrEqual(t, counts[http.MethodDelete], 10)
}
