// Package testutils provides shared test infrastructure: an HTTP fragment
// server for unit tests and, behind the integration build tag, a MinIO
// container for storage tests.
package testutils

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ligustah/glean/pkg/fragments"
)

// Table maps endpoint ids to the fragment served there.
type Table map[int64]fragments.Fragment

// ScatterMessage splits message on spaces and places word i at a distinct
// random id in [1, maxID], deterministically for seed.
func ScatterMessage(t *testing.T, message string, maxID int64, seed uint64) Table {
	t.Helper()

	words := strings.Fields(message)
	if int64(len(words)) > maxID {
		t.Fatalf("cannot place %d words in %d ids", len(words), maxID)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	table := make(Table, len(words))
	for i, w := range words {
		for {
			id := 1 + rng.Int64N(maxID)
			if _, taken := table[id]; taken {
				continue
			}
			table[id] = fragments.Fragment{Index: int64(i), Text: w}
			break
		}
	}
	return table
}

// FragmentServer serves a Table over HTTP at /fragment?id={id}.
type FragmentServer struct {
	*httptest.Server

	requests atomic.Int64

	mu      sync.Mutex
	table   Table
	failing map[int64]bool
}

// StartFragmentServer starts a server for table. Unknown ids answer 404.
// The server is closed when the test ends.
func StartFragmentServer(t *testing.T, table Table) *FragmentServer {
	t.Helper()

	fs := &FragmentServer{
		table:   table,
		failing: make(map[int64]bool),
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.Close)
	return fs
}

// Template returns the URL template for this server.
func (fs *FragmentServer) Template() string {
	return fs.URL + "/fragment?id={id}"
}

// Requests returns the number of fragment requests served so far.
func (fs *FragmentServer) Requests() int64 {
	return fs.requests.Load()
}

// Fail makes id answer 500 until Restore is called.
func (fs *FragmentServer) Fail(id int64) {
	fs.mu.Lock()
	fs.failing[id] = true
	fs.mu.Unlock()
}

// Restore undoes Fail for id.
func (fs *FragmentServer) Restore(id int64) {
	fs.mu.Lock()
	delete(fs.failing, id)
	fs.mu.Unlock()
}

func (fs *FragmentServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/fragment" {
		http.NotFound(w, r)
		return
	}
	fs.requests.Add(1)

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	frag, ok := fs.table[id]
	failing := fs.failing[id]
	fs.mu.Unlock()

	if failing {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(frag)
}
