package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/scinode/nodegraph/internal/app/dto"
	"github.com/scinode/nodegraph/internal/app/usecases"
	"github.com/scinode/nodegraph/internal/core/graph"
	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
)

type workloadManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

var wm workloadManager

func (m *workloadManager) startAnalysis(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		http.Error(w, "analysis workload already running", http.StatusConflict)
		return
	}
	rate := 200 * time.Millisecond
	if v := r.URL.Query().Get("rate_ms"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			rate = ms
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go runAnalysisLoop(ctx, rate)
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "analysis workload started at %v\n", rate)
}

func (m *workloadManager) stopAnalysis(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "analysis workload stopped\n")
}

// runAnalysisLoop repeatedly runs reachability and diff analyses over a
// synthetic chain graph so the expvar counters move.
func runAnalysisLoop(ctx context.Context, rate time.Duration) {
	g, err := chainGraph(16)
	if err != nil {
		slog.Error("workload graph build failed", "error", err)
		return
	}
	g2, err := chainGraph(16)
	if err != nil {
		slog.Error("workload graph build failed", "error", err)
		return
	}

	conn, err := usecases.NewConnectivity(dto.ShortFormOf(g))
	if err != nil {
		slog.Error("workload connectivity failed", "error", err)
		return
	}

	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := conn.AllDescendants("n0"); err != nil {
				slog.Error("workload reachability failed", "error", err)
			}
			if _, err := usecases.Diff(dto.SnapshotOf(g), dto.SnapshotOf(g2)); err != nil {
				slog.Error("workload diff failed", "error", err)
			}
		}
	}
}

func chainGraph(n int) (*graph.Graph, error) {
	inputs, err := socket.Namespace("inputs", socket.FieldWithDefault("x", socket.TypeFloat, 0.0))
	if err != nil {
		return nil, err
	}
	outputs, err := socket.Namespace("outputs", socket.Field("result", socket.TypeFloat))
	if err != nil {
		return nil, err
	}
	sp, err := spec.New("workload_step")
	if err != nil {
		return nil, err
	}
	sp.Inputs = inputs
	sp.Outputs = outputs

	g := graph.New("workload")
	for i := 0; i < n; i++ {
		if _, err := g.AddNode(fmt.Sprintf("n%d", i), sp); err != nil {
			return nil, err
		}
	}
	for i := 1; i < n; i++ {
		if _, err := g.AddLink(fmt.Sprintf("n%d", i-1), "result", fmt.Sprintf("n%d", i), "x"); err != nil {
			return nil, err
		}
	}
	return g, nil
}
