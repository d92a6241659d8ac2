// Package main provides a minimal HTTP server exposing debug endpoints.
package main

import (
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs; missing files are fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "nodegraph server is running. See /healthz, /debug/vars, /debug/pprof/")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})

	// Prometheus-compatible metrics endpoint (no external deps)
	mux.HandleFunc("/metrics", promMetricsHandler)

	// Workload endpoints to generate metrics load
	mux.HandleFunc("/workload/analysis/start", wm.startAnalysis)
	mux.HandleFunc("/workload/analysis/stop", wm.stopAnalysis)

	addr := ":8080"
	if v := os.Getenv("NODEGRAPH_ADDR"); v != "" {
		addr = v
	}
	logger.Info("starting nodegraph server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// promMetricsHandler renders known expvar metrics in Prometheus text format.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"nodegraph_reachability_queries_total": {typ: "counter", help: "Reachability queries answered"},
		"nodegraph_diff_runs_total":            {typ: "counter", help: "Graph difference analyses run"},
		"nodegraph_specs_saved_total":          {typ: "counter", help: "Spec records saved", isMap: true, label: "store"},
		"nodegraph_specs_loaded_total":         {typ: "counter", help: "Spec records loaded", isMap: true, label: "store"},
		"nodegraph_specs_deleted_total":        {typ: "counter", help: "Spec records deleted", isMap: true, label: "store"},
	}

	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	printed := make(map[string]bool)
	writeHeader := func(name string, m meta) {
		if printed[name] {
			return
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		printed[name] = true
	}

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		writeHeader(name, m)
		if m.isMap {
			if mp, ok := v.(*expvar.Map); ok {
				sub := make([]expvar.KeyValue, 0, 8)
				mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
				sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
				for _, kv := range sub {
					fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
				}
			}
		} else {
			fmt.Fprintf(w, "%s %s\n", name, v.String())
		}
	}
}

func sanitizeHelp(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
