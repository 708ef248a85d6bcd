// Command smoke probes a running scriptgen instance: it hits the public
// endpoints concurrently and prints a pass/fail table. Intended for use
// after deployments.
//
// Usage:
//
//	smoke -base http://localhost:3001 [-token <bearer token>]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
)

type checkResult struct {
	name    string
	status  string
	elapsed time.Duration
	detail  string
}

func main() {
	base := flag.String("base", "http://localhost:3001", "base URL of the running instance")
	token := flag.String("token", "", "bearer token for authenticated checks")
	timeout := flag.Duration("timeout", 15*time.Second, "per-check timeout")
	flag.Parse()

	checks := []struct {
		name   string
		method string
		path   string
		auth   bool
	}{
		{"health", http.MethodGet, "/api/health", false},
		{"status", http.MethodGet, "/api/status", false},
		{"azure-openai", http.MethodPost, "/api/test-azure-openai", false},
		{"list-generated-files", http.MethodGet, "/api/list-generated-files", false},
		{"auth-me", http.MethodGet, "/api/auth/me", true},
	}

	var mu sync.Mutex
	var results []checkResult

	g, ctx := errgroup.WithContext(context.Background())
	for _, check := range checks {
		if check.auth && *token == "" {
			continue
		}
		g.Go(func() error {
			res := runCheck(ctx, *base, check.method, check.path, *token, *timeout)
			res.name = check.name
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Check", "Status", "Elapsed", "Detail"})
	failed := false
	for _, r := range results {
		if r.status != "ok" {
			failed = true
		}
		table.Append([]string{r.name, r.status, r.elapsed.Round(time.Millisecond).String(), r.detail})
	}
	table.Render()

	if failed {
		os.Exit(1)
	}
}

func runCheck(ctx context.Context, base, method, path, token string, timeout time.Duration) checkResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return checkResult{status: "error", detail: err.Error()}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return checkResult{status: "unreachable", elapsed: elapsed, detail: err.Error()}
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	detail := body.Message
	if detail == "" {
		detail = body.Status
	}
	if resp.StatusCode >= 400 {
		return checkResult{
			status:  fmt.Sprintf("http %d", resp.StatusCode),
			elapsed: elapsed,
			detail:  detail,
		}
	}
	return checkResult{status: "ok", elapsed: elapsed, detail: detail}
}
