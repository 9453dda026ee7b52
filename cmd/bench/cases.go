// README: Bench cases: environment, fare estimate, dispute policy, admin and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

// Coordinates around a Taipei wholesale produce market.
var (
	farmGate = map[string]float64{"lat": 25.033, "lng": 121.565}
	market   = map[string]float64{"lat": 25.0478, "lng": 121.5318}
)

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	user := r.cfg.Token
	admin := r.cfg.AdminToken

	return []TestCase{
		{Name: "Env: Postgres connect", Run: checkPostgres},
		{Name: "Env: Redis connect", Run: checkRedis},
		{Name: "Migration: tables exist", Run: checkTables},
		httpCase("API: health", http.MethodGet, base+"/health", nil, "", http.StatusOK),
		httpCase("API: unauthenticated estimate -> 401", http.MethodPost, base+"/api/rides/fare/estimate",
			map[string]any{"pickup": farmGate, "destination": market}, "", http.StatusUnauthorized),

		httpCase("Fare: estimate economy", http.MethodPost, base+"/api/rides/fare/estimate",
			map[string]any{"pickup": farmGate, "destination": market, "rideClass": "economy"}, user, http.StatusOK),
		httpCase("Fare: invalid latitude -> 400", http.MethodPost, base+"/api/rides/fare/estimate",
			map[string]any{"pickup": map[string]float64{"lat": 123, "lng": 456}, "destination": market}, user, http.StatusBadRequest),
		{Name: "Fare: unknown class priced as economy", Run: func(ctx context.Context, r *Runner) Result {
			return unknownClassMatchesEconomy(ctx, r, base+"/api/rides/fare/estimate")
		}},
		{Name: "Fare: zero distance is minimum fare", Run: func(ctx context.Context, r *Runner) Result {
			return zeroDistance(ctx, r, base+"/api/rides/fare/estimate")
		}},

		httpCase("Policy: low wrong_route", http.MethodPost, base+"/api/disputes/policy", map[string]any{
			"severity": "low", "category": "wrong_route", "createdAtISO8601": "2026-05-04T09:30:00Z",
			"classifierConfidence": 0.9, "compensationPercent": 25,
		}, user, http.StatusOK),
		httpCase("Policy: bad timestamp -> 400", http.MethodPost, base+"/api/disputes/policy", map[string]any{
			"severity": "low", "category": "wrong_route", "createdAtISO8601": "not-a-time", "classifierConfidence": 0.9,
		}, user, http.StatusBadRequest),
		{Name: "Dispute: file (spends quota)", Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.FileDisputes {
				return Result{Status: statusSkip, Note: "file-disputes=false"}
			}
			return doCase(ctx, r, http.MethodPost, base+"/api/disputes", map[string]any{
				"rideId": "bench-ride", "description": "driver took a long detour with my produce on board",
			}, user, http.StatusCreated)
		}},
		httpCase("Dispute: list mine", http.MethodGet, base+"/api/disputes", nil, user, http.StatusOK),
		httpCase("Admin: analytics", http.MethodGet, base+"/api/admin/disputes/analytics", nil, admin, http.StatusOK),
		httpCase("Admin: export csv", http.MethodGet, base+"/api/admin/disputes/export", nil, admin, http.StatusOK),
		httpCase("Admin: non-admin forbidden", http.MethodGet, base+"/api/admin/disputes/analytics", nil, user, http.StatusForbidden),

		{Name: "Perf: fare estimate throughput", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, base+"/api/rides/fare/estimate", map[string]any{
				"pickup": farmGate, "destination": market, "rideClass": "comfort",
			})
		}},
	}
}

func checkPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationsDir)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("%d tables", len(tables))}
}

func httpCase(name, method, url string, body any, token string, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			return doCase(ctx, r, method, url, body, token, want)
		},
	}
}

func doCase(ctx context.Context, r *Runner, method, url string, body any, token string, want int) Result {
	if token == "" && want != http.StatusUnauthorized && url != r.cfg.BaseURL+"/health" {
		return Result{Status: statusSkip, Note: "no token configured"}
	}
	start := time.Now()
	status, _, err := r.send(ctx, method, url, body, token)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	latency := time.Since(start)
	if status != want {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
	}
	return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
}

func (r *Runner) send(ctx context.Context, method, url string, body any, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}

type fareBody struct {
	BaseFare      float64 `json:"baseFare"`
	TotalEstimate float64 `json:"totalEstimate"`
	Breakdown     []struct {
		Amount float64 `json:"amount"`
	} `json:"breakdown"`
}

func (r *Runner) estimate(ctx context.Context, url string, body map[string]any) (fareBody, error) {
	var fb fareBody
	status, raw, err := r.send(ctx, http.MethodPost, url, body, r.cfg.Token)
	if err != nil {
		return fb, err
	}
	if status != http.StatusOK {
		return fb, fmt.Errorf("status=%d", status)
	}
	return fb, json.Unmarshal(raw, &fb)
}

func unknownClassMatchesEconomy(ctx context.Context, r *Runner, url string) Result {
	if r.cfg.Token == "" {
		return Result{Status: statusSkip, Note: "no token configured"}
	}
	economy, err := r.estimate(ctx, url, map[string]any{"pickup": farmGate, "destination": market, "rideClass": "economy"})
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	unknown, err := r.estimate(ctx, url, map[string]any{"pickup": farmGate, "destination": market, "rideClass": "tractor"})
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	// live surge may move between the two calls, so only the base fare is compared
	if economy.BaseFare != unknown.BaseFare {
		return Result{Status: statusFail, Note: fmt.Sprintf("base %.2f vs %.2f", economy.BaseFare, unknown.BaseFare)}
	}
	return Result{Status: statusPass}
}

func zeroDistance(ctx context.Context, r *Runner, url string) Result {
	if r.cfg.Token == "" {
		return Result{Status: statusSkip, Note: "no token configured"}
	}
	fb, err := r.estimate(ctx, url, map[string]any{"pickup": farmGate, "destination": farmGate, "rideClass": "economy"})
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if len(fb.Breakdown) != 6 || fb.Breakdown[1].Amount != 0 || fb.Breakdown[2].Amount != 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("breakdown=%v", fb.Breakdown)}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("total=%.2f", fb.TotalEstimate)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	if r.cfg.Token == "" {
		return Result{Status: statusSkip, Note: "no token configured"}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.send(ctx, http.MethodPost, url, payload, r.cfg.Token)
				if err != nil || status != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
