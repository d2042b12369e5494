// Command shadow_compare replays planner requests against the legacy service
// and the Go API and reports where their schedules differ.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type target struct {
	Name     string          `json:"name"`
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Body     json.RawMessage `json:"body,omitempty"`
	Critical bool            `json:"critical"`
	// Ordered compares schedules positionally; otherwise as a set.
	Ordered bool `json:"ordered"`
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	LegacyCount    int
	GoCount        int
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000", "Legacy planner base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, goBase, legacyBase, t)
		switch {
		case comp.Error != nil:
			if t.Critical {
				breaking++
			}
		case !comp.StatusMatch || !comp.BodyMatch:
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}
	goBody, goStatus, goDur, goErr := performRequest(client, goBase, tgt)
	legacyBody, legacyStatus, legacyDur, legacyErr := performRequest(client, legacyBase, tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goStatus
	comp.LegacyStatus = legacyStatus
	comp.StatusMatch = goStatus == legacyStatus

	goSchedules, err := schedulesOf(unwrapEnvelope(goBody))
	if err != nil {
		comp.Error = fmt.Errorf("decode go body: %w", err)
		return comp
	}
	legacySchedules, err := schedulesOf(legacyBody)
	if err != nil {
		comp.Error = fmt.Errorf("decode legacy body: %w", err)
		return comp
	}
	comp.GoCount = len(goSchedules)
	comp.LegacyCount = len(legacySchedules)
	comp.BodyMatch = sameSchedules(goSchedules, legacySchedules, tgt.Ordered)

	return comp
}

func performRequest(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodPost
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	var body io.Reader
	if len(tgt.Body) > 0 {
		body = bytes.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, 0, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, time.Since(start), err
	}
	return payload, resp.StatusCode, time.Since(start), nil
}

// unwrapEnvelope returns the data member of a {data, meta} response, or the
// body itself when it is not enveloped.
func unwrapEnvelope(body []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return body
	}
	return env.Data
}

type section struct {
	Code string `json:"code"`
	CRN  string `json:"crn"`
}

// schedulesOf reduces each schedule to a canonical key: its CRNs in course-code order.
func schedulesOf(body []byte) ([]string, error) {
	var payload struct {
		Schedules [][]section `json:"schedules"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(payload.Schedules))
	for _, schedule := range payload.Schedules {
		sorted := append([]section(nil), schedule...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
		parts := make([]string, len(sorted))
		for i, s := range sorted {
			parts[i] = s.Code + "#" + s.CRN
		}
		keys = append(keys, strings.Join(parts, ","))
	}
	return keys, nil
}

func sameSchedules(a, b []string, ordered bool) bool {
	if len(a) != len(b) {
		return false
	}
	if !ordered {
		a = append([]string(nil), a...)
		b = append([]string(nil), b...)
		sort.Strings(a)
		sort.Strings(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func printReport(comparisons []comparison) {
	fmt.Println("| Target | Legacy | Go | Status | Schedules | Legacy ms | Go ms | Notes |")
	fmt.Println("|---|---|---|---|---|---|---|---|")
	for _, c := range comparisons {
		name := c.Target.Name
		if name == "" {
			name = strings.ToUpper(c.Target.Method) + " " + c.Target.Path
		}
		notes := ""
		if c.Error != nil {
			notes = c.Error.Error()
		} else if !c.BodyMatch {
			notes = fmt.Sprintf("legacy %d vs go %d schedules", c.LegacyCount, c.GoCount)
		}
		fmt.Printf("| %s | %d | %d | %s | %s | %d | %d | %s |\n",
			name,
			c.LegacyStatus,
			c.GoStatus,
			mark(c.StatusMatch),
			mark(c.BodyMatch),
			c.DurationLegacy.Milliseconds(),
			c.DurationGo.Milliseconds(),
			notes,
		)
	}
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "DIFF"
}
