package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/permit-sheriff/sheriff/internal/app/enforcer"
	"github.com/permit-sheriff/sheriff/internal/infra/ledger"
	"github.com/permit-sheriff/sheriff/internal/infra/letter"
	"github.com/permit-sheriff/sheriff/internal/infra/notary"
	"github.com/permit-sheriff/sheriff/internal/infra/registry"
	"github.com/permit-sheriff/sheriff/internal/infra/render"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	src := registry.Fixture(time.Now())
	led := ledger.NewMemory()
	ctrl := enforcer.New(enforcer.DefaultConfig(), src,
		letter.NewTemplateComposer(statute.Florida()),
		notary.NewLocalNotary(), led)
	s := NewServer(src, ctrl, led, render.NewTextRenderer(), statute.Florida())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body string, out interface{}) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// ─── Dashboard Routes ───────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, ts.URL+"/health", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status body = %q, want ok", body["status"])
	}
}

func TestVersion(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]string
	getJSON(t, ts.URL+"/api/version", &body)
	if body["version"] != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", body["version"])
	}
}

type permitsResponse struct {
	Count   int `json:"count"`
	Permits []struct {
		Permit struct {
			ID string `json:"id"`
		} `json:"permit"`
		Classification string  `json:"classification"`
		Violation      bool    `json:"violation"`
		Ratio          float64 `json:"ratio"`
	} `json:"permits"`
}

func TestPermits(t *testing.T) {
	_, ts := newTestServer(t)

	var body permitsResponse
	if status := getJSON(t, ts.URL+"/api/permits", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body.Count != 3 {
		t.Fatalf("count = %d, want 3", body.Count)
	}

	verdicts := map[string]string{}
	for _, row := range body.Permits {
		verdicts[row.Permit.ID] = row.Classification
	}
	if verdicts["MIA-24-001"] != "VIOLATION" {
		t.Errorf("MIA-24-001 = %s, want VIOLATION", verdicts["MIA-24-001"])
	}
	if verdicts["MIA-24-009"] != "COMPLIANT" {
		t.Errorf("MIA-24-009 = %s, want COMPLIANT", verdicts["MIA-24-009"])
	}
	if verdicts["JAX-24-882"] != "VIOLATION" {
		t.Errorf("JAX-24-882 = %s, want VIOLATION", verdicts["JAX-24-882"])
	}
}

func TestViolations(t *testing.T) {
	_, ts := newTestServer(t)

	var body struct {
		Count int `json:"count"`
	}
	getJSON(t, ts.URL+"/api/violations", &body)
	if body.Count != 2 {
		t.Errorf("violations count = %d, want 2", body.Count)
	}
}

func TestSummary(t *testing.T) {
	_, ts := newTestServer(t)

	var body struct {
		ActivePermits    int    `json:"active_permits"`
		Violations       int    `json:"violations"`
		AtRisk           int    `json:"at_risk"`
		RecoverableCents int64  `json:"recoverable_cents"`
		Recoverable      string `json:"recoverable"`
	}
	getJSON(t, ts.URL+"/api/summary", &body)

	if body.ActivePermits != 3 || body.Violations != 2 || body.AtRisk != 0 {
		t.Errorf("summary = %+v, want 3 active / 2 violations / 0 at risk", body)
	}
	if body.RecoverableCents != 165000 {
		t.Errorf("recoverable_cents = %d, want 165000", body.RecoverableCents)
	}
	if body.Recoverable != "$1,650.00" {
		t.Errorf("recoverable = %q, want $1,650.00", body.Recoverable)
	}
}

func TestStatute(t *testing.T) {
	_, ts := newTestServer(t)

	var body struct {
		Jurisdiction string  `json:"jurisdiction"`
		Citation     string  `json:"citation"`
		RefundRate   float64 `json:"refund_rate"`
	}
	getJSON(t, ts.URL+"/api/statute", &body)
	if body.Jurisdiction != "Florida" || body.Citation != "Florida Statute 553.79" {
		t.Errorf("statute = %+v", body)
	}
	if body.RefundRate != 0.10 {
		t.Errorf("refund_rate = %v, want 0.10", body.RefundRate)
	}
}

// ─── Ledger Routes ──────────────────────────────────────────────────────────

func TestLedger_EmptyAndVerify(t *testing.T) {
	_, ts := newTestServer(t)

	var list struct {
		Count int `json:"count"`
	}
	getJSON(t, ts.URL+"/api/ledger", &list)
	if list.Count != 0 {
		t.Errorf("ledger count = %d, want 0", list.Count)
	}

	var verify struct {
		OK      bool `json:"ok"`
		Entries int  `json:"entries"`
	}
	getJSON(t, ts.URL+"/api/ledger/verify", &verify)
	if !verify.OK || verify.Entries != 0 {
		t.Errorf("verify = %+v, want ok with 0 entries", verify)
	}
}

// ─── Metrics Gate ───────────────────────────────────────────────────────────

func TestMetrics_GatedByConfig(t *testing.T) {
	_, off := newTestServer(t)
	if status := getJSON(t, off.URL+"/metrics", nil); status != http.StatusNotFound {
		t.Errorf("metrics without opt-in = %d, want 404", status)
	}

	s, _ := newTestServer(t)
	s.EnableMetrics()
	on := httptest.NewServer(s.Handler())
	t.Cleanup(on.Close)

	resp, err := http.Get(on.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "sheriff_") {
		t.Error("metrics exposition has no sheriff_ series")
	}
}

// ─── CORS ───────────────────────────────────────────────────────────────────

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/permits", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
