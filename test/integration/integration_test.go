package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/dcf-valuation/internal/config"
	"github.com/iwvelando/dcf-valuation/internal/financials"
	"github.com/iwvelando/dcf-valuation/internal/server"
	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/output"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
	"go.uber.org/zap"
)

// TestMainIntegrationBaseline runs the example configuration exactly as the
// CLI does and checks the reference valuation.
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	service := valuation.NewService(logger, conf.Bounds, nil)
	report, err := service.Value(conf.Assumptions)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	if report.Assumptions != testutil.ReferenceAssumptions() {
		t.Errorf("unexpected assumptions: %+v", report.Assumptions)
	}
	testutil.AssertClose(t, "enterprise value", report.Result.EnterpriseValue, testutil.ReferenceEnterpriseValue, 1e-9)
	testutil.AssertClose(t, "per-share value", report.Result.IntrinsicValuePerShare, testutil.ReferencePerShare, 1e-12)
	testutil.AssertClose(t, "terminal value", report.Result.TerminalValue, 2008.08170496, 1e-8)
	testutil.AssertClose(t, "equity value", report.Result.EquityValue, 1620.240228399699, 1e-9)

	if len(report.Result.Projections) != 5 {
		t.Fatalf("expected 5 projected years, got %d", len(report.Result.Projections))
	}
}

func TestMainIntegrationOutputs(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	report, err := valuation.NewService(nil, conf.Bounds, nil).Value(conf.Assumptions)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	t.Run("pretty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.Write(&buf, constants.OutputFormatPretty, report.Assumptions, report.Result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		for _, want := range []string{"Enterprise value", "$1,720.24", "Intrinsic value/share", "$1.62"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("pretty output missing %q:\n%s", want, buf.String())
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.Write(&buf, constants.OutputFormatCSV, report.Assumptions, report.Result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse csv: %v", err)
		}
		// header, 5 years, terminal, 4 summary rows
		if len(records) != 11 {
			t.Fatalf("expected 11 csv rows, got %d", len(records))
		}
		last := records[len(records)-1]
		if last[0] != "intrinsic_value_per_share" || last[3] != "1.62" {
			t.Errorf("unexpected last csv row %v", last)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.Write(&buf, constants.OutputFormatJSON, report.Assumptions, report.Result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		var doc struct {
			Result struct {
				EnterpriseValue float64 `json:"enterprise_value"`
			} `json:"result"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("failed to parse json: %v", err)
		}
		testutil.AssertClose(t, "enterprise value", doc.Result.EnterpriseValue, testutil.ReferenceEnterpriseValue, 1e-9)
	})
}

func TestMainIntegrationBoundsFromConfig(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.Assumptions[constants.FieldYears] = 80

	_, err = valuation.NewService(nil, conf.Bounds, nil).Value(conf.Assumptions)
	if err == nil {
		t.Fatal("expected projection years above the configured maximum to be rejected")
	}
}

// fakeAlphaVantage serves canned CASH_FLOW and OVERVIEW responses and counts
// the requests it receives.
func fakeAlphaVantage(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("function") {
		case "CASH_FLOW":
			_, _ = w.Write([]byte(`{"annualReports": [{"operatingCashflow": "150", "capitalExpenditures": "50", "changeInOperatingAssets": "None", "changeInOperatingLiabilities": "None"}]}`))
		case "OVERVIEW":
			_, _ = w.Write([]byte(`{"SharesOutstanding": "1000", "Cash": "200", "Debt": "300"}`))
		default:
			http.Error(w, "unknown function", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestServerEndToEnd(t *testing.T) {
	var calls int32
	upstream := fakeAlphaVantage(t, &calls)
	logger := zap.NewNop()

	provider, err := financials.Open(logger, financials.ClientConfig{APIKey: "demo", BaseURL: upstream.URL},
		time.Hour, filepath.Join(t.TempDir(), "financials.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		_ = provider.Close()
	}()

	api := httptest.NewServer(server.NewHandler(logger, valuation.NewService(logger, dcf.Bounds{}, provider), server.Options{Version: "test"}))
	defer api.Close()

	resp, err := http.Get(api.URL + "/financials?symbol=acme")
	if err != nil {
		t.Fatalf("GET /financials error = %v", err)
	}
	var fin map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&fin); err != nil {
		t.Fatalf("failed to decode financials: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || fin["fcf"] != 100.0 {
		t.Fatalf("unexpected financials response %d: %v", resp.StatusCode, fin)
	}

	// The form only supplies rates and years; the rest comes from the lookup.
	body := `{"growth_rate": 0.08, "discount_rate": 0.10, "terminal_growth": 0.025, "years": 5}`
	resp, err = http.Post(api.URL+"/dcf?symbol=ACME", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /dcf error = %v", err)
	}
	var val valuation.Response
	if err := json.NewDecoder(resp.Body).Decode(&val); err != nil {
		t.Fatalf("failed to decode valuation: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if val.EnterpriseValue != 1720.24 || val.IntrinsicValuePerShare != 1.62 {
		t.Fatalf("unexpected valuation %+v", val)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 upstream requests thanks to caching, got %d", got)
	}

	if _, err := provider.Fetch(context.Background(), "acme"); err != nil {
		t.Fatalf("cached Fetch() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected cached lookup to skip upstream, got %d requests", got)
	}
}
