package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type samplePayload struct {
	EmployeeID int `json:"employeeId" validate:"required,gt=0"`
	Items      []struct {
		Score int `json:"score" validate:"min=0,max=100"`
	} `json:"items" validate:"dive"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	p := samplePayload{}
	p.Items = append(p.Items, struct {
		Score int `json:"score" validate:"min=0,max=100"`
	}{Score: 101})
	v.Struct(p)

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	if issues[0].Field != "employeeId" || issues[0].Reason != "is required" {
		t.Fatalf("unexpected first issue %+v", issues[0])
	}
	if issues[1].Field != "items[0].score" || issues[1].Reason != "must be at most 100" {
		t.Fatalf("unexpected second issue %+v", issues[1])
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Add("weekKey", "must be a Monday")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "r1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		A int `json:"a"`
	}
	cases := []struct {
		body string
		ok   bool
	}{
		{`{"a":1}`, true},
		{`{"a":1,"b":2}`, false},
		{`{"a":1}{"a":2}`, false},
		{`not json`, false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		if got := DecodeJSON(rec, req, &dst, ""); got != tc.ok {
			t.Fatalf("body %q: expected %v, got %v (%s)", tc.body, tc.ok, got, rec.Body.String())
		}
	}
}

func TestWeekAndMonthParams(t *testing.T) {
	router := chi.NewRouter()
	var week, month string
	var weekOK, monthOK bool
	router.Get("/w/{week}", func(w http.ResponseWriter, r *http.Request) { week, weekOK = WeekParam(r, "week") })
	router.Get("/m/{month}", func(w http.ResponseWriter, r *http.Request) { month, monthOK = MonthParam(r, "month") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/w/2025-03-10", nil))
	if !weekOK || week != "2025-03-10" {
		t.Fatalf("expected monday to parse, got %q %v", week, weekOK)
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/w/2025-03-11", nil))
	if weekOK {
		t.Fatal("expected tuesday to be rejected")
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/m/2025-13", nil))
	if monthOK {
		t.Fatalf("expected invalid month, got %q", month)
	}
}

func TestIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?weeks=40&bad=x&neg=-3", nil)
	if got := IntQuery(req, "weeks", 8, 1, 26); got != 26 {
		t.Fatalf("expected clamp to 26, got %d", got)
	}
	if got := IntQuery(req, "bad", 8, 1, 26); got != 8 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := IntQuery(req, "neg", 8, 1, 26); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
}
