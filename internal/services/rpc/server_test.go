package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/services/results/domain"
)

type fakeIngest struct {
	reqs []drawdate.Request
	raw  string
	err  error
	// saveErr fails the run after fetching, the way a full disk would
	saveErr error
}

func (f *fakeIngest) Run(_ context.Context, reqs []drawdate.Request) (domain.RunReport, error) {
	f.reqs = reqs
	if f.err != nil {
		return domain.RunReport{}, f.err
	}
	if f.saveErr != nil {
		return domain.RunReport{
			RunID:     "run-2",
			Requested: len(reqs),
			Results: []domain.NormalizedResult{
				{Date: "2024-03-01", Period: []int{1}},
				{Date: "2024-03-16", Period: []int{1}},
			},
			AlreadyStored: []string{},
			NoResult:      []string{},
			Failed:        []domain.FetchFailure{},
		}, f.saveErr
	}
	return domain.RunReport{
		RunID:         "run-1",
		Requested:     len(reqs),
		AlreadyStored: []string{reqs[0].Key()},
		Results:       []domain.NormalizedResult{{Date: "2024-03-16", Period: []int{1}}},
		NoResult:      []string{},
		Failed:        []domain.FetchFailure{},
		Persisted:     true,
	}, nil
}

func (f *fakeIngest) RunYear(context.Context, int) (domain.RunReport, error) {
	panic("not used")
}

func (f *fakeIngest) IngestRaw(_ context.Context, raw string) (int64, error) {
	f.raw = raw
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

// fakeReads answers every list with one draw and records the call
type fakeReads struct {
	last string
	err  error
}

var stored = domain.DrawRecord{ID: 1, DrawDate: "2024-03-01", Period: "1"}

func (f *fakeReads) list(call string) ([]domain.DrawRecord, error) {
	f.last = call
	if f.err != nil {
		return nil, f.err
	}
	return []domain.DrawRecord{stored}, nil
}

func (f *fakeReads) Latest(_ context.Context, n int) ([]domain.DrawRecord, error) {
	return f.list("latest " + strconv.Itoa(n))
}

func (f *fakeReads) ByDate(_ context.Context, date string) (domain.DrawRecord, bool, error) {
	f.last = "date " + date
	return stored, date == stored.DrawDate, f.err
}

func (f *fakeReads) Complete(_ context.Context, date string) (domain.DrawWithPrizes, bool, error) {
	f.last = "complete " + date
	return domain.DrawWithPrizes{Draw: stored, Prizes: []domain.PrizeNumber{}}, date == stored.DrawDate, f.err
}

func (f *fakeReads) ByDateRange(_ context.Context, start, end string) ([]domain.DrawRecord, error) {
	if start > end {
		return nil, perr.WithField(perr.InvalidArgf("start_date %s is after end_date %s", start, end), "start_date")
	}
	return f.list("range " + start + " " + end)
}

func (f *fakeReads) ByYear(_ context.Context, year int) ([]domain.DrawRecord, error) {
	return f.list("year " + strconv.Itoa(year))
}

func (f *fakeReads) ByMonth(_ context.Context, year, month int) ([]domain.DrawRecord, error) {
	return f.list("month " + strconv.Itoa(year) + " " + strconv.Itoa(month))
}

func (f *fakeReads) AfterDate(_ context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	return f.list("after " + date + " " + strconv.Itoa(limit))
}

func (f *fakeReads) BeforeDate(_ context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	return f.list("before " + date + " " + strconv.Itoa(limit))
}

func (f *fakeReads) Search(_ context.Context, number string) ([]domain.SearchHit, error) {
	f.last = "search " + number
	return nil, f.err
}

func (f *fakeReads) ByCategory(_ context.Context, c string) ([]domain.PrizeNumber, error) {
	f.last = "category " + c
	return []domain.PrizeNumber{}, f.err
}

type fakeReports struct{ date string }

func (f *fakeReports) Save(_ context.Context, date string) (string, error) {
	if date == "2099-01-01" {
		panic("boom")
	}
	f.date = date
	return "reports/lottery_report_" + date + ".html", nil
}

type fakeSchema struct{ calls int }

func (f *fakeSchema) EnsureSchema(context.Context) error {
	f.calls++
	return nil
}

type fixture struct {
	srv     *Server
	ingest  *fakeIngest
	reads   *fakeReads
	reports *fakeReports
	schema  *fakeSchema
}

func newFixture() *fixture {
	f := &fixture{ingest: &fakeIngest{}, reads: &fakeReads{}, reports: &fakeReports{}, schema: &fakeSchema{}}
	f.srv = New(Deps{Ingest: f.ingest, Reads: f.reads, Reports: f.reports, Schema: f.schema}, Config{Version: "test"})
	return f
}

type wireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *wireError      `json:"error"`
}

func handle(t *testing.T, s *Server, line string) (wireResponse, bool) {
	t.Helper()
	resp, ok := s.Handle(context.Background(), []byte(line))
	if !ok {
		return wireResponse{}, false
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var w wireResponse
	if err := json.Unmarshal(b, &w); err != nil {
		t.Fatalf("unmarshal response %s: %v", b, err)
	}
	return w, true
}

func callTool(t *testing.T, s *Server, name, args string) wireResponse {
	t.Helper()
	line := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"` + name + `"`
	if args != "" {
		line += `,"arguments":` + args
	}
	line += `}}`
	w, ok := handle(t, s, line)
	if !ok {
		t.Fatalf("no response for %s", name)
	}
	return w
}

// toolPayload unwraps the single text block of a successful tools/call
func toolPayload(t *testing.T, w wireResponse) map[string]any {
	t.Helper()
	if w.Error != nil {
		t.Fatalf("unexpected error %d %s %s", w.Error.Code, w.Error.Message, w.Error.Data)
	}
	var res ToolResult
	if err := json.Unmarshal(w.Result, &res); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("content: %+v", res.Content)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(res.Content[0].Text), &out); err != nil {
		t.Fatalf("decode text %q: %v", res.Content[0].Text, err)
	}
	if out["success"] != true {
		t.Fatalf("success flag missing: %v", out)
	}
	return out
}

func TestServe_Session(t *testing.T) {
	f := newFixture()
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":"two","method":"tools/list"}`,
		`{not json`,
		`{"jsonrpc":"2.0","id":4,"method":"prompts/list"}`,
		`{"jsonrpc":"2.0","method":"tools/list"}`,
	}, "\n")

	var out bytes.Buffer
	if err := f.srv.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 responses, got %d:\n%s", len(lines), out.String())
	}
	var rs []wireResponse
	for _, l := range lines {
		var w wireResponse
		if err := json.Unmarshal([]byte(l), &w); err != nil {
			t.Fatalf("response %q: %v", l, err)
		}
		if w.JSONRPC != "2.0" {
			t.Fatalf("jsonrpc = %q", w.JSONRPC)
		}
		rs = append(rs, w)
	}

	var initRes struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := json.Unmarshal(rs[0].Result, &initRes); err != nil {
		t.Fatal(err)
	}
	if string(rs[0].ID) != "1" || initRes.ProtocolVersion != ProtocolVersion {
		t.Fatalf("initialize: id %s result %+v", rs[0].ID, initRes)
	}
	if initRes.ServerInfo.Name != "glolotto" || initRes.ServerInfo.Version != "test" {
		t.Fatalf("serverInfo: %+v", initRes.ServerInfo)
	}
	if _, ok := initRes.Capabilities["tools"]; !ok {
		t.Fatalf("capabilities: %v", initRes.Capabilities)
	}

	var list struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(rs[1].Result, &list); err != nil {
		t.Fatal(err)
	}
	if string(rs[1].ID) != `"two"` || len(list.Tools) != 13 {
		t.Fatalf("tools/list: id %s, %d tools", rs[1].ID, len(list.Tools))
	}

	if rs[2].Error == nil || rs[2].Error.Code != CodeParseError || string(rs[2].ID) != "null" {
		t.Fatalf("parse error: %+v id %s", rs[2].Error, rs[2].ID)
	}
	if rs[3].Error == nil || rs[3].Error.Code != CodeMethodNotFound || rs[3].Error.Message != "Method not found: prompts/list" {
		t.Fatalf("method not found: %+v", rs[3].Error)
	}
}

func TestServe_StopsOnCanceledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := f.srv.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n"), &out)
	if err != context.Canceled {
		t.Fatalf("err = %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("wrote %q after cancel", out.String())
	}
}

func TestServe_LineTooLongIsSkipped(t *testing.T) {
	f := newFixture()
	f.srv.cfg.MaxLine = 128
	long := `{"jsonrpc":"2.0","id":1,"method":"` + strings.Repeat("x", 256) + `"}`
	in := long + "\n" + `{"jsonrpc":"2.0","id":2,"method":"initialize"}` + "\n"

	var out bytes.Buffer
	if err := f.srv.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 responses, got %d:\n%s", len(lines), out.String())
	}
	var first, second wireResponse
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first.Error == nil || first.Error.Code != CodeParseError || string(first.ID) != "null" {
		t.Fatalf("oversized line: %+v id %s", first.Error, first.ID)
	}
	if second.Error != nil || string(second.ID) != "2" {
		t.Fatalf("session did not continue: %+v id %s", second.Error, second.ID)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stdin closed badly") }

func TestServe_ReadErrorIsTransport(t *testing.T) {
	f := newFixture()
	err := f.srv.Serve(context.Background(), failingReader{}, &bytes.Buffer{})
	if !perr.IsCode(err, perr.ErrorCodeTransport) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadLine_LastLineWithoutNewline(t *testing.T) {
	br := bufio.NewReaderSize(strings.NewReader("ab\ncd"), 16)
	for _, want := range []string{"ab", "cd"} {
		got, tooLong, err := readLine(br, 8)
		if err != nil || tooLong || string(got) != want {
			t.Fatalf("readLine = %q %v %v, want %q", got, tooLong, err, want)
		}
	}
	if _, _, err := readLine(br, 8); err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
}

func TestHandle_Notifications(t *testing.T) {
	f := newFixture()
	for _, line := range []string{
		`{"jsonrpc":"2.0","method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":null,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":9,"method":"notifications/cancelled"}`,
	} {
		if _, ok := handle(t, f.srv, line); ok {
			t.Fatalf("%s: notification answered", line)
		}
	}
}

func TestToolsList_Schemas(t *testing.T) {
	f := newFixture()
	want := []string{
		"parse_and_insert_raw_json",
		"fetch_and_save_multiple_results",
		"get_lottery_results_after_date",
		"get_lottery_results_before_date",
		"get_lottery_results_by_date_range",
		"get_lottery_results_by_year",
		"get_lottery_results_by_month",
		"get_latest_lottery_results",
		"get_lottery_by_date",
		"search_number",
		"get_complete_lottery_data",
		"generate_and_save_report",
		"create_database",
	}
	tools := f.srv.Tools()
	if len(tools) != len(want) {
		t.Fatalf("got %d tools", len(tools))
	}
	for i, tl := range tools {
		if tl.Name != want[i] {
			t.Fatalf("tool %d = %s, want %s", i, tl.Name, want[i])
		}
		if tl.Description == "" || tl.InputSchema["type"] != "object" {
			t.Fatalf("%s: incomplete descriptor %+v", tl.Name, tl)
		}
		if _, ok := tl.InputSchema["properties"]; !ok {
			t.Fatalf("%s: no properties", tl.Name)
		}
	}
}
