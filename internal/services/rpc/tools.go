package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/net/http/bind"
)

type payload = map[string]any

type tool struct {
	Tool
	run func(ctx context.Context, args json.RawMessage) (payload, error)
}

// handler decodes and validates the arguments into T before calling fn
func handler[T any](fn func(ctx context.Context, in T) (payload, error)) func(context.Context, json.RawMessage) (payload, error) {
	return func(ctx context.Context, args json.RawMessage) (payload, error) {
		in, err := bind.DecodeJSON[T](args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
}

// flexInt accepts 2024 as well as "2024"
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s is not an integer", b)
	}
	*n = flexInt(v)
	return nil
}

type rawArgs struct {
	RawJSON string `json:"raw_json" validate:"required"`
}

type datesArgs struct {
	Dates [][]string `json:"dates" validate:"required,min=1,dive,len=3,dive,required,numeric"`
}

type dateArgs struct {
	Date string `json:"date" validate:"required,drawdate"`
}

type dateLimitArgs struct {
	Date  string `json:"date" validate:"required,drawdate"`
	Limit int    `json:"limit" validate:"min=0,max=1000"`
}

type rangeArgs struct {
	StartDate string `json:"start_date" validate:"required,drawdate"`
	EndDate   string `json:"end_date" validate:"required,drawdate"`
}

type yearArgs struct {
	Year flexInt `json:"year" validate:"required,min=1,max=9999"`
}

type monthArgs struct {
	Year  flexInt `json:"year" validate:"required,min=1,max=9999"`
	Month flexInt `json:"month" validate:"required,min=1,max=12"`
}

type latestArgs struct {
	Limit int `json:"limit" validate:"min=0,max=1000"`
}

type numberArgs struct {
	Number string `json:"number" validate:"required,max=64"`
}

type noArgs struct{}

func (s *Server) catalog() []tool {
	dateProp := prop("string", "Draw date in YYYY-MM-DD format")
	limitProp := prop("integer", "Maximum number of results")
	yearProp := prop([]string{"string", "integer"}, "Year, e.g. 2024")

	return []tool{
		{
			Tool: Tool{
				Name:        "parse_and_insert_raw_json",
				Description: "Parse a raw lottery result JSON document and insert it into the database",
				InputSchema: object(props{"raw_json": prop("string", "Raw JSON document as returned by the results API")}, "raw_json"),
			},
			run: handler(s.parseAndInsert),
		},
		{
			Tool: Tool{
				Name:        "fetch_and_save_multiple_results",
				Description: "Fetch results for several draw dates from the API and save those not stored yet",
				InputSchema: object(props{"dates": map[string]any{
					"type":        "array",
					"description": "List of [day, month, year] triples, e.g. [[\"01\",\"03\",\"2024\"]]",
					"items": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 3,
						"maxItems": 3,
					},
				}}, "dates"),
			},
			run: handler(s.fetchAndSave),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_results_after_date",
				Description: "Get draws on or after a date, oldest first",
				InputSchema: object(props{"date": dateProp, "limit": limitProp}, "date"),
			},
			run: handler(s.afterDate),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_results_before_date",
				Description: "Get draws on or before a date, newest first",
				InputSchema: object(props{"date": dateProp, "limit": limitProp}, "date"),
			},
			run: handler(s.beforeDate),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_results_by_date_range",
				Description: "Get draws between two dates inclusive",
				InputSchema: object(props{
					"start_date": prop("string", "Start date in YYYY-MM-DD format"),
					"end_date":   prop("string", "End date in YYYY-MM-DD format"),
				}, "start_date", "end_date"),
			},
			run: handler(s.dateRange),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_results_by_year",
				Description: "Get all draws of a year",
				InputSchema: object(props{"year": yearProp}, "year"),
			},
			run: handler(s.byYear),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_results_by_month",
				Description: "Get all draws of a month",
				InputSchema: object(props{
					"year":  yearProp,
					"month": prop([]string{"string", "integer"}, "Month 1-12"),
				}, "year", "month"),
			},
			run: handler(s.byMonth),
		},
		{
			Tool: Tool{
				Name:        "get_latest_lottery_results",
				Description: "Get the most recent draws",
				InputSchema: object(props{"limit": prop("integer", "Number of draws, default 10")}),
			},
			run: handler(s.latest),
		},
		{
			Tool: Tool{
				Name:        "get_lottery_by_date",
				Description: "Get the draw of one date",
				InputSchema: object(props{"date": dateProp}, "date"),
			},
			run: handler(s.byDate),
		},
		{
			Tool: Tool{
				Name:        "search_number",
				Description: "Search stored prize numbers containing the given digits",
				InputSchema: object(props{"number": prop("string", "Digits to search for")}, "number"),
			},
			run: handler(s.search),
		},
		{
			Tool: Tool{
				Name:        "get_complete_lottery_data",
				Description: "Get the draw of one date with every prize number",
				InputSchema: object(props{"date": dateProp}, "date"),
			},
			run: handler(s.complete),
		},
		{
			Tool: Tool{
				Name:        "generate_and_save_report",
				Description: "Render the html report of one draw and save it to the report directory",
				InputSchema: object(props{"date": dateProp}, "date"),
			},
			run: handler(s.report),
		},
		{
			Tool: Tool{
				Name:        "create_database",
				Description: "Create the results tables if they do not exist",
				InputSchema: object(props{}),
			},
			run: handler(s.createDatabase),
		},
	}
}

type props = map[string]any

func object(p props, required ...string) map[string]any {
	out := map[string]any{"type": "object", "properties": p}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func prop(typ any, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func (s *Server) parseAndInsert(ctx context.Context, in rawArgs) (payload, error) {
	id, err := s.deps.Ingest.IngestRaw(ctx, in.RawJSON)
	if err != nil {
		return nil, err
	}
	return payload{
		"lottery_id": id,
		"message":    fmt.Sprintf("Successfully inserted lottery with ID: %d", id),
	}, nil
}

func (s *Server) fetchAndSave(ctx context.Context, in datesArgs) (payload, error) {
	reqs := make([]drawdate.Request, 0, len(in.Dates))
	for _, d := range in.Dates {
		reqs = append(reqs, drawdate.Request{Day: d[0], Month: d[1], Year: d[2]})
	}
	rep, err := s.deps.Ingest.Run(ctx, reqs)
	if err != nil && rep.RunID == "" {
		return nil, err
	}
	out := payload{
		"results_count":  len(rep.Results),
		"results":        rep.Results,
		"run_id":         rep.RunID,
		"requested":      rep.Requested,
		"already_stored": rep.AlreadyStored,
		"no_result":      rep.NoResult,
		"failed":         rep.Failed,
		"persisted":      rep.Persisted,
	}
	// a run that started reports what it fetched even when saving failed
	if err != nil {
		out["success"] = false
		out["persisted"] = false
		out["error"] = perr.WireFrom(err)
	}
	return out, nil
}

func (s *Server) afterDate(ctx context.Context, in dateLimitArgs) (payload, error) {
	return results(s.deps.Reads.AfterDate(ctx, in.Date, in.Limit))
}

func (s *Server) beforeDate(ctx context.Context, in dateLimitArgs) (payload, error) {
	return results(s.deps.Reads.BeforeDate(ctx, in.Date, in.Limit))
}

func (s *Server) dateRange(ctx context.Context, in rangeArgs) (payload, error) {
	return results(s.deps.Reads.ByDateRange(ctx, in.StartDate, in.EndDate))
}

func (s *Server) byYear(ctx context.Context, in yearArgs) (payload, error) {
	return results(s.deps.Reads.ByYear(ctx, int(in.Year)))
}

func (s *Server) byMonth(ctx context.Context, in monthArgs) (payload, error) {
	return results(s.deps.Reads.ByMonth(ctx, int(in.Year), int(in.Month)))
}

func (s *Server) latest(ctx context.Context, in latestArgs) (payload, error) {
	return results(s.deps.Reads.Latest(ctx, in.Limit))
}

func (s *Server) byDate(ctx context.Context, in dateArgs) (payload, error) {
	rec, found, err := s.deps.Reads.ByDate(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	if !found {
		return payload{"result": nil}, nil
	}
	return payload{"result": rec}, nil
}

func (s *Server) search(ctx context.Context, in numberArgs) (payload, error) {
	return results(s.deps.Reads.Search(ctx, in.Number))
}

func (s *Server) complete(ctx context.Context, in dateArgs) (payload, error) {
	d, found, err := s.deps.Reads.Complete(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	if !found {
		return payload{"result": nil}, nil
	}
	return payload{"result": d}, nil
}

func (s *Server) report(ctx context.Context, in dateArgs) (payload, error) {
	path, err := s.deps.Reports.Save(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	return payload{
		"message": "Report generated successfully for date: " + in.Date,
		"path":    path,
	}, nil
}

func (s *Server) createDatabase(ctx context.Context, _ noArgs) (payload, error) {
	if err := s.deps.Schema.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return payload{"message": "Database created successfully"}, nil
}

// results wraps a list; nil becomes [] so callers always see an array
func results[T any](items []T, err error) (payload, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return payload{"results": items}, nil
}
