// Package ingest turns replies from the results endpoint into normalized draws.
// The endpoint has shipped more than one payload shape; each shape gets its own
// decoder and Parse picks one by sniffing the document
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/services/results/domain"
)

// Variant names one wire shape of the results payload
type Variant string

// Known variants
const (
	// VariantNestedV2 has a bool status and per-category {price, number:[{round,value}]}
	VariantNestedV2 Variant = "nested-v2"
	// VariantStringStatus is nested-v2 with status and statusCode sent as strings
	VariantStringStatus Variant = "string-status"
	// VariantFlat sends each category as a string or list of strings
	VariantFlat Variant = "flat"
)

// SuccessCode is the statusCode the endpoint sends with a real result
const SuccessCode = 200

// Document is a parsed reply that has not been normalized yet
type Document struct {
	Variant Variant
	// OK is the status flag; absent or unreadable counts as false
	OK bool
	// Code is the statusCode; SuccessCode when the reply omits it
	Code    int
	Message string

	result json.RawMessage
}

// HasResult reports whether response.result is present and not null
func (d Document) HasResult() bool { return !isNull(d.result) }

// Found reports whether the reply carries a draw: status true, code 200 and a result
func (d Document) Found() bool { return d.OK && d.Code == SuccessCode && d.HasResult() }

type envelope struct {
	Status        json.RawMessage `json:"status"`
	StatusCode    json.RawMessage `json:"statusCode"`
	StatusMessage json.RawMessage `json:"statusMessage"`
	Response      json.RawMessage `json:"response"`
}

// Parse reads raw as a reply document. Malformed JSON, or JSON that is not an
// object, is an ErrorCodeParse error; nothing else is checked here
func Parse(raw []byte) (Document, error) {
	var env envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return Document{}, perr.Wrap(err, perr.ErrorCodeParse, "invalid JSON document")
	}
	if dec.More() {
		return Document{}, perr.Parsef("invalid JSON document: trailing data")
	}

	doc := Document{
		OK:      statusOf(env.Status),
		Code:    codeOf(env.StatusCode),
		Message: textOf(env.StatusMessage),
	}
	if !isNull(env.Response) {
		var resp struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(env.Response, &resp); err == nil {
			doc.result = resp.Result
		}
	}
	doc.Variant = sniff(env.Status, doc.result)
	return doc, nil
}

// sniff picks the decoder: a flat prize shape wins, then the status encoding decides
func sniff(status, result json.RawMessage) Variant {
	if isFlat(result) {
		return VariantFlat
	}
	if first(status) == '"' {
		return VariantStringStatus
	}
	return VariantNestedV2
}

func isFlat(result json.RawMessage) bool {
	var r struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if isNull(result) || json.Unmarshal(result, &r) != nil {
		return false
	}
	for _, c := range domain.Categories {
		switch first(r.Data[string(c)]) {
		case '"', '[':
			return true
		}
	}
	return false
}

// Normalize decodes response.result into the canonical shape. A missing or
// mistyped date, period or data is an ErrorCodeSchema error naming the field.
// A category of the wrong shape is skipped with a warning, and individual prize
// numbers never fail, their fields fall back to defaults
func (d Document) Normalize(ctx context.Context) (domain.NormalizedResult, error) {
	var out domain.NormalizedResult
	if !d.HasResult() {
		return out, perr.Schemaf("response.result", "missing response.result")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(d.result, &fields); err != nil {
		return out, perr.Schemaf("response.result", "response.result is not an object")
	}

	date, ok := stringOf(fields["date"])
	if !ok {
		return out, perr.Schemaf("date", "missing date")
	}
	period, ok := periodOf(fields["period"])
	if !ok {
		return out, perr.Schemaf("period", "missing or invalid period")
	}
	var data map[string]json.RawMessage
	if isNull(fields["data"]) || json.Unmarshal(fields["data"], &data) != nil {
		return out, perr.Schemaf("data", "missing data")
	}

	var prizes map[domain.Category]domain.Prize
	var skipped []string
	if d.Variant == VariantFlat {
		prizes, skipped = decodeFlat(data)
	} else {
		prizes, skipped = decodeNested(data)
	}
	if len(skipped) > 0 {
		logger.C(ctx).Warn().
			Str("date", date).
			Str("variant", string(d.Variant)).
			Strs("skipped", skipped).
			Msg("malformed prize categories skipped")
	}

	out.Date = date
	out.Period = period
	out.Prizes = prizes
	return out, nil
}

// decodeNested reads categories shaped {price, number:[{round, value}]} and
// names the ones it could not read
func decodeNested(data map[string]json.RawMessage) (map[domain.Category]domain.Prize, []string) {
	var skipped []string
	out := make(map[domain.Category]domain.Prize, len(domain.Categories))
	for _, c := range domain.Categories {
		raw, ok := data[string(c)]
		if !ok || isNull(raw) {
			continue
		}
		var cat struct {
			Price  json.RawMessage   `json:"price"`
			Number []json.RawMessage `json:"number"`
		}
		if json.Unmarshal(raw, &cat) != nil {
			skipped = append(skipped, string(c))
			continue
		}
		p := domain.Prize{Price: priceOf(cat.Price), Numbers: make([]domain.Number, 0, len(cat.Number))}
		for _, n := range cat.Number {
			p.Numbers = append(p.Numbers, numberOf(n))
		}
		out[c] = p
	}
	return out, skipped
}

// decodeFlat reads categories sent as "123456" or ["123","456"], with an optional
// sibling <category>_price. Rounds follow list position starting at 1
func decodeFlat(data map[string]json.RawMessage) (map[domain.Category]domain.Prize, []string) {
	var skipped []string
	out := make(map[domain.Category]domain.Prize, len(domain.Categories))
	for _, c := range domain.Categories {
		raw, ok := data[string(c)]
		if !ok || isNull(raw) {
			continue
		}
		var values []json.RawMessage
		switch first(raw) {
		case '"':
			values = []json.RawMessage{raw}
		case '[':
			if json.Unmarshal(raw, &values) != nil {
				skipped = append(skipped, string(c))
				continue
			}
		default:
			skipped = append(skipped, string(c))
			continue
		}
		p := domain.Prize{Price: priceOf(data[string(c)+"_price"]), Numbers: make([]domain.Number, 0, len(values))}
		for i, v := range values {
			p.Numbers = append(p.Numbers, domain.Number{Round: i + 1, Value: valueOf(v)})
		}
		out[c] = p
	}
	return out, skipped
}

func numberOf(raw json.RawMessage) domain.Number {
	var n struct {
		Round json.RawMessage `json:"round"`
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(raw, &n) != nil {
		return domain.Number{}
	}
	round, _ := intOf(n.Round)
	return domain.Number{Round: round, Value: valueOf(n.Value)}
}

// statusOf accepts true, 1 and the strings "success", "true", "ok", "1"
func statusOf(raw json.RawMessage) bool {
	switch first(raw) {
	case 't':
		return true
	case '"':
		s, _ := stringOf(raw)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "success", "true", "ok", "1":
			return true
		}
	default:
		n, ok := intOf(raw)
		return ok && n == 1
	}
	return false
}

func codeOf(raw json.RawMessage) int {
	if isNull(raw) {
		return SuccessCode
	}
	n, _ := intOf(raw)
	return n
}

func periodOf(raw json.RawMessage) ([]int, bool) {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, it := range items {
		if first(it) == '"' {
			continue
		}
		if n, ok := intOf(it); ok {
			out = append(out, n)
		}
	}
	return out, true
}

// priceOf keeps the price text as sent; numbers keep their JSON spelling
func priceOf(raw json.RawMessage) string {
	if s := valueOf(raw); s != "" {
		return s
	}
	return domain.DefaultPrice
}

// valueOf reads a string or a bare number; anything else is ""
func valueOf(raw json.RawMessage) string {
	if s, ok := stringOf(raw); ok {
		return s
	}
	var n json.Number
	if first(raw) != '"' && json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// intOf reads an integral JSON number or a numeric string
func intOf(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}
	if s, ok := stringOf(raw); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	var n json.Number
	if json.Unmarshal(raw, &n) != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func stringOf(raw json.RawMessage) (string, bool) {
	if first(raw) != '"' {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func textOf(raw json.RawMessage) string {
	s, _ := stringOf(raw)
	return s
}

func first(raw json.RawMessage) byte {
	b := bytes.TrimLeft(raw, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func isNull(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) == 0 || string(b) == "null"
}
