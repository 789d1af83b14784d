// Package drawdate builds the canonical YYYY-MM-DD key a lottery draw is stored under
// and the day/month/year requests the remote endpoint expects
package drawdate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "glolotto/internal/platform/errors"
)

// Layout is the canonical draw date layout
const Layout = "2006-01-02"

// DrawDays are the days of the month the GLO draws on
var DrawDays = []int{1, 16}

// Format joins day, month and year into the canonical key.
// Month and day are left padded with zeros to two characters; year is kept as given
func Format(day, month, year string) string {
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

// Request is one day/month/year triple sent as-is to the remote endpoint
type Request struct {
	Day   string `json:"date"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Key returns the canonical storage key of r
func (r Request) Key() string { return Format(r.Day, r.Month, r.Year) }

// String renders r the way operators type it (DD/MM/YYYY)
func (r Request) String() string { return r.Day + "/" + r.Month + "/" + r.Year }

// NewRequest zero pads day and month the way the year generator does
func NewRequest(day, month, year int) Request {
	return Request{
		Day:   fmt.Sprintf("%02d", day),
		Month: fmt.Sprintf("%02d", month),
		Year:  strconv.Itoa(year),
	}
}

// DrawDates returns the requests for every draw day of year, January first
func DrawDates(year int) []Request {
	out := make([]Request, 0, 12*len(DrawDays))
	for m := time.January; m <= time.December; m++ {
		for _, d := range DrawDays {
			out = append(out, NewRequest(d, int(m), year))
		}
	}
	return out
}

// ParseRequest reads DD/MM/YYYY (also DD-MM-YYYY) into a Request without reformatting it
func ParseRequest(s string) (Request, error) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return Request{}, perr.InvalidArgf("date %q: want DD/MM/YYYY", s)
	}
	req := Request{Day: parts[0], Month: parts[1], Year: parts[2]}
	if _, err := time.Parse(Layout, req.Key()); err != nil {
		return Request{}, perr.InvalidArgf("date %q is not a calendar date", s)
	}
	return req, nil
}

// Canonical normalizes a payload date (YYYY-M-D or YYYY-MM-DD, optionally with a time part)
// to the canonical key
func Canonical(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return "", perr.InvalidArgf("date %q: want YYYY-MM-DD", s)
	}
	key := Format(parts[2], parts[1], parts[0])
	if _, err := time.Parse(Layout, key); err != nil {
		return "", perr.InvalidArgf("date %q is not a calendar date", s)
	}
	return key, nil
}

// YearBounds returns the first and last keys of year
func YearBounds(year int) (string, string) {
	y := strconv.Itoa(year)
	return y + "-01-01", y + "-12-31"
}

// MonthBounds returns the range keys for month of year. The upper bound is day 31
// for every month, which is safe for string comparison over canonical keys
func MonthBounds(year, month int) (string, string) {
	prefix := fmt.Sprintf("%d-%02d-", year, month)
	return prefix + "01", prefix + "31"
}
