// Package report renders a stored draw as a standalone Thai html page
package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/services/results/domain"
)

// DefaultDir is where Save writes when Config.Dir is empty
const DefaultDir = "reports"

//go:embed report.html.tmpl
var pageSrc string

var page = template.Must(template.New("report").Parse(pageSrc))

// Order is the section order of a report
var Order = []domain.Category{
	domain.First, domain.Near1, domain.Second, domain.Third, domain.Fourth,
	domain.Fifth, domain.Last3F, domain.Last3B, domain.Last2,
}

var names = map[domain.Category]string{
	domain.First:  "รางวัลที่ 1",
	domain.Second: "รางวัลที่ 2",
	domain.Third:  "รางวัลที่ 3",
	domain.Fourth: "รางวัลที่ 4",
	domain.Fifth:  "รางวัลที่ 5",
	domain.Last2:  "รางวัลท้าย 2 ตัว",
	domain.Last3F: "รางวัลท้าย 3 ตัว (หน้า)",
	domain.Last3B: "รางวัลท้าย 3 ตัว (หลัง)",
	domain.Near1:  "รางวัลใกล้เคียงรางวัลที่ 1",
}

// DisplayName returns the Thai name of a prize tier, or the raw name when unknown
func DisplayName(c domain.Category) string {
	if n, ok := names[c]; ok {
		return n
	}
	return string(c)
}

// FormatAmount renders a prize amount in whole baht
func FormatAmount(amount string) string {
	if v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64); err == nil {
		return fmt.Sprintf("%.0f บาท", v)
	}
	return amount + " บาท"
}

// Source is the read the report needs
type Source interface {
	Complete(ctx context.Context, date string) (domain.DrawWithPrizes, bool, error)
}

// Config configures the report service
type Config struct {
	Dir string
}

// Service renders and saves reports
type Service struct {
	src Source
	dir string
	now func() time.Time
}

// New constructs the report service
func New(src Source, cfg Config) *Service {
	if src == nil {
		panic("report.Service requires a non nil Source")
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	return &Service{src: src, dir: dir, now: time.Now}
}

// Dir returns the directory Save writes into
func (s *Service) Dir() string { return s.dir }

type section struct {
	Category domain.Category
	Name     string
	Class    string
	Amount   string
	Numbers  []domain.PrizeNumber
}

type view struct {
	Date      string
	Period    string
	Total     int
	Sections  []section
	Generated string
}

// Generate renders the report of the draw on date; ErrorCodeNotFound when absent
func (s *Service) Generate(ctx context.Context, date string) (string, error) {
	html, _, err := s.render(ctx, date)
	return html, err
}

// Save renders the report and writes lottery_report_<date>.html into the report
// directory, creating it when missing. It returns the written path
func (s *Service) Save(ctx context.Context, date string) (string, error) {
	html, key, err := s.render(ctx, date)
	if err != nil {
		return "", err
	}
	name := FileName(key)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "create report dir %s", s.dir)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "write report %s", path)
	}
	logger.C(ctx).Info().Str("date", date).Str("path", path).Int("bytes", len(html)).Msg("report saved")
	return path, nil
}

// FileName is the report file name for a draw date
func FileName(date string) string { return "lottery_report_" + date + ".html" }

// render returns the page and the stored draw date it was built from
func (s *Service) render(ctx context.Context, date string) (string, string, error) {
	d, found, err := s.src.Complete(ctx, date)
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", "", perr.NotFoundf("ไม่พบข้อมูลรางวัลสำหรับวันที่ %s", date)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, s.build(d)); err != nil {
		return "", "", perr.Wrapf(err, perr.ErrorCodeUnknown, "render report %s", d.Draw.DrawDate)
	}
	return buf.String(), d.Draw.DrawDate, nil
}

func (s *Service) build(d domain.DrawWithPrizes) view {
	groups := make(map[domain.Category][]domain.PrizeNumber)
	for _, p := range d.Prizes {
		groups[p.Category] = append(groups[p.Category], p)
	}

	v := view{
		Date:      d.Draw.DrawDate,
		Period:    d.Draw.Period,
		Total:     len(d.Prizes),
		Sections:  make([]section, 0, len(groups)),
		Generated: s.now().Format("2006-01-02 15:04:05 MST"),
	}
	for _, c := range Order {
		nums := groups[c]
		if len(nums) == 0 {
			continue
		}
		sort.SliceStable(nums, func(i, j int) bool { return nums[i].RoundNumber < nums[j].RoundNumber })
		v.Sections = append(v.Sections, section{
			Category: c,
			Name:     DisplayName(c),
			Class:    sectionClass(c),
			Amount:   FormatAmount(nums[0].PrizeAmount),
			Numbers:  nums,
		})
	}
	return v
}

func sectionClass(c domain.Category) string {
	switch c {
	case domain.First:
		return "prize-section first-prize"
	case domain.Near1, domain.Last2, domain.Last3F, domain.Last3B:
		return "prize-section special-prize"
	}
	return "prize-section"
}
