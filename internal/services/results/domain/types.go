// Package domain holds the lottery result types shared by the store, the fetcher and the pipeline
package domain

import (
	"strconv"
	"strings"
	"time"

	"glolotto/internal/core/drawdate"
)

// Category is one of the nine fixed prize tiers
type Category string

// Prize tiers as the GLO names them
const (
	First  Category = "first"
	Second Category = "second"
	Third  Category = "third"
	Fourth Category = "fourth"
	Fifth  Category = "fifth"
	Last2  Category = "last2"
	Last3F Category = "last3f"
	Last3B Category = "last3b"
	Near1  Category = "near1"
)

// Categories lists every tier in persistence order
var Categories = []Category{First, Second, Third, Fourth, Fifth, Last2, Last3F, Last3B, Near1}

// DefaultPrice is stored when a category carries no price
const DefaultPrice = "0.00"

// ParseCategory maps a name onto a Category
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Categories {
		if k == c {
			return c, true
		}
	}
	return "", false
}

// Number is one winning number within a category
type Number struct {
	Round int    `json:"round"`
	Value string `json:"value"`
}

// Prize is a category's payout and its winning numbers
type Prize struct {
	Price   string   `json:"price"`
	Numbers []Number `json:"number"`
}

// NormalizedResult is one draw as every schema variant decodes to it
type NormalizedResult struct {
	Date   string             `json:"date"`
	Period []int              `json:"period"`
	Prizes map[Category]Prize `json:"data"`
}

// PeriodString joins the period ids the way they are stored ("123,124")
func (r NormalizedResult) PeriodString() string {
	parts := make([]string, len(r.Period))
	for i, p := range r.Period {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// NumberCount is the total of winning numbers across categories
func (r NormalizedResult) NumberCount() int {
	n := 0
	for _, p := range r.Prizes {
		n += len(p.Numbers)
	}
	return n
}

// DrawRecord is one stored draw
type DrawRecord struct {
	ID        int64     `json:"id"`
	DrawDate  string    `json:"draw_date"`
	Period    string    `json:"period"`
	CreatedAt time.Time `json:"created_at"`
}

// PrizeNumber is one stored winning number
type PrizeNumber struct {
	ID          int64    `json:"id"`
	DrawID      int64    `json:"lottery_id"`
	Category    Category `json:"category"`
	PrizeAmount string   `json:"prize_amount"`
	NumberValue string   `json:"number_value"`
	RoundNumber int      `json:"round_number"`
}

// DrawWithPrizes is the materialized view of a draw
type DrawWithPrizes struct {
	Draw   DrawRecord    `json:"lottery"`
	Prizes []PrizeNumber `json:"prizes"`
}

// SearchHit pairs a matched number with its draw
type SearchHit struct {
	Draw  DrawRecord  `json:"lottery"`
	Prize PrizeNumber `json:"prize"`
}

// Partition splits requests by whether their draw is already stored
type Partition struct {
	ToFetch       []drawdate.Request `json:"to_fetch"`
	AlreadyStored []string           `json:"already_stored"`
}

// SaveStats counts what a Save wrote
type SaveStats struct {
	DrawID   int64 `json:"draw_id"`
	Inserted int   `json:"inserted"`
	Deduped  int   `json:"deduped"`
}

// FetchFailure records a date the pipeline skipped because of an error
type FetchFailure struct {
	Date  string `json:"date"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
	// Retryable is set for transport and availability failures worth another run
	Retryable bool `json:"retryable"`
}

// RunReport summarizes one pipeline run
type RunReport struct {
	RunID         string             `json:"run_id"`
	Requested     int                `json:"requested"`
	AlreadyStored []string           `json:"already_stored"`
	Results       []NormalizedResult `json:"results"`
	NoResult      []string           `json:"no_result"`
	Failed        []FetchFailure     `json:"failed"`
	Persisted     bool               `json:"persisted"`
}

// Fetched is the number of results the run obtained
func (r RunReport) Fetched() int { return len(r.Results) }
