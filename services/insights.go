package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByState: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var (
		totalPrice   float64
		totalMileage float64
		withMileage  int
	)
	for _, l := range listings {
		if l.DealerState != "" {
			report.ListingsByState[l.DealerState]++
		}
		if l.Mileage != nil {
			totalMileage += float64(*l.Mileage)
			withMileage++
		}
		if !l.Price.Valid {
			continue
		}

		price := l.Price.Decimal.InexactFloat64()
		report.PricedListings++
		totalPrice += price
		if report.Cheapest == nil || price < report.MinPrice {
			report.MinPrice = price
			report.Cheapest = l
		}
		if report.MostExpensive == nil || price > report.MaxPrice {
			report.MaxPrice = price
			report.MostExpensive = l
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(totalPrice / float64(report.PricedListings))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}
	if withMileage > 0 {
		report.AverageMileage = round2(totalMileage / float64(withMileage))
	}

	s.logger.Debug("[insights] %d listings, %d priced", report.TotalListings, report.PricedListings)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 SAMPLE LISTING INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Sample listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With a price    : \033[1m%d\033[0m\n", r.PricedListings)
	if r.AverageMileage > 0 {
		fmt.Fprintf(w, "  Average mileage : \033[1m%.0f\033[0m\n", r.AverageMileage)
	}
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.Cheapest != nil {
		printListing(w, "Cheapest Listing", thin, r.Cheapest, r.MinPrice)
	}
	if r.MostExpensive != nil {
		printListing(w, "Most Expensive Listing", thin, r.MostExpensive, r.MaxPrice)
	}

	// Listings by State
	fmt.Fprintf(w, "\033[1;33m  Listings by State\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByState) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	} else {
		type stateCount struct {
			state string
			count int
		}
		var states []stateCount
		for st, cnt := range r.ListingsByState {
			states = append(states, stateCount{st, cnt})
		}
		sort.Slice(states, func(i, j int) bool {
			if states[i].count != states[j].count {
				return states[i].count > states[j].count
			}
			return states[i].state < states[j].state
		})
		for _, sc := range states {
			bar := strings.Repeat("█", min(sc.count, 40))
			fmt.Fprintf(w, "  %-6s %s (%d)\n", sc.state, bar, sc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printListing(w io.Writer, title, thin string, l *models.Listing, price float64) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %s\n", truncate(describe(l), 50))
	fmt.Fprintf(w, "  Dealer : %s\n", truncate(l.DealerName, 42))
	fmt.Fprintf(w, "  Price  : \033[1;32m$%.2f\033[0m\n", price)
	fmt.Fprintln(w)
}

func describe(l *models.Listing) string {
	parts := []string{strconv.Itoa(l.Year), l.Make, l.Model}
	if l.Trim != nil {
		parts = append(parts, *l.Trim)
	}
	return strings.Join(parts, " ") + " (" + l.VIN + ")"
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
