package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ujwal-Bamb/all-jobs-finder/gazetteer"
	"github.com/Ujwal-Bamb/all-jobs-finder/ingest"
)

var nearFlags struct {
	placesPath  string
	recordsPath string
	radius      float64
	unit        string
	limit       int
	fuzzyCutoff float64
	nameColumn  string
	showColumns []string
}

var nearCmd = &cobra.Command{
	Use:   "near <zip code | city[, state]>",
	Short: "list job records near a location",
	Args:  cobra.ExactArgs(1),
	RunE:  runNear,
}

func init() {
	nearCmd.Flags().StringVar(&nearFlags.placesPath, "places", "uszips.csv", "reference place dataset (CSV)")
	nearCmd.Flags().StringVar(&nearFlags.recordsPath, "records", "jobs.csv", "job records to rank (CSV)")
	nearCmd.Flags().Float64Var(&nearFlags.radius, "radius", 50, "maximum distance from the query location")
	nearCmd.Flags().StringVar(&nearFlags.unit, "unit", "mi", "distance unit: mi or km")
	nearCmd.Flags().IntVar(&nearFlags.limit, "limit", 10, "maximum results to print (0 = all)")
	nearCmd.Flags().Float64Var(&nearFlags.fuzzyCutoff, "fuzzy-cutoff", 0.70, "minimum similarity for fuzzy city matching")
	nearCmd.Flags().StringVar(&nearFlags.nameColumn, "name-column", "client_name", "record column shown as the result title")
	nearCmd.Flags().StringSliceVar(&nearFlags.showColumns, "show", []string{"language", "pay_rate", "gender", "order_notes"}, "extra record columns to print")
	rootCmd.AddCommand(nearCmd)
}

func parseUnit(s string) (gazetteer.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mi", "mile", "miles":
		return gazetteer.Miles, nil
	case "km", "kilometer", "kilometers":
		return gazetteer.Kilometers, nil
	}
	return 0, fmt.Errorf("unknown unit %q: want mi or km", s)
}

func runNear(cmd *cobra.Command, args []string) error {
	unit, err := parseUnit(nearFlags.unit)
	if err != nil {
		return err
	}

	idx, err := loadIndex(nearFlags.placesPath, nearFlags.fuzzyCutoff)
	if err != nil {
		return err
	}

	records, err := loadRecords(nearFlags.recordsPath)
	if err != nil {
		return err
	}

	origin, ranked, dropped, err := idx.ResolveAndRank(args[0], ingest.Candidates(records), nearFlags.radius, unit)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Printf("%d record(s) had no resolvable location and were excluded", dropped)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Origin: %s [%s]\n\n", placeLabel(origin.Place), origin.Place.Geohash())
	printRanked(cmd.OutOrStdout(), ranked, nearFlags.limit)
	return nil
}

func loadIndex(path string, fuzzyCutoff float64) (*gazetteer.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening place dataset: %w", err)
	}
	defer f.Close()

	rows, err := ingest.ReadPlaces(f, ingest.DefaultFieldMap())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	idx := gazetteer.Build(rows, gazetteer.WithFuzzyCutoff(fuzzyCutoff))
	if idx.Skipped() > 0 {
		log.Printf("%d reference row(s) skipped for missing coordinates", idx.Skipped())
	}
	if idx.Len() == 0 {
		return nil, fmt.Errorf("place dataset %s produced an empty index", path)
	}
	return idx, nil
}

func loadRecords(path string) ([]ingest.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()

	records, err := ingest.ReadRecords(f, ingest.DefaultRecordFields())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

func placeLabel(p gazetteer.Place) string {
	if p.State == "" {
		return p.City
	}
	return p.City + ", " + p.State
}

// printRanked writes one block per result in the layout the original
// spreadsheet tooling produced.
func printRanked(w io.Writer, ranked []gazetteer.RankedResult, limit int) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No records within range.")
		return
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for _, r := range ranked {
		rec, ok := r.Candidate.(ingest.Record)
		title := ""
		if ok {
			title = rec.Get(nearFlags.nameColumn)
		}
		if title == "" {
			title = placeLabel(r.Match.Place)
		}

		fmt.Fprintln(w, title)
		fmt.Fprintf(w, "  Location: %s\n", placeLabel(r.Match.Place))
		fmt.Fprintf(w, "  Distance: %.1f %s\n", r.Distance, r.Unit)
		if ok {
			for _, col := range nearFlags.showColumns {
				if v := rec.Get(col); v != "" {
					fmt.Fprintf(w, "  %s: %s\n", columnLabel(col), v)
				}
			}
		}
		fmt.Fprintln(w)
	}
}

// columnLabel turns a snake_case column name into a display label.
func columnLabel(col string) string {
	words := strings.Split(strings.ReplaceAll(col, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
