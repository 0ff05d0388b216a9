// Package demo runs the two travel-time walkthroughs: a many-to-many matrix
// and a list of explicit origin-destination pairs. Each prints its results
// and saves them as CSV.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"osrm-travel-tools/internal/config"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"osrm-travel-tools/internal/services"
	"osrm-travel-tools/internal/tabular"
)

const (
	DurationsFile = "demo_durations_min.csv"
	DistancesFile = "demo_distances_km.csv"
	PairwiseFile  = "demo_pairwise_results.csv"
)

// PairBindings are the column names used by Scenario.PairsTable.
var PairBindings = services.ColumnBindings{
	OriginLat: "o_lat",
	OriginLon: "o_lon",
	DestLat:   "d_lat",
	DestLon:   "d_lon",
}

type Runner struct {
	Out      io.Writer
	Provider ports.TravelTimeProvider
	Scenario *config.Scenario
	OutDir   string
	Profile  string
	// Delay between pairwise route calls.
	Delay time.Duration
}

func (r *Runner) validate() error {
	if r.Out == nil {
		return errors.New("demo: output writer is nil")
	}
	if r.Provider == nil {
		return errors.New("demo: provider is nil")
	}
	if r.Scenario == nil {
		return errors.New("demo: scenario is nil")
	}
	if r.OutDir == "" {
		return errors.New("demo: output directory is empty")
	}
	return nil
}

func (r *Runner) profile() string {
	if r.Profile != "" {
		return r.Profile
	}
	if r.Scenario != nil && r.Scenario.Profile != "" {
		return r.Scenario.Profile
	}
	return domain.DefaultProfile
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}

// Run executes the matrix demo, then the pairwise demo.
func (r *Runner) Run(ctx context.Context) (err error) {
	defer obs.Time(ctx, "demo.Run")(&err)

	if err := r.validate(); err != nil {
		return err
	}

	r.printf("\n\n%s\n\n", banner("OSRM Travel Time Tools Demo"))

	if err := r.RunMatrix(ctx); err != nil {
		return err
	}

	r.printf("\n%s\n\n", rule("-"))

	if err := r.RunPairwise(ctx); err != nil {
		return err
	}

	r.printf("%s\nDemo complete! Check the %s/ folder for output files.\n%s\n", rule("="), r.OutDir, rule("="))
	return nil
}

// RunMatrix computes all origin x destination combinations with one table
// call and writes durations (minutes) and distances (km) as two CSV files.
func (r *Runner) RunMatrix(ctx context.Context) (err error) {
	defer obs.Time(ctx, "demo.RunMatrix")(&err)

	if err := r.validate(); err != nil {
		return err
	}

	r.printf("%s\n\n", section("DEMO 1: Many-to-Many Travel Time Matrix"))

	r.printf("Origins:\n")
	for i, p := range r.Scenario.Origins {
		r.printf("  %d. %s (%.5f, %.5f)\n", i+1, p.Name, p.Lat, p.Lon)
	}
	r.printf("\nDestinations:\n")
	for i, p := range r.Scenario.Destinations {
		r.printf("  %d. %s (%.5f, %.5f)\n", i+1, p.Name, p.Lat, p.Lon)
	}

	r.printf("\nCalculating travel times using OSRM /table API...\n")
	m, err := services.TableMatrix(ctx, r.Provider, r.Scenario.OriginPlaces(), r.Scenario.DestinationPlaces(), r.profile())
	if err != nil {
		return fmt.Errorf("matrix demo: %w", err)
	}

	shown := m.Rounded(1, 2)
	r.printf("\nTravel Times (minutes):\n%s\n", renderTable(matrixTable(shown, shown.Durations, 1)))
	r.printf("\nDistances (km):\n%s\n", renderTable(matrixTable(shown, shown.Distances, 2)))

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return fmt.Errorf("matrix demo: create %q: %w", r.OutDir, err)
	}

	if err := tabular.WriteCSVFile(filepath.Join(r.OutDir, DurationsFile), matrixTable(m, m.Durations, -1)); err != nil {
		return fmt.Errorf("matrix demo: %w", err)
	}
	if err := tabular.WriteCSVFile(filepath.Join(r.OutDir, DistancesFile), matrixTable(m, m.Distances, -1)); err != nil {
		return fmt.Errorf("matrix demo: %w", err)
	}

	r.printf("\n✓ Results saved to %s/\n\n", r.OutDir)
	return nil
}

// RunPairwise routes each scenario pair individually, pausing Delay between
// requests, and writes the pairs with their results as one CSV file.
func (r *Runner) RunPairwise(ctx context.Context) (err error) {
	defer obs.Time(ctx, "demo.RunPairwise")(&err)

	if err := r.validate(); err != nil {
		return err
	}

	r.printf("%s\n\n", section("DEMO 2: Pairwise Origin-Destination Travel Times"))

	pairs, err := r.Scenario.PairsTable()
	if err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}

	names, err := pairs.Select("origin", "dest")
	if err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}
	r.printf("Origin-Destination Pairs:\n%s\n\n", renderTable(names))

	calc := services.NewTravelTimeCalculator(r.profile(), r.Provider)
	res, err := calc.CalculateTravelMatrix(ctx, pairs, PairBindings, r.Delay)
	if err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}

	out, err := res.Table(2)
	if err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}

	shown, err := out.Select("origin", "dest", services.TravelTimeColumn, services.DistanceColumn)
	if err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}
	r.printf("\nResults:\n%s\n", renderTable(shown))

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return fmt.Errorf("pairwise demo: create %q: %w", r.OutDir, err)
	}

	path := filepath.Join(r.OutDir, PairwiseFile)
	if err := tabular.WriteCSVFile(path, out); err != nil {
		return fmt.Errorf("pairwise demo: %w", err)
	}

	r.printf("\n✓ Results saved to %s\n\n", path)
	return nil
}
