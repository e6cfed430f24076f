package main

import (
	"fmt"
	"sort"

	"github.com/insolight/insolight/pkg/calc"
	"github.com/insolight/insolight/pkg/insolation"
	"github.com/insolight/insolight/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.EntityPath != "" {
				fmt.Printf("    -> %s = %v\n", e.EntityPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.EntityPath != "" {
				fmt.Printf("    -> %s = %v\n", w.EntityPath, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printInsolationReport(r *calc.BuildingInsolationResult, cfg calc.Config) {
	fmt.Printf("Insolation Report: %s (%s)\n", r.BuildingID, r.Date)
	fmt.Println("==================================")
	fmt.Printf("Required: %s, time step: %s\n", cfg.RequiredDuration, cfg.TimeStep)
	fmt.Println()

	fmt.Printf("%-16s %10s %10s %8s %8s\n", "Window", "Duration", "Required", "Periods", "Status")
	fmt.Printf("%-16s %10s %10s %8s %8s\n", "----------------", "----------", "----------", "--------", "--------")

	for _, id := range sortedKeys(r.Windows) {
		w := r.Windows[id]
		if w.Status == insolation.StatusError {
			fmt.Printf("%-16s %10s %10s %8s %8s\n", id, "-", "-", "-", "ERROR")
			fmt.Printf("  %s\n", w.Reason)
			continue
		}
		fmt.Printf("%-16s %10s %10s %8d %8s\n",
			id, w.Formatted, formatSecondsShort(w.RequiredSeconds), len(w.Periods), passFail(w.MeetsRequirement))
	}

	fmt.Println()
	fmt.Println("Rooms (best window)")
	fmt.Println("-------------------")
	for _, id := range sortedKeys(r.Rooms) {
		room := r.Rooms[id]
		if room.BestWindowID == "" {
			fmt.Printf("  %-14s no exterior windows\n", id)
			continue
		}
		fmt.Printf("  %-14s %s via %s  %s\n",
			id, formatSecondsShort(room.TotalSeconds), room.BestWindowID, passFail(room.MeetsRequirement))
	}

	fmt.Println()
	printSummary(r.Summary)
}

func printKEOReport(r *calc.BuildingKEOResult, cfg calc.Config) {
	fmt.Printf("Natural Illumination Report: %s\n", r.BuildingID)
	fmt.Println("==================================")
	fmt.Printf("Minimum KEO: %.2f%%, grid density: %.1f pts/m²\n", cfg.MinKEO, cfg.GridDensity)
	fmt.Println()

	fmt.Printf("%-14s %8s %10s %10s %8s\n", "Room", "Points", "Min KEO", "Max KEO", "Status")
	fmt.Printf("%-14s %8s %10s %10s %8s\n", "--------------", "--------", "----------", "----------", "--------")

	for _, id := range sortedKeys(r.Rooms) {
		points := r.Rooms[id]
		if len(points) == 0 {
			fmt.Printf("%-14s %8d %10s %10s %8s\n", id, 0, "-", "-", "SKIP")
			continue
		}
		min, max := points[0].Total, points[0].Total
		pass := true
		for _, p := range points {
			if p.Total < min {
				min = p.Total
			}
			if p.Total > max {
				max = p.Total
			}
			if !p.MeetsRequirement {
				pass = false
			}
		}
		fmt.Printf("%-14s %8d %9.3f%% %9.3f%% %8s\n", id, len(points), min, max, passFail(pass))
	}

	fmt.Println()
	printSummary(r.Summary)
}

func printSummary(s calc.Summary) {
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Evaluated:       %d\n", s.Total)
	fmt.Printf("  Compliant:       %d\n", s.Compliant)
	fmt.Printf("  Non-compliant:   %d\n", s.NonCompliant)
	if s.Errors > 0 {
		fmt.Printf("  Errors:          %d\n", s.Errors)
	}
	fmt.Printf("  Compliance rate: %.1f%%\n", s.ComplianceRate*100)
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func formatSecondsShort(s int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
