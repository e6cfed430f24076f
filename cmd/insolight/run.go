package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/calc"
	"github.com/insolight/insolight/pkg/validation"
)

// loadAndValidate loads the project and runs schema validation.
func loadAndValidate(projectPath string) (*building.Project, *validation.Report, error) {
	project, err := building.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading project: %w", err)
	}
	report := validation.ValidateBuilding(&project.Building)
	return project, report, nil
}

// resolveDate picks the evaluation date: the explicit flag wins, then
// the first project date, then today.
func resolveDate(project *building.Project, flag string, tz *time.Location) (time.Time, error) {
	pick := flag
	if pick == "" && len(project.Defaults.Dates) > 0 {
		pick = project.Defaults.Dates[0]
	}
	if pick == "" {
		return time.Now().In(tz), nil
	}
	d, err := time.ParseInLocation("2006-01-02", pick, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", pick, err)
	}
	return d, nil
}

func runValidate(projectPath string) error {
	project, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	cfg := calc.FromDefaults(project.Defaults)
	report.Merge(cfg.Validate())

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runInsolation(projectPath, date string) error {
	project, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("project has validation errors; fix before calculating")
	}

	cfg := calc.FromDefaults(project.Defaults)
	tz, err := project.Building.Location.TZ()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}
	d, err := resolveDate(project, date, tz)
	if err != nil {
		return err
	}

	res, err := calc.ComputeInsolation(context.Background(), project.Building, d, cfg)
	if err != nil {
		return err
	}

	printInsolationReport(res, cfg)

	if len(res.Report.Warnings) > 0 {
		fmt.Println()
		printValidationReport(res.Report)
	}
	return nil
}

func runKEO(projectPath string) error {
	project, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("project has validation errors; fix before calculating")
	}

	cfg := calc.FromDefaults(project.Defaults)
	res, err := calc.ComputeKEO(context.Background(), project.Building, cfg)
	if err != nil {
		return err
	}

	printKEOReport(res, cfg)

	if len(res.Report.Warnings) > 0 {
		fmt.Println()
		printValidationReport(res.Report)
	}
	return nil
}

func runSolve(projectPath, date string) error {
	project, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("project has validation errors")
	}

	cfg := calc.FromDefaults(project.Defaults)
	tz, err := project.Building.Location.TZ()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}
	d, err := resolveDate(project, date, tz)
	if err != nil {
		return err
	}

	ctx := context.Background()
	insolationRes, err := calc.ComputeInsolation(ctx, project.Building, d, cfg)
	if err != nil {
		return err
	}
	keoRes, err := calc.ComputeKEO(ctx, project.Building, cfg)
	if err != nil {
		return err
	}

	report.Merge(insolationRes.Report)
	report.Merge(keoRes.Report)

	output := map[string]any{
		"building":   project.Building.ID,
		"date":       insolationRes.Date,
		"insolation": insolationRes,
		"keo":        keoRes,
		"validation": report,
	}
	return emitJSON(output)
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
