/*
Package factory builds engine parameters from YAML configuration.

PURPOSE:
  Converts a YAML settings file into compliance engine parameters and a
  deduction schedule. Statutory values move on a legislative calendar,
  not a release calendar - operators adjust the file and restart instead
  of waiting for a build.

YAML SCHEMA:
  server:
    port: 8080
    database: ./data/payroll.db
  compliance:
    california_minimum_wage: "16.50"
    federal_minimum_wage: "7.25"
    weekly_salary_threshold: "684"
    highly_compensated_annual: "107432"
  deductions:
    federal_tax_rate: "0.12"
    state_tax_rate: "0.05"
    social_security_rate: "0.062"
    medicare_rate: "0.0145"

KEY FEATURES:
  - Monetary values are YAML strings parsed into decimals. A float here
    would corrupt the figure before it ever reaches an engine.
  - A missing file or missing field falls back to the statutory default.
  - A malformed or negative decimal fails loading with InvalidInputError.

USAGE:
  cfg, err := factory.Load("./payroll.yaml")
  if err != nil {
      log.Fatal(err)
  }
  calculator := payroll.NewCalculator(
      compliance.NewCaliforniaLaborCode(cfg.California),
      compliance.NewFLSA(cfg.Federal),
      cfg.Deductions,
      sink,
  )

SEE ALSO:
  - compliance/california.go, compliance/flsa.go: parameter consumers
  - payroll/deductions.go: the FlatRateSchedule built here
  - cmd/server/main.go: loads this at startup
*/
package factory

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// ConfigYAML is the YAML representation of the settings file.
type ConfigYAML struct {
	Server     ServerYAML     `yaml:"server,omitempty"`
	Compliance ComplianceYAML `yaml:"compliance,omitempty"`
	Deductions DeductionsYAML `yaml:"deductions,omitempty"`
}

// ServerYAML holds process settings. Flags override these.
type ServerYAML struct {
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// ComplianceYAML carries engine thresholds as decimal strings.
type ComplianceYAML struct {
	CaliforniaMinimumWage   string `yaml:"california_minimum_wage,omitempty"`
	FederalMinimumWage      string `yaml:"federal_minimum_wage,omitempty"`
	WeeklySalaryThreshold   string `yaml:"weekly_salary_threshold,omitempty"`
	HighlyCompensatedAnnual string `yaml:"highly_compensated_annual,omitempty"`
}

// DeductionsYAML carries flat withholding rates as decimal strings.
type DeductionsYAML struct {
	FederalTaxRate     string `yaml:"federal_tax_rate,omitempty"`
	StateTaxRate       string `yaml:"state_tax_rate,omitempty"`
	SocialSecurityRate string `yaml:"social_security_rate,omitempty"`
	MedicareRate       string `yaml:"medicare_rate,omitempty"`
}

// =============================================================================
// MATERIALIZED CONFIGURATION
// =============================================================================

// Config carries the materialized engine parameters.
type Config struct {
	Port       int
	Database   string
	California compliance.CaliforniaParams
	Federal    compliance.FederalParams
	Deductions payroll.FlatRateSchedule
}

// Default returns the configuration with every statutory default.
func Default() Config {
	return Config{
		Port:       8080,
		Database:   "./data/payroll.db",
		California: compliance.DefaultCaliforniaParams(),
		Federal:    compliance.DefaultFederalParams(),
		Deductions: payroll.DefaultFlatRates(),
	}
}

// Load reads the YAML file at path. A missing file is not an error:
// operators who never wrote one get the statutory defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML settings, filling defaults for anything missing.
func Parse(raw []byte) (Config, error) {
	var cy ConfigYAML
	if err := yaml.Unmarshal(raw, &cy); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return FromYAML(cy)
}

// FromYAML materializes engine parameters from the decoded file.
func FromYAML(cy ConfigYAML) (Config, error) {
	cfg := Default()

	if cy.Server.Port != 0 {
		cfg.Port = cy.Server.Port
	}
	if cy.Server.Database != "" {
		cfg.Database = cy.Server.Database
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"california_minimum_wage", cy.Compliance.CaliforniaMinimumWage, &cfg.California.MinimumWage},
		{"federal_minimum_wage", cy.Compliance.FederalMinimumWage, &cfg.Federal.MinimumWage},
		{"weekly_salary_threshold", cy.Compliance.WeeklySalaryThreshold, &cfg.Federal.WeeklySalaryThreshold},
		{"highly_compensated_annual", cy.Compliance.HighlyCompensatedAnnual, &cfg.Federal.HighlyCompensatedAnnual},
		{"federal_tax_rate", cy.Deductions.FederalTaxRate, &cfg.Deductions.FederalTaxRate},
		{"state_tax_rate", cy.Deductions.StateTaxRate, &cfg.Deductions.StateTaxRate},
		{"social_security_rate", cy.Deductions.SocialSecurityRate, &cfg.Deductions.SocialSecurityRate},
		{"medicare_rate", cy.Deductions.MedicareRate, &cfg.Deductions.MedicareRate},
	}
	for _, f := range fields {
		if err := parseSetting(f.name, f.raw, f.dst); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// parseSetting overwrites dst with the parsed value. An empty raw
// string keeps the default already in dst.
func parseSetting(field, raw string, dst *decimal.Decimal) error {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return compliance.NewInvalidInput(field, raw, "not a valid decimal")
	}
	if d.IsNegative() {
		return compliance.NewInvalidInput(field, raw, "cannot be negative")
	}
	*dst = d
	return nil
}
