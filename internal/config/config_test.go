package config

import (
	"strings"
	"testing"
)

const sampleConfig = `
loans:
  - name: apartment
    principal: 1500000
    annualInterestRate: 12.5
    term: 18
    paymentType: annuity
    startDate: 2026-01
  - name: car
    principal: 1000000
    annualInterestRate: 12.0
    term: 24
    paymentType: differentiated
    startDate: 2026-03
    creditHolidays:
      amount: 3
      unit: months
    prepayments:
      - date: 2026-09
        amount: 100000
    commission:
      type: fixed
      amount: 5000
    rounding: rubles
    considerInflation: true
    annualInflationRate: 0.08
budgets:
  - name: affordable
    principal: 1500000
    annualInterestRate: 12.5
    paymentType: annuity
    maxMonthlyPayment: 50000
    priority: minimize-term
logging:
  level: debug
  format: console
output:
  format: csv
server:
  address: ":9090"
  maxUploadBytes: 65536
  cacheAddr: "localhost:6379"
`

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() returned error: %v", err)
	}

	if len(conf.Loans) != 2 {
		t.Fatalf("got %d loans, expected 2", len(conf.Loans))
	}
	if len(conf.Budgets) != 1 {
		t.Fatalf("got %d budgets, expected 1", len(conf.Budgets))
	}

	apartment := conf.Loans[0]
	if apartment.Name != "apartment" {
		t.Errorf("loan name = %q, expected apartment", apartment.Name)
	}
	if apartment.Principal != 1500000 {
		t.Errorf("principal = %v, expected 1500000", apartment.Principal)
	}
	if apartment.AnnualInterestRate != 12.5 {
		t.Errorf("annual rate = %v, expected 12.5", apartment.AnnualInterestRate)
	}
	if apartment.Term != 18 {
		t.Errorf("term = %v, expected 18", apartment.Term)
	}
	if apartment.StartDate != "2026-01" {
		t.Errorf("start date = %q, expected 2026-01", apartment.StartDate)
	}

	car := conf.Loans[1]
	if car.CreditHolidays == nil || car.CreditHolidays.Amount != 3 || car.CreditHolidays.Unit != "months" {
		t.Errorf("credit holidays = %+v, expected 3 months", car.CreditHolidays)
	}
	if len(car.Prepayments) != 1 || car.Prepayments[0].Amount != 100000 {
		t.Errorf("prepayments = %+v, expected one of 100000", car.Prepayments)
	}
	if car.Commission == nil || car.Commission.Type != "fixed" || car.Commission.Amount != 5000 {
		t.Errorf("commission = %+v, expected fixed 5000", car.Commission)
	}
	if car.Rounding != "rubles" {
		t.Errorf("rounding = %q, expected rubles", car.Rounding)
	}
	if !car.ConsiderInflation {
		t.Error("considerInflation not set")
	}
	if car.AnnualInflationRate != 0.08 {
		t.Errorf("annual inflation rate = %v, expected 0.08", car.AnnualInflationRate)
	}

	budget := conf.Budgets[0]
	if budget.MaxMonthlyPayment != 50000 {
		t.Errorf("max monthly payment = %v, expected 50000", budget.MaxMonthlyPayment)
	}
	if budget.Priority != "minimize-term" {
		t.Errorf("priority = %q, expected minimize-term", budget.Priority)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("logging config = %+v, expected debug/console", conf.Logging)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("output format = %q, expected csv", conf.Output.Format)
	}
	if conf.Server.Address != ":9090" || conf.Server.MaxUploadBytes != 65536 {
		t.Errorf("server config = %+v", conf.Server)
	}
	if conf.Server.CacheAddr != "localhost:6379" {
		t.Errorf("cache address = %q, expected localhost:6379", conf.Server.CacheAddr)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yml"); err == nil {
		t.Error("LoadConfiguration() accepted a missing file")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name            string
		config          Configuration
		expectedWarning string
	}{
		{
			name:            "Empty configuration",
			config:          Configuration{},
			expectedWarning: "configuration contains no loans or budgets",
		},
		{
			name: "Loan missing a name",
			config: Configuration{
				Loans: []Loan{{Principal: 100000, AnnualInterestRate: 10, Term: 12}},
			},
			expectedWarning: "a loan is missing a name",
		},
		{
			name: "Rate above one hundred percent",
			config: Configuration{
				Loans: []Loan{{Name: "usury", Principal: 100000, AnnualInterestRate: 120, Term: 12}},
			},
			expectedWarning: "loan usury has an annual rate above 100%",
		},
		{
			name: "Prepayment before disbursement",
			config: Configuration{
				Loans: []Loan{{
					Name: "early", Principal: 100000, AnnualInterestRate: 10, Term: 12,
					StartDate:   "2026-06",
					Prepayments: []PrepaymentConfig{{Date: "2026-01", Amount: 1000}},
				}},
			},
			expectedWarning: "loan early has a prepayment dated before disbursement",
		},
		{
			name: "Non-positive budget ceiling",
			config: Configuration{
				Budgets: []Budget{{Name: "broke", Principal: 100000, AnnualInterestRate: 10}},
			},
			expectedWarning: "budget broke has a non-positive payment ceiling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.config.ValidateConfiguration()
			for _, warning := range warnings {
				if warning == tt.expectedWarning {
					return
				}
			}
			t.Errorf("warnings %v missing %q", warnings, tt.expectedWarning)
		})
	}
}

func TestValidateConfigurationCleanConfig(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() returned error: %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("clean configuration produced warnings: %v", warnings)
	}
}
