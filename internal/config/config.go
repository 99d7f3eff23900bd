// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loan-planner.
type Configuration struct {
	Loans   []Loan
	Budgets []Budget
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds options for the HTTP API mode.
type ServerConfig struct {
	Address        string `yaml:"address,omitempty"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes,omitempty"`
	CacheAddr      string `yaml:"cacheAddr,omitempty"` // optional Redis address
}

// Loan describes one loan to compute a schedule for. Rates are annual
// percentages as a human would write them; conversion to the engine's
// periodic rate happens in conversion.go.
type Loan struct {
	Name                string             `yaml:"name"`
	Principal           float64            `yaml:"principal"`
	AnnualInterestRate  float64            `yaml:"annualInterestRate"` // percent, e.g. 12.5
	Term                int                `yaml:"term"`               // months
	PaymentType         string             `yaml:"paymentType"`        // annuity, differentiated
	StartDate           string             `yaml:"startDate"`          // YYYY-MM
	CreditHolidays      *CreditHolidays    `yaml:"creditHolidays,omitempty"`
	Prepayments         []PrepaymentConfig `yaml:"prepayments,omitempty"`
	Commission          *CommissionConfig  `yaml:"commission,omitempty"`
	Rounding            string             `yaml:"rounding,omitempty"` // none, kopecks, rubles, tens, hundreds
	ConsiderInflation   bool               `yaml:"considerInflation,omitempty"`
	AnnualInflationRate float64            `yaml:"annualInflationRate,omitempty"`
}

// CreditHolidays is an interest-only payment holiday at the start of the term.
type CreditHolidays struct {
	Amount int    `yaml:"amount"`
	Unit   string `yaml:"unit"` // months, years
}

// PrepaymentConfig is a one-time or recurring extra principal payment.
// Frequency and Count expand a recurring payment; both default to a single
// occurrence.
type PrepaymentConfig struct {
	Date      string  `yaml:"date"` // YYYY-MM
	Amount    float64 `yaml:"amount"`
	Frequency int     `yaml:"frequency,omitempty"` // months between occurrences
	Count     int     `yaml:"count,omitempty"`
}

// CommissionConfig is a fee added to the total cost of the loan.
type CommissionConfig struct {
	Type   string  `yaml:"type"` // percent, fixed, monthly
	Amount float64 `yaml:"amount"`
}

// Budget describes one budget optimization request.
type Budget struct {
	Name               string  `yaml:"name"`
	Principal          float64 `yaml:"principal"`
	AnnualInterestRate float64 `yaml:"annualInterestRate"` // percent
	PaymentType        string  `yaml:"paymentType"`
	MaxMonthlyPayment  float64 `yaml:"maxMonthlyPayment"`
	Priority           string  `yaml:"priority"` // minimize-term, minimize-payment, minimize-overpayment
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from the
// given reader; used by the HTTP API.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface later, when entries are converted to
// engine requests.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Loans) == 0 && len(c.Budgets) == 0 {
		warnings = append(warnings, "configuration contains no loans or budgets")
	}

	for _, loan := range c.Loans {
		if loan.Name == "" {
			warnings = append(warnings, "a loan is missing a name")
		}
		if loan.AnnualInterestRate > 100 {
			warnings = append(warnings, fmt.Sprintf("loan %s has an annual rate above 100%%", loan.Name))
		}
		if loan.StartDate != "" {
			start, err := time.Parse(DateTimeLayout, loan.StartDate)
			if err != nil {
				continue // reported as an error during conversion
			}
			for _, prepayment := range loan.Prepayments {
				if prepayment.Date == "" {
					continue
				}
				date, err := time.Parse(DateTimeLayout, prepayment.Date)
				if err == nil && date.Before(start) {
					warnings = append(warnings, fmt.Sprintf("loan %s has a prepayment dated before disbursement", loan.Name))
				}
			}
		}
	}

	for _, budget := range c.Budgets {
		if budget.Name == "" {
			warnings = append(warnings, "a budget is missing a name")
		}
		if budget.MaxMonthlyPayment <= 0 {
			warnings = append(warnings, fmt.Sprintf("budget %s has a non-positive payment ceiling", budget.Name))
		}
	}

	return warnings
}
