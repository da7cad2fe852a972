// conf/validate.go settings validation
package conf

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of validation failures
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateFlywheelSettings(&settings.Flywheel); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateImportSettings(&settings.Import); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateFlywheelSettings validates the container store connection settings
func validateFlywheelSettings(settings *FlywheelSettings) error {
	var errs []string

	if settings.Timeout <= 0 {
		errs = append(errs, "flywheel timeout must be positive")
	}

	// The key carries the host; a bare secret without a host is unusable
	if settings.APIKey != "" && settings.Host == "" && !strings.Contains(settings.APIKey, ":") {
		errs = append(errs, "flywheel apikey must be of form host[:port]:secret when no host is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid flywheel settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

// validateImportSettings validates the import run settings
func validateImportSettings(settings *ImportSettings) error {
	var errs []string

	if settings.FirstRow < 1 {
		errs = append(errs, "firstrow must be 1 or greater")
	}

	if len([]rune(settings.Delimiter)) != 1 {
		errs = append(errs, "delimiter must be a single character")
	}

	if settings.Workers < 1 {
		errs = append(errs, "workers must be 1 or greater")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid import settings: %s", strings.Join(errs, "; "))
	}
	return nil
}
