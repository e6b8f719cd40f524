package extractor

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/aucsheet/internal/models"
)

// SchemaViolation reports the fields of a model response that failed
// validation. It is terminal for the attempt: the job fails rather
// than persisting a malformed sheet.
type SchemaViolation struct {
	Fields []string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("extracted data failed validation: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New()

// ValidateData applies the documented defaults and then checks the
// required fields and enum memberships declared on AuctionData. The
// defaults run first so a defaulted value is still enum-checked.
func ValidateData(data *models.AuctionData) error {
	data.ApplyDefaults()

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation failed: %w", err)
	}

	violation := &SchemaViolation{}
	for _, fieldErr := range validationErrs {
		violation.Fields = append(violation.Fields,
			fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return violation
}
