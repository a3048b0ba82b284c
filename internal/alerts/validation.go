// internal/alerts/validation.go
package alerts

import (
	"fmt"
	"strings"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

const alertDefinitionSchema = `{
	"type": "object",
	"required": ["title", "message", "priority", "targetAudience"],
	"properties": {
		"type": {
			"type": "string",
			"enum": ["urgent_surgery", "blood_shortage", "emergency_request", "general"]
		},
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"message": {"type": "string", "minLength": 1, "maxLength": 2000},
		"bloodGroup": {
			"type": "string",
			"enum": ["A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"]
		},
		"location": {"type": "string", "maxLength": 200},
		"priority": {"type": "string", "enum": ["high", "medium", "low"]},
		"targetAudience": {"type": "string", "enum": ["donors", "receivers", "both"]},
		"smsEnabled": {"type": "boolean"},
		"emailEnabled": {"type": "boolean"},
		"ttlMinutes": {"type": "integer", "minimum": 1}
	}
}`

var alertSchema = gojsonschema.NewStringLoader(alertDefinitionSchema)

// ValidateDefinition checks an alert definition against the schema before
// creation.
func ValidateDefinition(def *models.AlertDefinition) error {
	result, err := gojsonschema.Validate(alertSchema, gojsonschema.NewGoLoader(def))
	if err != nil {
		return stderrors.NewValidationFailedError(err.Error())
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return stderrors.NewValidationFailedError(strings.Join(details, "; "))
	}

	if !def.SMSEnabled && !def.EmailEnabled {
		return stderrors.NewValidationFailedError("at least one of smsEnabled and emailEnabled must be set")
	}

	return nil
}
