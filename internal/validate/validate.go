// Package validate validates a Deal before it reaches the orchestrator:
// struct-tag rules via go-playground/validator/v10 plus the hand-written
// cross-field invariants a tag can't express (partner shares summing to
// 1.0, non-negative facility amounts). Dependency cycles among cash-flow
// models are reported by the orchestrator, not here.
// Grounded on the teacher's api/http/middleware validator, which combines
// validator.ValidationErrors formatting with its own hand-rolled checks
// the same way.
package validate

import (
	"fmt"
	"strings"

	"performa/internal/apperrors"
	"performa/model"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

const shareTolerance = 1e-9

// Deal runs struct-tag validation plus the cross-field invariants
// spec.md's Settings/Deal shapes require, returning a ConfigurationError
// describing the first failure found.
func Deal(deal model.Deal) error {
	if err := v.Struct(deal); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return apperrors.New(apperrors.KindConfiguration, formatValidationErrors(verrs))
		}
		return apperrors.Wrap(err, apperrors.KindConfiguration, "deal validation failed")
	}

	if err := partnerSharesSumToOne(deal.Partnership); err != nil {
		return err
	}
	if err := nonNegativeFacilityAmounts(deal.Financing); err != nil {
		return err
	}
	return nil
}

// Settings runs struct-tag validation over an analysis Settings value.
func Settings(settings model.Settings) error {
	if err := v.Struct(settings); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return apperrors.New(apperrors.KindConfiguration, formatValidationErrors(verrs))
		}
		return apperrors.Wrap(err, apperrors.KindConfiguration, "settings validation failed")
	}
	if settings.InflationMonth < 1 || settings.InflationMonth > 12 {
		return apperrors.New(apperrors.KindConfiguration, "inflation_month must be between 1 and 12")
	}
	return nil
}

func partnerSharesSumToOne(p model.Partnership) error {
	if len(p.Partners) == 0 {
		return nil
	}
	var total float64
	for _, partner := range p.Partners {
		total += partner.ShareOfEquity
	}
	if total < 1-shareTolerance || total > 1+shareTolerance {
		return apperrors.Newf(apperrors.KindConfiguration,
			"partner shares of equity must sum to 1.0, got %.9f", total)
	}
	return nil
}

func nonNegativeFacilityAmounts(facilities []model.Facility) error {
	for _, f := range facilities {
		if f.Construction != nil && f.Construction.LTCThreshold < 0 {
			return apperrors.Newf(apperrors.KindConfiguration,
				"facility %s has negative LTC threshold", f.Name).WithModel(f.ID.String())
		}
		if f.Permanent != nil && f.Permanent.ExplicitAmount < 0 {
			return apperrors.Newf(apperrors.KindConfiguration,
				"facility %s has negative explicit amount", f.Name).WithModel(f.ID.String())
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	var messages []string
	for _, err := range errs {
		switch err.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", err.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", err.Field()))
		}
	}
	return strings.Join(messages, ", ")
}
