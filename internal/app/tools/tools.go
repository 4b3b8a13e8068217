package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseObserver parses decimal latitude and longitude strings and checks their ranges.
func ParseObserver(latStr, lonStr string) (app.ObserverLocation, error) {
	result := app.ObserverLocation{}

	lat, errLat := parseCoordinate("latitude", latStr)
	if errLat != nil {
		return result, errLat
	}
	lon, errLon := parseCoordinate("longitude", lonStr)
	if errLon != nil {
		return result, errLon
	}

	result.Lat = lat
	result.Lon = lon
	return result, ValidateObserver(result)
}

// ValidateObserver checks an already numeric location.
func ValidateObserver(obs app.ObserverLocation) error {
	if math.IsNaN(obs.Lat) || math.IsInf(obs.Lat, 0) {
		return &app.ValidationError{Field: "latitude", Reason: "must be a finite number"}
	}
	if math.IsNaN(obs.Lon) || math.IsInf(obs.Lon, 0) {
		return &app.ValidationError{Field: "longitude", Reason: "must be a finite number"}
	}
	if err := validate.Struct(obs); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fieldError(ve[0])
		}
		return err
	}
	return nil
}

// ParseTarget trims the body name and refuses an empty one.
func ParseTarget(body string) (app.TargetSpec, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", &app.ValidationError{Field: "target", Reason: "must not be empty"}
	}
	return app.TargetSpec(body), nil
}

func parseCoordinate(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &app.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a decimal number", s)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &app.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return v, nil
}

func fieldError(fe validator.FieldError) error {
	field := "latitude"
	if fe.Field() == "Lon" {
		field = "longitude"
	}
	switch fe.Tag() {
	case "gte":
		return &app.ValidationError{Field: field, Reason: "must be greater than or equal to " + fe.Param()}
	case "lte":
		return &app.ValidationError{Field: field, Reason: "must be less than or equal to " + fe.Param()}
	default:
		return &app.ValidationError{Field: field, Reason: "failed validation (" + fe.Tag() + ")"}
	}
}
