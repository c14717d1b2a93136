package services

import (
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	FeetToMeter = 0.3048
	// LuxUtilizationFactor is the rough combined loss/utilisation factor
	// applied to fixture output.
	LuxUtilizationFactor = 0.7
)

// ErrInvalidInput marks a calculator input outside its allowed range.
var ErrInvalidInput = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// finite rejects NaN and ±Inf, which Min lets through.
var finite = validation.By(func(value interface{}) error {
	if v, ok := value.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return errors.New("must be a finite number")
	}
	return nil
})

// inRange fails when a calculation overflowed float64.
func inRange(v float64) (float64, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, invalid(errors.New("result out of range"))
	}
	return v, nil
}

// FeetToMeters converts a non-negative length in feet.
func FeetToMeters(feet float64) (float64, error) {
	if err := validation.Validate(feet, finite, validation.Min(0.0)); err != nil {
		return 0, invalid(fmt.Errorf("feet: %v", err))
	}
	return inRange(feet * FeetToMeter)
}

// MetersToFeet converts a non-negative length in metres.
func MetersToFeet(meters float64) (float64, error) {
	if err := validation.Validate(meters, finite, validation.Min(0.0)); err != nil {
		return 0, invalid(fmt.Errorf("meters: %v", err))
	}
	return inRange(meters / FeetToMeter)
}

// CalcLumens returns watts × efficacy (lm/W). Efficacy must be positive.
func CalcLumens(watts, efficacy float64) (float64, error) {
	if err := validation.Validate(watts, finite, validation.Min(0.0)); err != nil {
		return 0, invalid(fmt.Errorf("watts: %v", err))
	}
	if err := validation.Validate(efficacy, finite, validation.Required, validation.Min(0.0).Exclusive()); err != nil {
		return 0, invalid(fmt.Errorf("efficacy: %v", err))
	}
	return inRange(watts * efficacy)
}

// CalcLux approximates illuminance below a fixture:
// lux = lumens × 0.7 / mountingHeight².
func CalcLux(lumens, mountingHeight float64) (float64, error) {
	if err := validation.Validate(lumens, finite, validation.Min(0.0)); err != nil {
		return 0, invalid(fmt.Errorf("lumens: %v", err))
	}
	if err := validation.Validate(mountingHeight, finite, validation.Required, validation.Min(0.0).Exclusive()); err != nil {
		return 0, invalid(fmt.Errorf("height: %v", err))
	}
	return inRange(lumens * LuxUtilizationFactor / (mountingHeight * mountingHeight))
}

// LEDDriverSpec is the constant-current driver needed for a series LED string.
type LEDDriverSpec struct {
	TotalVoltage   float64
	TotalPower     float64
	CurrentMA      float64
	Recommendation string
}

type ledDriverInput struct {
	ForwardVoltage float64
	CurrentMA      float64
	Count          int
}

func (in ledDriverInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ForwardVoltage, finite, validation.Min(0.0)),
		validation.Field(&in.CurrentMA, finite, validation.Min(0.0)),
		validation.Field(&in.Count, validation.Required, validation.Min(1)),
	)
}

// CalcLEDDriver sizes a driver for count LEDs in series, each dropping
// forwardVoltage at currentMA.
func CalcLEDDriver(forwardVoltage, currentMA float64, count int) (LEDDriverSpec, error) {
	in := ledDriverInput{ForwardVoltage: forwardVoltage, CurrentMA: currentMA, Count: count}
	if err := in.Validate(); err != nil {
		return LEDDriverSpec{}, invalid(err)
	}

	voltage := forwardVoltage * float64(count)
	power := voltage * (currentMA / 1000)
	if _, err := inRange(power); err != nil {
		return LEDDriverSpec{}, err
	}
	return LEDDriverSpec{
		TotalVoltage: voltage,
		TotalPower:   power,
		CurrentMA:    currentMA,
		Recommendation: fmt.Sprintf(
			"Suitable for a constant current driver (%smA) with a minimum operating voltage of %sV and power rating of at least %sW.",
			formatFixed(currentMA, 0), formatFixed(voltage, 2), formatFixed(power, 2),
		),
	}, nil
}
