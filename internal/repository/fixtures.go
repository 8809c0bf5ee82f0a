package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"StockAnalog/internal/domain/models"
)

// ErrInvalidObservation marks a fixture row rejected at the store boundary.
var ErrInvalidObservation = errors.New("invalid observation")

var fixtureValidator = validator.New()

// LoadObservations decodes a JSON array of observations and validates every row.
// The result is ordered by instrument and capture time.
func LoadObservations(r io.Reader) ([]models.PriceObservation, error) {
	var obs []models.PriceObservation
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&obs); err != nil {
		return nil, fmt.Errorf("decode observations: %w", err)
	}
	for i := range obs {
		if err := ValidateObservation(obs[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		obs[i].CapturedAt = obs[i].CapturedAt.UTC()
	}
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].InstrumentID != obs[j].InstrumentID {
			return obs[i].InstrumentID < obs[j].InstrumentID
		}
		return obs[i].CapturedAt.Before(obs[j].CapturedAt)
	})
	return obs, nil
}

// ValidateObservation checks a single row before it is written.
func ValidateObservation(o models.PriceObservation) error {
	if err := fixtureValidator.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObservation, err)
	}
	if o.Price.IsNegative() {
		return fmt.Errorf("%w: negative price %s", ErrInvalidObservation, o.Price)
	}
	return nil
}
