package analytics

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrDegenerateNorm is returned when a norm pair has a zero standard deviation
var ErrDegenerateNorm = errors.New("norm standard deviation is zero")

// NormPair is a population mean and standard deviation
type NormPair struct {
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
}

// NormBand holds the age-banded population norms for continuous performance tests.
// Reaction time norms are in milliseconds.
type NormBand struct {
	AgeMin     int      `yaml:"age_min" json:"ageMin"`
	AgeMax     int      `yaml:"age_max" json:"ageMax"`
	Omission   NormPair `yaml:"omission" json:"omission"`
	Commission NormPair `yaml:"commission" json:"commission"`
	MeanRT     NormPair `yaml:"mean_rt" json:"meanRT"`
	RTSD       NormPair `yaml:"rt_sd" json:"rtSD"`
}

// Contains reports whether age falls inside the band, inclusive on both ends
func (b NormBand) Contains(age int) bool {
	return age >= b.AgeMin && age <= b.AgeMax
}

// NormTable is a static list of bands
type NormTable []NormBand

// DefaultNorms is the built-in table
var DefaultNorms = NormTable{
	{
		AgeMin:     3,
		AgeMax:     5,
		Omission:   NormPair{Mean: 0.12, Std: 0.05},
		Commission: NormPair{Mean: 0.07, Std: 0.03},
		MeanRT:     NormPair{Mean: 650, Std: 100},
		RTSD:       NormPair{Mean: 180, Std: 40},
	},
	{
		AgeMin:     6,
		AgeMax:     9,
		Omission:   NormPair{Mean: 0.08, Std: 0.04},
		Commission: NormPair{Mean: 0.05, Std: 0.02},
		MeanRT:     NormPair{Mean: 550, Std: 80},
		RTSD:       NormPair{Mean: 150, Std: 30},
	},
}

// Lookup returns the first band containing age. There is no interpolation;
// ages outside every band return nil.
func (t NormTable) Lookup(age int) *NormBand {
	for i := range t {
		if t[i].Contains(age) {
			band := t[i]
			return &band
		}
	}
	return nil
}

// LookupNorms looks age up in the built-in table
func LookupNorms(age int) *NormBand {
	return DefaultNorms.Lookup(age)
}

type normFile struct {
	Bands []NormBand `yaml:"bands"`
}

// LoadNormTable reads a replacement norm table from a YAML file of the form
//
//	bands:
//	  - age_min: 3
//	    age_max: 5
//	    omission: {mean: 0.12, std: 0.05}
//	    ...
func LoadNormTable(path string) (NormTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read norm table: %w", err)
	}

	var file normFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse norm table %s: %w", path, err)
	}
	if len(file.Bands) == 0 {
		return nil, fmt.Errorf("norm table %s has no bands", path)
	}

	for i, b := range file.Bands {
		if b.AgeMin > b.AgeMax {
			return nil, fmt.Errorf("norm band %d: age_min %d is above age_max %d", i, b.AgeMin, b.AgeMax)
		}
	}

	return NormTable(file.Bands), nil
}

// ZScore standardizes x against a population mean and standard deviation.
// A zero std has no meaningful z-score and returns ErrDegenerateNorm.
func ZScore(x, mean, std float64) (float64, error) {
	if std == 0 {
		return 0, ErrDegenerateNorm
	}
	return (x - mean) / std, nil
}
