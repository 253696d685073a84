// Package dataset loads the California housing CSV into typed records and
// splits them into reproducible train and test subsets.
package dataset

import "math"

// Column names as they appear in the CSV header.
const (
	ColLongitude        = "longitude"
	ColLatitude         = "latitude"
	ColHousingMedianAge = "housing_median_age"
	ColTotalRooms       = "total_rooms"
	ColTotalBedrooms    = "total_bedrooms"
	ColPopulation       = "population"
	ColHouseholds       = "households"
	ColMedianIncome     = "median_income"
	ColMedianHouseValue = "median_house_value"
	ColOceanProximity   = "ocean_proximity"
)

// NumericFieldCount is the number of numeric feature fields of a Record.
const NumericFieldCount = 8

// NumericColumns lists the numeric feature columns in encoding order.
var NumericColumns = [NumericFieldCount]string{
	ColLongitude,
	ColLatitude,
	ColHousingMedianAge,
	ColTotalRooms,
	ColTotalBedrooms,
	ColPopulation,
	ColHouseholds,
	ColMedianIncome,
}

// Schema lists every column a housing file must carry.
var Schema = []string{
	ColLongitude,
	ColLatitude,
	ColHousingMedianAge,
	ColTotalRooms,
	ColTotalBedrooms,
	ColPopulation,
	ColHouseholds,
	ColMedianIncome,
	ColMedianHouseValue,
	ColOceanProximity,
}

// Record is one housing block. Missing numeric cells hold NaN.
type Record struct {
	Longitude        float64
	Latitude         float64
	HousingMedianAge float64
	TotalRooms       float64
	TotalBedrooms    float64
	Population       float64
	Households       float64
	MedianIncome     float64
	OceanProximity   string
	MedianHouseValue float64
}

// Numeric returns the numeric feature fields in NumericColumns order.
func (r Record) Numeric() [NumericFieldCount]float64 {
	return [NumericFieldCount]float64{
		r.Longitude,
		r.Latitude,
		r.HousingMedianAge,
		r.TotalRooms,
		r.TotalBedrooms,
		r.Population,
		r.Households,
		r.MedianIncome,
	}
}

// MissingCount returns how many numeric feature fields are NaN.
func (r Record) MissingCount() int {
	n := 0
	for _, v := range r.Numeric() {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// setNumeric assigns the i-th numeric feature field.
func (r *Record) setNumeric(i int, v float64) {
	switch i {
	case 0:
		r.Longitude = v
	case 1:
		r.Latitude = v
	case 2:
		r.HousingMedianAge = v
	case 3:
		r.TotalRooms = v
	case 4:
		r.TotalBedrooms = v
	case 5:
		r.Population = v
	case 6:
		r.Households = v
	case 7:
		r.MedianIncome = v
	}
}

// Dataset is an ordered collection of records.
type Dataset struct {
	records []Record
}

// New creates a Dataset holding a copy of records.
func New(records []Record) *Dataset {
	return &Dataset{records: append([]Record(nil), records...)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records in dataset order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return append([]Record(nil), d.records...)
}

// Targets returns the median house values in dataset order.
func (d *Dataset) Targets() []float64 {
	y := make([]float64, d.Len())
	for i := range y {
		y[i] = d.records[i].MedianHouseValue
	}
	return y
}

// subset builds a Dataset from the records at the given indices.
func (d *Dataset) subset(idx []int) *Dataset {
	records := make([]Record, len(idx))
	for i, j := range idx {
		records[i] = d.records[j]
	}
	return &Dataset{records: records}
}
