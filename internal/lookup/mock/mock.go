// Package mock provides the static fallback lookup table used when no
// external provider is configured, so local development and demos work
// without credentials.
package mock

import "rcgateway/internal/lookup/models"

// Table is a static registration-number lookup table.
type Table struct {
	records map[string]models.Record
}

// NewTable returns the built-in sample table.
func NewTable() *Table {
	return &Table{records: sampleRecords}
}

// Find returns the sample record for a registration number, if present.
func (t *Table) Find(registrationNumber string) (*models.Record, bool) {
	rec, ok := t.records[registrationNumber]
	if !ok {
		return nil, false
	}
	return &rec, true
}

var sampleRecords = map[string]models.Record{
	"MH12AB1234": {
		RegistrationNumber:   "MH12AB1234",
		OwnerName:            "RAJESH KUMAR",
		VehicleClass:         "Motor Car(LMV)",
		Maker:                "MARUTI SUZUKI INDIA LTD",
		Model:                "SWIFT VXI",
		FuelType:             "PETROL",
		RegistrationDate:     "2019-03-14",
		ChassisNumber:        "MA3EYD32S00112233",
		EngineNumber:         "K12MN1122334",
		Address:              "FLAT 402, SHIVAJI NAGAR, PUNE, MAHARASHTRA",
		Color:                "PEARL WHITE",
		BodyType:             "SALOON",
		SeatingCapacity:      "5",
		ManufacturingDate:    "2/2019",
		CubicCapacity:        "1197",
		RegisteringAuthority: "PUNE RTO",
		ValidityDate:         "2034-03-13",
		EmissionNorms:        "BHARAT STAGE IV",
	},
	"DL8CAF5031": {
		RegistrationNumber:   "DL8CAF5031",
		OwnerName:            "SUNITA DEVI",
		VehicleClass:         "M-Cycle/Scooter(2WN)",
		Maker:                "HERO MOTOCORP LTD",
		Model:                "SPLENDOR PLUS",
		FuelType:             "PETROL",
		RegistrationDate:     "2021-08-02",
		ChassisNumber:        "MBLHA10ALCHG12345",
		EngineNumber:         "HA10EJCHG54321",
		Address:              "H NO 221, KAROL BAGH, NEW DELHI",
		Color:                "BLACK",
		SeatingCapacity:      "2",
		ManufacturingDate:    "6/2021",
		CubicCapacity:        "97",
		RegisteringAuthority: "DELHI WEST RTO",
		ValidityDate:         "2036-08-01",
		EmissionNorms:        "BHARAT STAGE VI",
	},
	"KA01MJ2022": {
		RegistrationNumber:   "KA01MJ2022",
		OwnerName:            "ARUN NAIR",
		VehicleClass:         "Motor Car(LMV)",
		Maker:                "TATA MOTORS LTD",
		Model:                "NEXON XZ PLUS",
		FuelType:             "DIESEL",
		RegistrationDate:     "2022-01-19",
		ChassisNumber:        "MAT627154MKP98765",
		EngineNumber:         "15B1JT9876543",
		Address:              "12TH CROSS, INDIRANAGAR, BENGALURU, KARNATAKA",
		Color:                "FLAME RED",
		BodyType:             "HATCHBACK",
		SeatingCapacity:      "5",
		ManufacturingDate:    "12/2021",
		CubicCapacity:        "1497",
		RegisteringAuthority: "BENGALURU CENTRAL RTO",
		ValidityDate:         "2037-01-18",
		EmissionNorms:        "BHARAT STAGE VI",
	},
}
