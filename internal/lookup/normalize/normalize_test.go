package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlatRecord(t *testing.T) {
	body := []byte(`{
		"registration_number": "KA01AB1234",
		"owner_name": "RAMESH KUMAR",
		"maker_description": "MARUTI SUZUKI",
		"maker_model": "SWIFT VXI",
		"fuel_type": "PETROL",
		"registration_date": "2019-03-14",
		"vehicle_chasi_number": "MA3EYD32S00123456",
		"vehicle_engine_number": "K12MN1234567"
	}`)

	rec, err := Normalize(body, "KA01AB1234")
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", rec.RegistrationNumber)
	assert.Equal(t, "RAMESH KUMAR", rec.OwnerName)
	assert.Equal(t, "MARUTI SUZUKI", rec.Maker)
	assert.Equal(t, "SWIFT VXI", rec.Model)
	assert.Equal(t, "PETROL", rec.FuelType)
	assert.Equal(t, "2019-03-14", rec.RegistrationDate)
	assert.Equal(t, "MA3EYD32S00123456", rec.ChassisNumber)
	assert.Equal(t, "K12MN1234567", rec.EngineNumber)
}

func TestNormalizeEnvelopes(t *testing.T) {
	inner := `"owner_name":"SURESH","maker_desc":"TATA","fuel":"DIESEL"`

	tests := []struct {
		name string
		body string
	}{
		{"data envelope", `{"status":"success","data":{` + inner + `}}`},
		{"double data envelope", `{"data":{"data":{` + inner + `}}}`},
		{"result envelope", `{"result":{` + inner + `}}`},
		{"rc envelope", `{"rc":{` + inner + `}}`},
		{"array wrapper", `[{` + inner + `}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Normalize([]byte(tc.body), "KA01AB1234")
			require.NoError(t, err)
			assert.Equal(t, "SURESH", rec.OwnerName)
			assert.Equal(t, "TATA", rec.Maker)
			assert.Equal(t, "DIESEL", rec.FuelType)
			assert.Equal(t, "KA01AB1234", rec.RegistrationNumber,
				"missing registration number falls back to the queried one")
		})
	}
}

func TestNormalizeAliasPrecedenceAndCase(t *testing.T) {
	// Keys match case-insensitively and the first alias wins.
	body := []byte(`{
		"RC_Owner_Name": "MEENA DEVI",
		"owner": "WRONG",
		"Rc_Maker_Desc": "HYUNDAI",
		"RC_FUEL_DESC": "CNG"
	}`)

	rec, err := Normalize(body, "DL8CAF5031")
	require.NoError(t, err)
	assert.Equal(t, "MEENA DEVI", rec.OwnerName)
	assert.Equal(t, "HYUNDAI", rec.Maker)
	assert.Equal(t, "CNG", rec.FuelType)
}

func TestNormalizeNumericValues(t *testing.T) {
	body := []byte(`{
		"owner_name": "ARJUN",
		"seat_capacity": 5,
		"cubic_capacity": 1197.5
	}`)

	rec, err := Normalize(body, "KA01AB1234")
	require.NoError(t, err)
	assert.Equal(t, "5", rec.SeatingCapacity)
	assert.Equal(t, "1197.5", rec.CubicCapacity)
}

func TestNormalizeSemanticErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		notFound bool
		code     int
	}{
		{"id_not_found status", `{"status":"id_not_found","message":"no record found"}`, true, 502},
		{"invalid status", `{"status":"invalid","message_code":"invalid_id_number"}`, true, 502},
		{"numeric 404 status", `{"status":404,"message":"not found"}`, true, 404},
		{"numeric 500 status", `{"status":500,"message":"server error"}`, false, 500},
		{"success false", `{"success":false,"message":"upstream down"}`, false, 502},
		{"bare code and message", `{"code":422,"message":"bad input"}`, false, 422},
		{"status inside data envelope", `{"data":{"status":"no_record","message":"empty"}}`, true, 502},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Normalize([]byte(tc.body), "KA01AB1234")
			require.Nil(t, rec)

			var sem *SemanticError
			require.True(t, errors.As(err, &sem), "want SemanticError, got %v", err)
			assert.Equal(t, tc.notFound, sem.NotFound)
			assert.Equal(t, tc.code, sem.Code)
		})
	}
}

func TestNormalizeErrorDocumentWithRecordKeysIsNotSemantic(t *testing.T) {
	// A code+message pair next to real record fields is a record, not an
	// error document.
	body := []byte(`{"code":0,"message":"ok","owner_name":"KAVITA","maker":"HONDA","fuel":"PETROL"}`)

	rec, err := Normalize(body, "KA01AB1234")
	require.NoError(t, err)
	assert.Equal(t, "KAVITA", rec.OwnerName)
}

func TestNormalizeFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway error</html>`},
		{"scalar", `42`},
		{"empty array", `[]`},
		{"object without record keys", `{"foo":"bar","baz":{"qux":1}}`},
		{"record fails validity invariant", `{"maker":"TATA","fuel":"DIESEL"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Normalize([]byte(tc.body), "KA01AB1234")
			require.Nil(t, rec)

			var fe *FormatError
			require.True(t, errors.As(err, &fe), "want FormatError, got %v", err)
			assert.NotEmpty(t, fe.Error())
		})
	}
}

func TestNormalizeFormatErrorListsKeys(t *testing.T) {
	_, err := Normalize([]byte(`{"alpha":1,"data":{"beta":2}}`), "KA01AB1234")

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Keys, "alpha")
	assert.Contains(t, fe.Keys, "data.beta")
}
