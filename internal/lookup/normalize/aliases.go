package normalize

import (
	"fmt"
	"strings"

	"rcgateway/internal/lookup/models"
)

// fieldAliases maps each canonical field to the provider field names it may
// arrive under. First match wins; matching is case-insensitive on the key.
var fieldAliases = map[string][]string{
	"registration_number": {"registration_number", "rc_number", "reg_no", "regn_no", "vehicle_registration_number"},
	"owner_name":          {"owner_name", "rc_owner_name", "owner", "ownername"},
	"vehicle_class":       {"vehicle_class", "vehicle_category_description", "rc_vh_class_desc", "vehicle_class_desc", "vh_class"},
	"maker":               {"maker_description", "rc_maker_desc", "maker", "maker_desc", "manufacturer"},
	"model":               {"maker_model", "rc_maker_model", "model", "model_name"},
	"fuel_type":           {"fuel_type", "rc_fuel_desc", "fuel_descr", "fuel"},
	"registration_date":   {"registration_date", "rc_regn_dt", "reg_date", "regn_date"},
	"chassis_number":      {"vehicle_chasi_number", "chassis_number", "chassis_no", "rc_chasi_no", "chasi_no", "chassis"},
	"engine_number":       {"vehicle_engine_number", "engine_number", "engine_no", "rc_eng_no"},
	"address":             {"permanent_address", "present_address", "address", "rc_permanent_address", "owner_address"},

	"color":                 {"color", "colour", "rc_color", "vehicle_colour"},
	"body_type":             {"body_type", "rc_body_type_desc", "body_type_desc"},
	"seating_capacity":      {"seat_capacity", "seating_capacity", "rc_seat_cap"},
	"manufacturing_date":    {"manufacturing_date", "manufacturing_date_formatted", "rc_manu_month_yr", "m_y_manufacturing"},
	"cubic_capacity":        {"cubic_capacity", "rc_cubic_cap", "engine_capacity"},
	"horse_power":           {"horse_power", "rc_hp", "hp"},
	"wheelbase":             {"wheelbase", "rc_wheelbase"},
	"financier":             {"financer", "financier", "rc_financer", "financed_by"},
	"registering_authority": {"registered_at", "registering_authority", "rc_registered_at", "rto_name", "rto"},
	"validity_date":         {"fit_up_to", "fitness_upto", "rc_fit_upto", "validity_date", "rc_expiry_date"},
	"emission_norms":        {"norms_type", "emission_norms", "rc_norms_desc", "norms_desc"},
	"unladen_weight":        {"unladen_weight", "rc_unld_wt"},
}

// extractRecord maps one payload level into a canonical record. Returns nil
// when the validity invariant is not met: the record must carry at least one
// of owner name, chassis number, engine number, or registration date.
func extractRecord(obj map[string]any, registrationNumber string) *models.Record {
	lowered := make(map[string]any, len(obj))
	for k, v := range obj {
		lowered[strings.ToLower(k)] = v
	}

	pick := func(field string) string {
		for _, alias := range fieldAliases[field] {
			if v, ok := lowered[alias]; ok {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	rec := &models.Record{
		RegistrationNumber: pick("registration_number"),
		OwnerName:          pick("owner_name"),
		VehicleClass:       pick("vehicle_class"),
		Maker:              pick("maker"),
		Model:              pick("model"),
		FuelType:           pick("fuel_type"),
		RegistrationDate:   pick("registration_date"),
		ChassisNumber:      pick("chassis_number"),
		EngineNumber:       pick("engine_number"),
		Address:            pick("address"),

		Color:                pick("color"),
		BodyType:             pick("body_type"),
		SeatingCapacity:      pick("seating_capacity"),
		ManufacturingDate:    pick("manufacturing_date"),
		CubicCapacity:        pick("cubic_capacity"),
		HorsePower:           pick("horse_power"),
		Wheelbase:            pick("wheelbase"),
		Financier:            pick("financier"),
		RegisteringAuthority: pick("registering_authority"),
		ValidityDate:         pick("validity_date"),
		EmissionNorms:        pick("emission_norms"),
		UnladenWeight:        pick("unladen_weight"),
	}

	if rec.RegistrationNumber == "" {
		rec.RegistrationNumber = registrationNumber
	}

	if rec.OwnerName == "" && rec.ChassisNumber == "" && rec.EngineNumber == "" && rec.RegistrationDate == "" {
		return nil
	}
	return rec
}

// stringify renders provider values as strings without reformatting.
// Dates stay exactly as the provider sent them.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
