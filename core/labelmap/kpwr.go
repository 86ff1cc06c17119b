package labelmap

// kpwrTable maps the KPWr fine-grained named entity channels onto the
// OntoNotes-style coarse types used for training.
var kpwrTable = Table{
	"admin1_nam":            "GPE",
	"admin2_nam":            "GPE",
	"admin3_nam":            "GPE",
	"animal_nam":            "MISC",
	"astronomical_nam":      "LOC",
	"award_nam":             "EVENT",
	"band_nam":              "ORG",
	"bay_nam":               "LOC",
	"brand_nam":             "ORG",
	"cape_nam":              "LOC",
	"city_nam":              "GPE",
	"company_nam":           "ORG",
	"continent_nam":         "LOC",
	"conurbation_nam":       "LOC",
	"country_nam":           "GPE",
	"country_region_nam":    "GPE",
	"currency_nam":          "MONEY",
	"district_nam":          "LOC",
	"document_nam":          "WORK_OF_ART",
	"event_nam":             "EVENT",
	"facility_nam":          "ORG",
	"historical_region_nam": "LOC",
	"institution_nam":       "ORG",
	"island_nam":            "LOC",
	"lake_nam":              "LOC",
	"license_nam":           "LAW",
	"media_nam":             "ORG",
	"mountain_nam":          "LOC",
	"nam":                   "PERSON",
	"nation_nam":            "GPE",
	"ocean_nam":             "LOC",
	"organization_nam":      "ORG",
	"organization_sub_nam":  "ORG",
	"park_nam":              "LOC",
	"peninsula_nam":         "LOC",
	"periodic_nam":          "PRODUCT",
	"person_add_nam":        "PERSON",
	"person_adj_nam":        "PERSON",
	"person_first_nam":      "PERSON",
	"person_group_nam":      "NORP",
	"person_last_nam":       "PERSON",
	"person_nam":            "PERSON",
	"political_party_nam":   "NORP",
	"region_nam":            "LOC",
	"river_nam":             "LOC",
	"road_nam":              "FAC",
	"sea_nam":               "LOC",
	"software_nam":          "PRODUCT",
	"square_nam":            "LOC",
	"subdivision_nam":       "ORG",
	"system_nam":            "PRODUCT",
	"tech_nam":              "PRODUCT",
	"title_nam":             "WORK_OF_ART",
	"toponym_nam":           "LOC",
	"treaty_nam":            "LAW",
	"vehicle_nam":           "PRODUCT",
	"web_nam":               "PRODUCT",
	"www_nam":               "PRODUCT",
}

// KPWr returns a copy of the default KPWr channel table.
func KPWr() Table {
	return kpwrTable.Clone()
}
