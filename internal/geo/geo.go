// Package geo holds the read-only region/district/subdistrict reference
// data consumed during hostel create and edit. The core does not own or
// mutate this data; it only validates the cascade against it.
package geo

import (
	"fmt"
	"sort"
)

var regions = map[string]map[string][]string{
	"Dhaka": {
		"Dhaka":   {"Dhanmondi", "Mirpur", "Mohammadpur", "Uttara"},
		"Gazipur": {"Gazipur Sadar", "Kaliakair", "Sreepur"},
		"Tangail": {"Tangail Sadar", "Mirzapur"},
	},
	"Chattogram": {
		"Chattogram":  {"Kotwali", "Pahartali", "Panchlaish"},
		"Cox's Bazar": {"Cox's Bazar Sadar", "Teknaf"},
	},
	"Khulna": {
		"Khulna":  {"Khulna Sadar", "Sonadanga"},
		"Jashore": {"Jashore Sadar", "Jhikargachha"},
	},
	"Sylhet": {
		"Sylhet":      {"Sylhet Sadar", "Beanibazar"},
		"Moulvibazar": {"Moulvibazar Sadar", "Sreemangal"},
	},
	"Rajshahi": {
		"Rajshahi": {"Boalia", "Motihar", "Rajpara"},
		"Bogura":   {"Bogura Sadar", "Sherpur"},
	},
}

// Regions lists the known regions, sorted.
func Regions() []string {
	out := make([]string, 0, len(regions))
	for r := range regions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Districts lists the districts of a region, sorted. Unknown regions yield
// an empty list.
func Districts(region string) []string {
	districts, ok := regions[region]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(districts))
	for d := range districts {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Subdistricts lists the subdistricts of a district, sorted.
func Subdistricts(region, district string) []string {
	districts, ok := regions[region]
	if !ok {
		return nil
	}
	subs := districts[district]
	out := make([]string, len(subs))
	copy(out, subs)
	sort.Strings(out)
	return out
}

// Validate checks a full region/district/subdistrict cascade.
func Validate(region, district, subdistrict string) error {
	districts, ok := regions[region]
	if !ok {
		return fmt.Errorf("unknown region %q", region)
	}
	subs, ok := districts[district]
	if !ok {
		return fmt.Errorf("district %q is not in region %q", district, region)
	}
	for _, s := range subs {
		if s == subdistrict {
			return nil
		}
	}
	return fmt.Errorf("subdistrict %q is not in district %q", subdistrict, district)
}
