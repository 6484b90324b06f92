// Package region holds the reference data for regions and consumption categories
// and the rules for labelling them.
package region

import (
	"maps"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// AllItems is the category code of the headline index covering the full basket.
const AllItems = "CP00"

// Categories lists the consumption categories ingested from the inflation source.
var Categories = []string{AllItems, "FOOD", "NRG", "IGD", "SERV"}

// EUCountries lists member state codes as published by Eurostat. Greece appears
// both under its Eurostat code and its ISO code.
var EUCountries = []string{
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "EL", "GR", "HU",
	"IE", "IT", "LT", "LU", "LV", "MT", "NL", "PL", "PT", "RO", "SE", "SI", "SK", "ES",
}

var regionNames = map[string]string{
	"EA":   "Eurozone",
	"EA19": "Eurozone",
	"EA20": "Eurozone",
	"AT":   "Österreich",
	"BE":   "Belgien",
	"BG":   "Bulgarien",
	"HR":   "Kroatien",
	"CY":   "Zypern",
	"CZ":   "Tschechien",
	"DK":   "Dänemark",
	"EE":   "Estland",
	"FI":   "Finnland",
	"FR":   "Frankreich",
	"DE":   "Deutschland",
	"EL":   "Griechenland",
	"GR":   "Griechenland",
	"HU":   "Ungarn",
	"IE":   "Irland",
	"IT":   "Italien",
	"LT":   "Litauen",
	"LU":   "Luxemburg",
	"LV":   "Lettland",
	"MT":   "Malta",
	"NL":   "Niederlande",
	"PL":   "Polen",
	"PT":   "Portugal",
	"RO":   "Rumänien",
	"SE":   "Schweden",
	"SI":   "Slowenien",
	"SK":   "Slowakei",
	"ES":   "Spanien",
}

var categoryNames = map[string]string{
	AllItems: "Gesamtinflation",
	"FOOD":   "Nahrungsmittel, Alkohol & Tabak",
	"NRG":    "Energie",
	"IGD":    "Industriegüter (ohne Energie)",
	"SERV":   "Dienstleistungen",
}

var monthNames = [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}

// MonthName returns the short German month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// CategoryName returns the display name of a category, or the code itself when
// unknown.
func CategoryName(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}
	return code
}

// IsAggregate reports whether code denotes a supranational average.
func IsAggregate(code string) bool {
	switch code {
	case "EA", "EA19", "EA20", "EU27_2020", "EU28":
		return true
	}
	return false
}

// Labeler resolves region display names. Lookup order is the explicit overrides,
// the built-in table, the CLDR display name in the configured language, and
// finally the code itself.
type Labeler struct {
	overrides map[string]string
	namer     display.Namer
}

// NewLabeler returns a Labeler that prefers the given overrides.
func NewLabeler(overrides map[string]string) *Labeler {
	return &Labeler{
		overrides: maps.Clone(overrides),
		namer:     display.Regions(language.German),
	}
}

// DefaultLabeler has no overrides.
var DefaultLabeler = NewLabeler(nil)

// Name returns the display name for a region code.
func (l *Labeler) Name(code string) string {
	if name, ok := l.overrides[code]; ok {
		return name
	}
	if name, ok := regionNames[code]; ok {
		return name
	}
	if r, err := language.ParseRegion(code); err == nil && l.namer != nil && (r.IsCountry() || r.IsGroup()) {
		if name := l.namer.Name(r); name != "" {
			return name
		}
	}
	return code
}

// Name resolves code with the DefaultLabeler.
func Name(code string) string {
	return DefaultLabeler.Name(code)
}
