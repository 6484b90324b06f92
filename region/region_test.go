package region

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLabelerName(t *testing.T) {
	l := NewLabeler(map[string]string{"FR": "France (override)"})

	testData := map[string]struct {
		code     string
		expected string
	}{
		"override":        {code: "FR", expected: "France (override)"},
		"static table":    {code: "AT", expected: "Österreich"},
		"aggregate":       {code: "EA20", expected: "Eurozone"},
		"display lookup":  {code: "CH", expected: "Schweiz"},
		"unknown code":    {code: "ZZZ", expected: "ZZZ"},
		"unknown region":  {code: "ZZ", expected: "ZZ"},
		"user assigned":   {code: "QM", expected: "QM"},
		"eurostat greece": {code: "EL", expected: "Griechenland"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, l.Name(td.code))
		})
	}
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "Gesamtinflation", CategoryName(AllItems))
	assert.Equal(t, "Energie", CategoryName("NRG"))
	assert.Equal(t, "XYZ", CategoryName("XYZ"))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Mär", MonthName(time.March))
	assert.Equal(t, "Dez", MonthName(time.December))
	assert.Equal(t, "", MonthName(0))
}

func TestSupersession(t *testing.T) {
	assert.Equal(t, []string{"EA19"}, Aliases([]string{"AT", "EA20"}))
	assert.Empty(t, Aliases([]string{"AT", "DE"}))

	present := func(codes ...string) func(string) bool {
		return func(c string) bool {
			for _, p := range codes {
				if p == c {
					return true
				}
			}
			return false
		}
	}
	assert.True(t, Superseded("EA19", present("EA19", "EA20")))
	assert.False(t, Superseded("EA19", present("EA19", "AT")))
	assert.False(t, Superseded("EA20", present("EA19", "EA20")))
	assert.True(t, IsAggregate("EA20"))
	assert.False(t, IsAggregate("AT"))
}
