package region

// Supersession states that Newer replaces Older wherever both report a value for
// the same period. The older value is dropped, never merged.
type Supersession struct {
	Newer string
	Older string
}

// Supersessions is applied once at ingestion.
var Supersessions = []Supersession{
	{Newer: "EA20", Older: "EA19"},
}

// Aliases returns codes whose values may stand in for the requested ones, that
// is the older codes of every requested newer code.
func Aliases(codes []string) []string {
	var out []string
	for _, code := range codes {
		for _, s := range Supersessions {
			if s.Newer == code {
				out = append(out, s.Older)
			}
		}
	}
	return out
}

// Superseded reports whether a value for code should be dropped given the set
// of codes present for the same period.
func Superseded(code string, present func(code string) bool) bool {
	for _, s := range Supersessions {
		if s.Older == code && present(s.Newer) {
			return true
		}
	}
	return false
}
