package inflation

import (
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/source"
	"github.com/aouyang1/go-inflation/source/eurostat"
	"github.com/aouyang1/go-inflation/source/fred"
)

// New wires the remote sources described by the settings. Eurostat serves
// inflation with synthetic data as the fallback and also serves the ECB policy
// rates. FRED is only queried when an API key is configured. Offline settings
// skip every remote source.
func New(settings *config.Settings) *Pipeline {
	if settings == nil {
		settings = &config.Settings{}
	}
	fallback := &source.Fallback{Secondary: source.NewSynthetic()}
	if settings.Sources.Offline {
		return NewPipeline(fallback)
	}

	es := eurostat.NewClient(eurostat.Config{
		BaseURL:           settings.Sources.Eurostat.BaseURL,
		Timeout:           settings.Sources.Eurostat.Timeout,
		RequestsPerSecond: settings.Sources.Eurostat.RequestsPerSecond,
	})
	fallback.Primary = es

	rates := []source.RateSource{&source.ECB{Source: es}}
	if settings.Sources.FRED.APIKey != "" {
		rates = append(rates, fred.NewClient(fred.Config{
			BaseURL:  settings.Sources.FRED.BaseURL,
			APIKey:   settings.Sources.FRED.APIKey,
			SeriesID: settings.Sources.FRED.SeriesID,
			Timeout:  settings.Sources.FRED.Timeout,
		}))
	}
	return NewPipeline(fallback, rates...)
}
