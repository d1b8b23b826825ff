package currency

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/clients/dolarapi"
	"github.com/waldear/finanzas/internal/modules/normalizer"
)

// Rate source labels reported back to callers.
const (
	SourceCard     = "tarjeta"
	SourceOfficial = "oficial+impuestos"
	SourceFallback = "fallback+impuestos"
)

// QuoteSource provides external USD quotes. Both calls soft-fail with
// nil.
type QuoteSource interface {
	GetCardQuote(ctx context.Context) *dolarapi.Quote
	GetOfficialQuote(ctx context.Context) *dolarapi.Quote
}

// Config holds the injected rate constants. Taxes are configured, not
// read from the environment ad hoc, so tests can pin them.
type Config struct {
	TotalTaxPercent      float64
	OfficialRateFallback float64
}

// Resolution is the effective USD->ARS rate used for a batch.
type Resolution struct {
	Rate       float64 `json:"rate"`
	Source     string  `json:"source"`
	TaxPercent float64 `json:"tax_percent"`
}

// Service resolves USD conversion rates
type Service struct {
	quotes QuoteSource
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a new currency service
func NewService(quotes QuoteSource, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		quotes: quotes,
		cfg:    cfg,
		log:    log.With().Str("service", "currency").Logger(),
	}
}

// ResolveUSDRate returns the effective card rate. The direct card
// quote wins; otherwise the official quote (or the configured
// fallback constant) is grossed up by the combined tax percentage.
func (s *Service) ResolveUSDRate(ctx context.Context) Resolution {
	if quote := s.quotes.GetCardQuote(ctx); quote != nil {
		return Resolution{
			Rate:   quote.Rate(),
			Source: SourceCard,
		}
	}

	surcharge := 1 + s.cfg.TotalTaxPercent/100

	if quote := s.quotes.GetOfficialQuote(ctx); quote != nil {
		rate := normalizer.Round2(quote.Rate() * surcharge)
		s.log.Info().
			Float64("official", quote.Rate()).
			Float64("effective", rate).
			Msg("Card quote unavailable, derived from official rate")
		return Resolution{
			Rate:       rate,
			Source:     SourceOfficial,
			TaxPercent: s.cfg.TotalTaxPercent,
		}
	}

	rate := normalizer.Round2(s.cfg.OfficialRateFallback * surcharge)
	s.log.Warn().
		Float64("effective", rate).
		Msg("Rate source unavailable, using configured fallback")
	return Resolution{
		Rate:       rate,
		Source:     SourceFallback,
		TaxPercent: s.cfg.TotalTaxPercent,
	}
}

// Convert converts a USD amount to ARS at the given rate, rounded to
// 2 decimals.
func (s *Service) Convert(amount, rate float64) float64 {
	return normalizer.Round2(amount * rate)
}
