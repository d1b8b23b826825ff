package extraction

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/modules/currency"
	"github.com/waldear/finanzas/internal/modules/normalizer"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Currencies handled by the normalizer. ARS is home.
const (
	CurrencyARS = "ARS"
	CurrencyUSD = "USD"
)

// MaxRowsCeiling bounds any caller-requested row cap.
const MaxRowsCeiling = 250

// noiseLabelRe matches aggregate rows that extraction models read off
// statement footers. Whole word, after lowering and accent stripping.
var noiseLabelRe = regexp.MustCompile(`\b(total|diferencia|saldo|resumen)\b`)

// incomeLabelRe matches labels that read as money coming in.
var incomeLabelRe = regexp.MustCompile(`\b(sueldo|salario|haberes|deposito|acreditacion|cobro|ingreso|transferencia recibida)\b`)

// savingsLabelRe matches labels for money moved into savings.
var savingsLabelRe = regexp.MustCompile(`\b(ahorro|plazo fijo|inversion)\b`)

var kindMap = map[string]string{
	"income":  transactions.TypeIncome,
	"ingreso": transactions.TypeIncome,
	"credit":  transactions.TypeIncome,
	"credito": transactions.TypeIncome,
	"expense": transactions.TypeExpense,
	"gasto":   transactions.TypeExpense,
	"egreso":  transactions.TypeExpense,
	"debit":   transactions.TypeExpense,
	"debito":  transactions.TypeExpense,
}

// RateResolver resolves one USD rate per batch and converts amounts.
type RateResolver interface {
	ResolveUSDRate(ctx context.Context) currency.Resolution
	Convert(amount, rate float64) float64
}

// Service normalizes raw extraction output into candidate rows
type Service struct {
	rates          RateResolver
	defaultMaxRows int
	log            zerolog.Logger
}

// NewService creates a new extraction normalizer
func NewService(rates RateResolver, defaultMaxRows int, log zerolog.Logger) *Service {
	if defaultMaxRows < 1 || defaultMaxRows > MaxRowsCeiling {
		defaultMaxRows = 120
	}
	return &Service{
		rates:          rates,
		defaultMaxRows: defaultMaxRows,
		log:            log.With().Str("service", "extraction").Logger(),
	}
}

// Normalize converts a raw extraction into deduplicated candidate
// rows, converting USD rows with a single rate resolved for the
// whole batch.
func (s *Service) Normalize(ctx context.Context, ext *Extraction, maxRows int) *Result {
	if maxRows < 1 {
		maxRows = s.defaultMaxRows
	}
	if maxRows > MaxRowsCeiling {
		maxRows = MaxRowsCeiling
	}

	fallbackDate := s.resolveFallbackDate(ext)

	seen := make(map[string]bool)
	rows := make([]CandidateRow, 0, len(ext.Entries))
	skipped := 0

	for _, entry := range ext.Entries {
		row, ok := s.normalizeEntry(&entry, fallbackDate)
		if !ok {
			skipped++
			continue
		}

		key := dedupeKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true

		rows = append(rows, *row)
		if len(rows) == maxRows {
			break
		}
	}

	result := &Result{Rows: rows, Meta: Meta{Count: len(rows)}}
	s.convertForeignRows(ctx, result)

	s.log.Debug().
		Int("candidates", len(rows)).
		Int("skipped", skipped).
		Msg("Extraction normalized")

	return result
}

func (s *Service) normalizeEntry(entry *RawEntry, fallbackDate string) (*CandidateRow, bool) {
	label := strings.TrimSpace(entry.Label)
	if label == "" {
		return nil, false
	}

	normalizedLabel := strings.ToLower(normalizer.StripDiacritics(label))
	if noiseLabelRe.MatchString(normalizedLabel) {
		return nil, false
	}

	signed, ok := normalizer.ParseSignedAmount(entry.Amount)
	if !ok {
		return nil, false
	}
	magnitude := math.Abs(signed)

	cur := CurrencyARS
	if strings.EqualFold(strings.TrimSpace(entry.Currency), CurrencyUSD) ||
		strings.Contains(strings.ToUpper(label), CurrencyUSD) {
		cur = CurrencyUSD
	}

	direction := classifyDirection(entry.Kind, signed, normalizedLabel)
	category := classifyCategory(entry.Category, direction, normalizedLabel, label)

	date := fallbackDate
	if d := strings.TrimSpace(entry.Date); d != "" {
		if _, err := time.Parse("2006-01-02", d); err == nil {
			date = d
		}
	}

	return &CandidateRow{
		Date:           date,
		Type:           direction,
		Category:       category,
		Description:    label,
		Amount:         normalizer.Round2(magnitude),
		Currency:       cur,
		OriginalAmount: normalizer.Round2(magnitude),
	}, true
}

// resolveFallbackDate derives the document-level date for rows that
// carry none. The period label wins over the raw document text.
func (s *Service) resolveFallbackDate(ext *Extraction) string {
	if d, ok := normalizer.ScanTextForDate(ext.PeriodLabel); ok {
		return d
	}
	if d, ok := normalizer.ScanTextForDate(ext.RawText); ok {
		return d
	}
	return time.Now().UTC().Format("2006-01-02")
}

// classifyDirection orders the signals: an explicit kind that maps
// cleanly wins, then a negative signed amount, then income keywords
// on the label. Expense is the default.
func classifyDirection(kind string, signed float64, normalizedLabel string) string {
	if mapped, ok := kindMap[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return mapped
	}
	if signed < 0 {
		return transactions.TypeExpense
	}
	if incomeLabelRe.MatchString(normalizedLabel) {
		return transactions.TypeIncome
	}
	return transactions.TypeExpense
}

func classifyCategory(explicit, direction, normalizedLabel, label string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	if savingsLabelRe.MatchString(normalizedLabel) {
		return "Ahorro"
	}
	return normalizer.Categorize(direction, label)
}

func dedupeKey(row *CandidateRow) string {
	return fmt.Sprintf("%s|%s|%s|%.2f|%s|%s",
		row.Type,
		strings.ToLower(row.Category),
		strings.ToLower(row.Description),
		row.Amount,
		row.Date,
		row.Currency,
	)
}

// convertForeignRows resolves one USD rate for the batch and converts
// every USD row, appending a conversion note so the original amount
// survives review.
func (s *Service) convertForeignRows(ctx context.Context, result *Result) {
	hasUSD := false
	for i := range result.Rows {
		if result.Rows[i].Currency == CurrencyUSD {
			hasUSD = true
			break
		}
	}
	if !hasUSD {
		return
	}

	res := s.rates.ResolveUSDRate(ctx)
	result.Meta.USDRateUsed = &res.Rate
	result.Meta.USDSource = res.Source
	result.Meta.TaxesAppliedPercent = res.TaxPercent

	for i := range result.Rows {
		row := &result.Rows[i]
		if row.Currency != CurrencyUSD {
			continue
		}
		converted := s.rates.Convert(row.OriginalAmount, res.Rate)
		row.Amount = converted
		row.Description = fmt.Sprintf("%s (USD %.2f @ %.2f, impuestos %.0f%%)",
			row.Description, row.OriginalAmount, res.Rate, res.TaxPercent)
	}
}
