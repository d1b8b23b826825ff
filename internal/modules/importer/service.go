package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/normalizer"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

const (
	// MaxRows caps a single import request.
	MaxRows = 2000

	// MaxSourceLength caps the free-text source label.
	MaxSourceLength = 40

	defaultSource      = "import"
	defaultCategory    = "General"
	defaultDescription = "Movimiento importado"
)

var typeSynonyms = map[string]string{
	"income":  transactions.TypeIncome,
	"ingreso": transactions.TypeIncome,
	"entrada": transactions.TypeIncome,
	"credit":  transactions.TypeIncome,
	"credito": transactions.TypeIncome,
	"expense": transactions.TypeExpense,
	"gasto":   transactions.TypeExpense,
	"egreso":  transactions.TypeExpense,
	"salida":  transactions.TypeExpense,
	"debit":   transactions.TypeExpense,
	"debito":  transactions.TypeExpense,
}

var (
	typeKeys        = []string{"type", "tipo"}
	amountKeys      = []string{"amount", "monto", "importe"}
	dateKeys        = []string{"date", "fecha"}
	categoryKeys    = []string{"category", "categoria", "rubro"}
	descriptionKeys = []string{"description", "descripcion", "detalle", "concepto"}
)

// Service turns loosely typed rows into ledger transactions and
// persists them all-or-nothing.
type Service struct {
	repo     *transactions.Repository
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewService creates a new import service
func NewService(repo *transactions.Repository, recorder audit.Recorder, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		log:      log.With().Str("service", "importer").Logger(),
	}
}

// Import validates, normalizes and persists the rows of a request.
// Rows that cannot be normalized are skipped and counted; the rows
// that survive are inserted in a single database transaction, so a
// storage failure imports nothing.
func (s *Service) Import(ctx context.Context, spaceID string, req *Request) (*Result, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = defaultSource
	}
	if len(source) > MaxSourceLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("source must be at most %d characters", MaxSourceLength))
	}
	if len(req.Rows) == 0 {
		return nil, apperrors.NewValidationError("rows must not be empty")
	}
	if len(req.Rows) > MaxRows {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("at most %d rows per import", MaxRows))
	}

	txs := make([]transactions.Transaction, 0, len(req.Rows))
	skipped := 0

	for _, row := range req.Rows {
		tx, ok := normalizeRow(row, spaceID)
		if !ok {
			skipped++
			continue
		}
		txs = append(txs, *tx)
	}

	if len(txs) == 0 {
		return nil, apperrors.NewValidationError("no valid rows to import")
	}

	if err := s.repo.CreateBatch(txs); err != nil {
		return nil, apperrors.NewPersistenceError("failed to import transactions", err)
	}

	result := &Result{
		Source:   source,
		Imported: len(txs),
		Skipped:  skipped,
		Total:    len(req.Rows),
	}

	s.recorder.Record(ctx, audit.Event{
		SpaceID:    spaceID,
		EntityType: "import",
		EntityID:   source,
		Action:     audit.ActionSystem,
		Metadata: map[string]interface{}{
			"source":   source,
			"imported": result.Imported,
			"skipped":  result.Skipped,
		},
	})

	s.log.Info().
		Str("source", source).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("Import completed")

	return result, nil
}

// normalizeRow maps one raw record to a transaction. Any field that
// fails to normalize rejects the whole row.
func normalizeRow(row Row, spaceID string) (*transactions.Transaction, bool) {
	rawType, _ := pick(row, typeKeys).(string)
	txType, ok := typeSynonyms[strings.ToLower(strings.TrimSpace(normalizer.StripDiacritics(rawType)))]
	if !ok {
		return nil, false
	}

	amount, ok := normalizer.ParseSignedAmount(pick(row, amountKeys))
	if !ok || amount <= 0 {
		return nil, false
	}

	date, ok := normalizer.ParseImportDate(pick(row, dateKeys))
	if !ok {
		return nil, false
	}

	category := defaultCategory
	if c, _ := pick(row, categoryKeys).(string); strings.TrimSpace(c) != "" {
		category = strings.TrimSpace(c)
	}

	description := defaultDescription
	if d, _ := pick(row, descriptionKeys).(string); strings.TrimSpace(d) != "" {
		description = strings.TrimSpace(d)
	}

	return &transactions.Transaction{
		SpaceID:     spaceID,
		Type:        txType,
		Amount:      normalizer.Round2(amount),
		Description: description,
		Category:    category,
		Date:        date,
	}, true
}

// pick returns the first present value among the candidate keys,
// matching case-insensitively.
func pick(row Row, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := row[key]; ok {
			return v
		}
	}
	for k, v := range row {
		lowered := strings.ToLower(k)
		for _, key := range keys {
			if lowered == key {
				return v
			}
		}
	}
	return nil
}
