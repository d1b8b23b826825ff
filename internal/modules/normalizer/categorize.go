package normalizer

import (
	"strings"
)

// keywordGroup maps an ordered keyword list to a category. Group order
// is significant: the first group with a matching keyword wins, so
// more specific groups (subscriptions) come before broader ones
// (technology, entertainment).
type keywordGroup struct {
	category string
	keywords []string
}

var expenseGroups = []keywordGroup{
	{"Suscripciones", []string{"netflix", "spotify", "hbo", "disney", "prime video", "youtube premium", "suscripcion", "subscripcion"}},
	{"Supermercado", []string{"supermercado", "almacen", "carrefour", "coto", "jumbo", "la anonima", "changomas", "mercado central"}},
	{"Comida", []string{"restaurant", "restaurante", "cafe", "bar ", "pizzeria", "pizza", "burger", "delivery", "pedidosya", "rappi", "comida", "heladeria"}},
	{"Transporte", []string{"uber", "cabify", "didi", "taxi", "colectivo", "subte", "sube", "tren", "nafta", "combustible", "ypf", "shell", "peaje", "estacionamiento"}},
	{"Servicios", []string{"luz", "electricidad", "edenor", "edesur", "gas", "metrogas", "agua", "aysa", "internet", "fibertel", "telecentro", "telefono", "celular", "personal", "movistar", "claro", "expensas", "alquiler"}},
	{"Salud", []string{"farmacia", "farmacity", "medico", "hospital", "clinica", "dentista", "obra social", "prepaga", "osde", "swiss medical"}},
	{"Tecnologia", []string{"apple", "google", "microsoft", "steam", "hardware", "software", "notebook", "celular nuevo"}},
	{"Educacion", []string{"curso", "universidad", "facultad", "colegio", "libro", "libreria", "udemy", "coursera", "ingles"}},
	{"Entretenimiento", []string{"cine", "teatro", "juego", "entrada", "evento", "recital", "boliche"}},
	{"Deudas", []string{"prestamo", "cuota", "tarjeta", "credito", "interes", "refinanciacion"}},
}

var incomeGroups = []keywordGroup{
	{"Sueldo", []string{"sueldo", "salario", "haberes", "nomina", "aguinaldo"}},
	{"Freelance", []string{"freelance", "honorarios", "factura", "cliente", "proyecto"}},
	{"Ventas", []string{"venta", "mercadolibre", "mercado pago venta"}},
}

const (
	// DefaultIncomeCategory is assigned when no income group matches.
	DefaultIncomeCategory = "Ingresos"
	// DefaultExpenseCategory is assigned when no expense group matches.
	DefaultExpenseCategory = "Gastos"
)

// Categorize assigns a category to a transaction from its description
// using ordered keyword heuristics.
func Categorize(txType, description string) string {
	normalized := strings.ToLower(StripDiacritics(description))

	groups := expenseGroups
	fallback := DefaultExpenseCategory
	if txType == "income" {
		groups = incomeGroups
		fallback = DefaultIncomeCategory
	}

	for _, group := range groups {
		for _, keyword := range group.keywords {
			if strings.Contains(normalized, keyword) {
				return group.category
			}
		}
	}

	return fallback
}

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

// StripDiacritics removes Spanish accents so that keyword and noise
// matching is accent-insensitive.
func StripDiacritics(s string) string {
	return diacriticReplacer.Replace(s)
}
