package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize_Expenses(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"NETFLIX.COM mensual", "Suscripciones"},
		{"Carrefour sucursal 42", "Supermercado"},
		{"PedidosYa pizza", "Comida"},
		{"UBER *TRIP", "Transporte"},
		{"Pago Edenor febrero", "Servicios"},
		{"FARMACITY 123", "Salud"},
		{"Steam purchase", "Tecnologia"},
		{"Curso de inglés", "Educacion"},
		{"Entradas cine hoyts", "Entretenimiento"},
		{"Cuota 3/12 préstamo", "Deudas"},
		{"Compra varios", "Gastos"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize("expense", tt.description))
		})
	}
}

func TestCategorize_Income(t *testing.T) {
	assert.Equal(t, "Sueldo", Categorize("income", "Acreditación haberes marzo"))
	assert.Equal(t, "Freelance", Categorize("income", "Factura cliente exterior"))
	assert.Equal(t, "Ventas", Categorize("income", "Venta MercadoLibre"))
	assert.Equal(t, "Ingresos", Categorize("income", "Transferencia recibida"))
}

func TestCategorize_GroupOrderWins(t *testing.T) {
	// "suscripcion" appears before the technology group, so a Google
	// subscription is a subscription, not technology.
	assert.Equal(t, "Suscripciones", Categorize("expense", "Google suscripción mensual"))
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "educacion", StripDiacritics("educación"))
	assert.Equal(t, "ANO", StripDiacritics("AÑO"))
	assert.Equal(t, "sin cambios", StripDiacritics("sin cambios"))
}
