// Package invoice renders order invoices as PDF documents. Generation is
// a pure function of the cart contents, the customer details and the
// clock; the caller decides what to do with the resulting bytes.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/AZIZABADA10/E-commerce/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// maxNameLen is the widest product name the item table can hold.
const maxNameLen = 35

// Invoice is a generated invoice document.
type Invoice struct {
	Number   string // e.g. CMD-38214657
	FileName string // e.g. commande-1735689600000.pdf
	Data     []byte
}

// Generate renders the invoice PDF for the given cart lines and customer.
// The order number and file name derive from now, so two invoices
// generated at the same instant are identical.
func Generate(items []models.CartItem, customer models.CustomerInfo, now time.Time) (*Invoice, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cannot generate an invoice for an empty cart")
	}

	ts := now.UnixMilli()
	number := orderNumber(ts)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252, covers French accents
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 102, 204)
	textCenter(pdf, 20, tr("FACTURE DE COMMANDE"))

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(20, 35, tr(fmt.Sprintf("Date: %s", now.Format("02/01/2006"))))
	pdf.Text(20, 45, tr(fmt.Sprintf("Numéro: %s", number)))

	// Customer block
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 102, 204)
	pdf.Text(20, 65, tr("INFORMATIONS CLIENT"))
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)

	y := 75.0
	pdf.Text(20, y, tr(fmt.Sprintf("Nom: %s %s", customer.Nom, customer.Prenom)))
	pdf.Text(20, y+10, tr(fmt.Sprintf("Téléphone: %s", customer.Telephone)))
	pdf.Text(20, y+20, tr(fmt.Sprintf("Email: %s", customer.Email)))
	pdf.Text(20, y+30, tr(fmt.Sprintf("Adresse: %s", customer.Adresse)))
	pdf.Text(20, y+40, tr(fmt.Sprintf("Ville: %s %s", customer.Ville, customer.CodePostal)))

	pdf.SetDrawColor(0, 102, 204)
	pdf.Line(20, y+50, 190, y+50)

	// Item table
	y += 65
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 102, 204)
	pdf.Text(20, y, tr("DÉTAILS DE LA COMMANDE"))

	y += 10
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(20, y, tr("Produit"))
	pdf.Text(120, y, tr("Qté"))
	pdf.Text(140, y, tr("Prix Unit."))
	pdf.Text(170, y, tr("Total"))
	pdf.Line(20, y+3, 190, y+3)
	y += 10

	grandTotal := decimal.Zero
	itemCount := 0
	for _, item := range items {
		lineTotal := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		grandTotal = grandTotal.Add(lineTotal)
		itemCount += item.Quantity

		pdf.Text(20, y, tr(truncate(item.Name, maxNameLen)))
		pdf.Text(120, y, fmt.Sprintf("%d", item.Quantity))
		pdf.Text(140, y, tr(formatAmount(decimal.NewFromFloat(item.UnitPrice))))
		pdf.Text(170, y, tr(formatAmount(lineTotal)))
		y += 8
	}

	// Grand total
	pdf.Line(140, y, 190, y)
	y += 10
	pdf.SetFont("Helvetica", "B", 12)
	total := tr(fmt.Sprintf("TOTAL: %s", formatAmount(grandTotal)))
	pdf.Text(190-pdf.GetStringWidth(total), y, total)

	// Footer
	y += 20
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	textCenter(pdf, y, tr("Merci pour votre commande !"))
	textCenter(pdf, y+10, tr(fmt.Sprintf("Nombre total d'articles: %d", itemCount)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	return &Invoice{
		Number:   number,
		FileName: fmt.Sprintf("commande-%d.pdf", ts),
		Data:     buf.Bytes(),
	}, nil
}

// orderNumber derives CMD-<last 8 digits> from a millisecond timestamp.
func orderNumber(ts int64) string {
	s := fmt.Sprintf("%d", ts)
	if len(s) > 8 {
		s = s[len(s)-8:]
	}
	return "CMD-" + s
}

func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2) + " DH"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// textCenter horizontally centers txt on an A4 page at height y.
func textCenter(pdf *gofpdf.Fpdf, y float64, txt string) {
	pdf.Text((210-pdf.GetStringWidth(txt))/2, y, txt)
}
