package agreement

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/futurosresidentes/backoffice/internal/domain/agreement"
)

// Token markers replaced in the agreement template. Substitution is literal
// string replacement: every occurrence of every token is replaced, and tokens
// missing from the template are simply not used. The vendor's signature
// marker is intentionally absent from this table so it survives substitution
// and reaches the signature-wrapping step intact.
const (
	tokenConsecutivo = "{{consecutivo}}"
	tokenMembresia   = "{{membresia}}"
	tokenCCEdudiante = "{{ccestudiante}}"
	tokenEstudiante  = "{{estudiante}}"
	tokenMonto       = "{{monto}}"
	tokenPlanDePagos = "{{plandepagos}}"
	tokenEjecucion   = "{{ejecucion}}"
	tokenDia         = "{{dia}}"
	tokenMes         = "{{mes}}"
	tokenAno         = "{{ano}}"
	tokenComercial   = "{{comercial}}"
	tokenLogo        = "{{logo}}"
)

// signatureToken is the literal marker the e-signature vendor scans for.
const signatureToken = "{{firma}}"

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// bogota is the timezone the business operates in. Date tokens must be
// computed here, not in server-local time.
var bogota = func() *time.Location {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		return time.FixedZone("-05", -5*60*60)
	}
	return loc
}()

var montoPrinter = message.NewPrinter(language.MustParse("es-CO"))

// formatMonto renders an amount with es-CO thousands grouping and no
// currency symbol: 1500000 -> "1.500.000".
func formatMonto(amount decimal.Decimal) string {
	return montoPrinter.Sprintf("%v",
		number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(0)))
}

// tokenValues computes the full substitution table for one request at the
// given generation time.
func (s *Service) tokenValues(req *agreement.Request, now time.Time) map[string]string {
	local := now.In(bogota)
	return map[string]string{
		tokenConsecutivo: req.AgreementNumber,
		tokenMembresia:   req.ProductName,
		tokenCCEdudiante: req.DebtorDocumentID,
		tokenEstudiante:  req.DebtorFullName(),
		tokenMonto:       formatMonto(req.TotalAmount),
		tokenPlanDePagos: buildPaymentPlanHTML(req.Installments),
		tokenEjecucion:   buildExecutionClause(req.PlatformStartPolicy),
		tokenDia:         fmt.Sprintf("%d", local.Day()),
		tokenMes:         spanishMonths[local.Month()-1],
		tokenAno:         fmt.Sprintf("%d", local.Year()),
		tokenComercial:   req.SalesRepName,
		tokenLogo:        s.logoDataURI(),
	}
}

// substituteTokens replaces every occurrence of every token. Unknown
// {{...}} markers in the template are left untouched.
func substituteTokens(html string, values map[string]string) string {
	for token, value := range values {
		html = strings.ReplaceAll(html, token, value)
	}
	return html
}

// buildPaymentPlanHTML renders the installment table, or a placeholder
// paragraph when the agreement has no installment plan.
func buildPaymentPlanHTML(installments []agreement.Installment) string {
	if len(installments) == 0 {
		return `<p>No se definió un plan de pagos para este acuerdo.</p>`
	}

	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse;width:100%;">`)
	b.WriteString(`<tr><th>Cuota</th><th>Valor</th><th>Fecha límite</th><th>Enlace de pago</th></tr>`)
	for _, cuota := range installments {
		link := "-"
		if cuota.PaymentLink != "" {
			link = fmt.Sprintf(`<a href="%s">Pagar</a>`, cuota.PaymentLink)
		}
		b.WriteString(fmt.Sprintf(`<tr><td>%d</td><td>$ %s</td><td>%s</td><td>%s</td></tr>`,
			cuota.Number, formatMonto(cuota.Amount), formatDueDate(cuota.DueDate), link))
	}
	b.WriteString(`</table>`)
	return b.String()
}

// formatDueDate renders an ISO date as DD/MM/YYYY. The split is done on the
// string itself; parsing through a date type in server-local time can shift
// the day across the midnight boundary.
func formatDueDate(isoDate string) string {
	year, month, day, ok := agreement.SplitISODate(isoDate)
	if !ok {
		return isoDate
	}
	return fmt.Sprintf("%s/%s/%s", day, month, year)
}

// buildExecutionClause picks between the two legal clauses that govern when
// platform access begins.
func buildExecutionClause(startPolicy string) string {
	if strings.EqualFold(strings.TrimSpace(startPolicy), agreement.StartPolicyFirstPayment) {
		return `El acceso a la plataforma se habilitará una vez se registre el primer pago del presente acuerdo.`
	}
	if year, month, day, ok := agreement.SplitISODate(startPolicy); ok {
		return fmt.Sprintf(
			`El acceso a la plataforma se habilitará a partir del %s/%s/%s, independientemente de la fecha del primer pago.`,
			day, month, year)
	}
	// Unrecognized policy values fall back to the first-payment clause
	return `El acceso a la plataforma se habilitará una vez se registre el primer pago del presente acuerdo.`
}

// logoDataURI returns the company logo as a base64 data URI. The asset is
// read from disk once and cached for the process lifetime; a read failure
// yields an empty string so document generation still succeeds without the
// image.
func (s *Service) logoDataURI() string {
	s.logoOnce.Do(func() {
		data, err := os.ReadFile(s.logoPath)
		if err != nil {
			s.logger.Warn("logo asset unreadable, documents will render without it")
			return
		}
		mime := "image/png"
		if strings.EqualFold(filepath.Ext(s.logoPath), ".jpg") || strings.EqualFold(filepath.Ext(s.logoPath), ".jpeg") {
			mime = "image/jpeg"
		}
		s.logoCache = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	})
	return s.logoCache
}
