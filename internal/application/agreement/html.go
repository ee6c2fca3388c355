package agreement

import "strings"

// baseStyles is injected into every agreement document: the corporate font
// plus sizing for the signature region so the rendered signature gets
// adequate space on the page.
const baseStyles = `<style>
@import url('https://fonts.googleapis.com/css2?family=Montserrat:wght@400;600&display=swap');
body, p, td, th, li { font-family: 'Montserrat', Arial, sans-serif; }
.firma-region { min-height: 120px; width: 320px; margin: 24px 0; }
</style>`

// injectBaseStyles places the style block inside <head> when present, else
// wraps it right after <html>, else prepends it to the document.
func injectBaseStyles(html string) string {
	if idx := indexCaseInsensitive(html, "<head>"); idx >= 0 {
		insertAt := idx + len("<head>")
		return html[:insertAt] + baseStyles + html[insertAt:]
	}
	if idx := indexCaseInsensitive(html, "<html"); idx >= 0 {
		// insert after the closing ">" of the html tag
		if end := strings.Index(html[idx:], ">"); end >= 0 {
			insertAt := idx + end + 1
			return html[:insertAt] + baseStyles + html[insertAt:]
		}
	}
	return baseStyles + html
}

// wrapSignatureRegion wraps the vendor's literal signature marker in a sized
// container. The marker itself must survive unchanged: the vendor scans the
// rendered PDF for it.
func wrapSignatureRegion(html string) string {
	return strings.ReplaceAll(html, signatureToken,
		`<div class="firma-region">`+signatureToken+`</div>`)
}

// pendingSignatureNotice is what staff see in the preview where the
// signature will eventually appear.
const pendingSignatureNotice = `<p style="font-style:italic;color:#666;">Pendiente de firma</p>`

// previewHTML derives the staff-facing preview from the signature-wrapped
// document: the wrapped signature block becomes a pending notice. The
// preview must never be what gets uploaded to the vendor.
func previewHTML(wrapped string) string {
	return strings.ReplaceAll(wrapped,
		`<div class="firma-region">`+signatureToken+`</div>`,
		pendingSignatureNotice)
}

// indexCaseInsensitive reports the index of the first case-insensitive
// occurrence of needle in s, or -1.
func indexCaseInsensitive(s, needle string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(needle))
}

// headerHTML is the per-page PDF header: the company logo, centered.
func headerHTML(logoDataURI string) string {
	if logoDataURI == "" {
		return `<div style="width:100%;"></div>`
	}
	return `<div style="width:100%;text-align:center;"><img src="` + logoDataURI + `" style="height:16mm;"/></div>`
}

// footerHTML is the per-page PDF footer: the company identity block.
func footerHTML(companyName, taxID, contact string) string {
	var b strings.Builder
	b.WriteString(`<div style="width:100%;text-align:center;font-size:8px;color:#444;">`)
	b.WriteString(companyName)
	if taxID != "" {
		b.WriteString(` &middot; NIT ` + taxID)
	}
	if contact != "" {
		b.WriteString(` &middot; ` + contact)
	}
	b.WriteString(`</div>`)
	return b.String()
}
