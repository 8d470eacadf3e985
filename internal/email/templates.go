package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type welcomeEmailData struct {
	baseEmailData
	LeadName string
}

type proposalEmailData struct {
	baseEmailData
	LeadName     string
	ProposalText string
}

type dealWonEmailData struct {
	baseEmailData
	LeadName       string
	ValueFormatted string
}

type followUpEmailData struct {
	baseEmailData
	LeadName string
	Message  string
}

func renderEmailTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyBRL(cents int64) string {
	return fmt.Sprintf("R$ %.2f", float64(cents)/100)
}
