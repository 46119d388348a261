package redact

import (
	"strings"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

const promptHeader = `You are an expert AI specializing in medical data privacy.
Your task is to identify and redact Personally Identifiable Information (PII) from the following text while preserving all medical information.
Replace all PII with the exact string "` + domain.RedactionMarker + `".
Do NOT redact any medical information such as diagnoses, symptoms, medication names and dosages, lab results, or treatment plans. A medication dose is never a phone number or an identifier.
PII includes, but is not limited to:
- Names of patients, doctors (unless part of a hospital name), relatives.
- Phone numbers.
- Addresses, including street names, cities, zip codes.
- Dates (like date of birth, admission dates).
- Aadhaar numbers, Social Security Numbers, or other national identifiers.
- Email addresses.
- Medical record numbers (MRN).

Return only the redacted text, with no additional commentary or explanation.

Here is the text to process:
---
`

// BuildPrompt wraps text in the redaction instructions
func BuildPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(text) + 8)
	b.WriteString(promptHeader)
	b.WriteString(text)
	b.WriteString("\n---\n")
	return b.String()
}
