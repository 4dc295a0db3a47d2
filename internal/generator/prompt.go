package generator

import (
	"strings"

	"google.golang.org/genai"

	"OutreachLab/internal/models"
)

// Email is the structured reply requested from the generation endpoint.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var EmailSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"subject": {Type: genai.TypeString, Description: "Subject line under 50 characters"},
		"body":    {Type: genai.TypeString, Description: "Full email body including the signature"},
	},
	Required: []string{"subject", "body"},
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// BuildPrompt writes the instructions for one lead. The campaign template is
// embedded verbatim; the model substitutes its {{field}} placeholders.
func BuildPrompt(sender models.Profile, lead models.Lead, template string) string {
	var b strings.Builder

	b.WriteString("Write a professional, personalized cold outreach email for B2B sales.\n\n")

	b.WriteString("SENDER INFORMATION (you):\n")
	b.WriteString("- Name: " + sender.FullName + "\n")
	b.WriteString("- Title: " + sender.JobTitle + "\n\n")

	b.WriteString("LEAD INFORMATION:\n")
	b.WriteString("- Name: " + strings.TrimSpace(lead.FirstName+" "+lead.LastName) + "\n")
	b.WriteString("- Email: " + lead.Email + "\n")
	b.WriteString("- Company: " + orDefault(lead.Company, "their company") + "\n")
	b.WriteString("- Title: " + orDefault(lead.Title, "their role") + "\n")
	b.WriteString("- Industry: " + orDefault(lead.Industry, "their industry") + "\n\n")

	b.WriteString("EMAIL TEMPLATE TO PERSONALIZE:\n")
	b.WriteString(template + "\n\n")

	b.WriteString(`INSTRUCTIONS:
1. Replace placeholders like {{first_name}}, {{company}}, {{title}} with actual values.
2. Make it sound natural and personalized.
3. Keep it professional but friendly.
4. Include a clear call-to-action.
5. Make it concise (under 150 words).
6. Don't use "I hope this email finds you well" or similar generic openings.
7. Be specific about why you're reaching out to them specifically.
8. Append the following signature at the end of the email body exactly as it is provided:
---
`)
	b.WriteString(sender.EmailSignature + "\n---\n\n")

	b.WriteString(`Return the email in this JSON format:
{
  "subject": "Compelling subject line (under 50 characters)",
  "body": "The full email body, including the signature."
}
`)

	return b.String()
}
