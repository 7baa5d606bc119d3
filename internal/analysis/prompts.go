package analysis

import (
	"fmt"
	"strings"
)

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text and extract structured information about job opportunities in security, compliance, or GRC roles.

Extract:
- company_name: Name of the company (if mentioned)
- job_title: Job title or role
- role_type: Classify as "security", "compliance", or "grc"
- industry: Industry of the company
- location: Job location
- keywords: List of relevant keywords (e.g., "CISO", "data protection", "risk management")

Text: %s

Return ONLY a valid JSON object with these fields. If a field is not found, use null.
`, text)
}

func signalPrompt(text, companyName string) string {
	return fmt.Sprintf(`Analyze the following text about %s and identify hiring signals that suggest they may need security or compliance leadership.

Look for signals like:
- Company expansion or growth
- Recent funding rounds
- Security breaches or incidents
- New compliance requirements
- Regulatory changes affecting the company
- Product launches requiring security expertise

Text: %s

Return ONLY a valid JSON object with:
- has_signal: boolean indicating if hiring signals were detected
- signal_type: one of ["expansion", "funding", "breach", "compliance_news", "regulatory", "product_launch", "none"]
- confidence: float between 0 and 1
- description: brief description of the signal

Return valid JSON only.
`, companyName, text)
}

func summaryPrompt(lines []string) string {
	return fmt.Sprintf(`Create a brief executive summary of the following security, compliance, and GRC opportunities:

%s

Provide a 2-3 sentence summary highlighting:
1. The total number of opportunities found
2. Top companies or trends
3. Key insights for job seekers in security/compliance roles

Keep it concise and actionable.
`, strings.Join(lines, "\n"))
}
