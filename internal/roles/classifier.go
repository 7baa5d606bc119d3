package roles

import (
	"regexp"
	"strings"
)

// Role types assigned to opportunities.
const (
	RoleSecurity   = "security"
	RoleCompliance = "compliance"
	RoleGRC        = "grc"
)

type Rule struct {
	Role       string
	TitleRegex []string

	compiled []*regexp.Regexp
}

// DefaultRules classify a job title into a role type. Rules are checked in
// order, first match wins; GRC runs before the broader buckets because its
// titles overlap both.
func DefaultRules() []Rule {
	return []Rule{
		{
			Role: RoleGRC,
			TitleRegex: []string{
				`(?i)\bgrc\b`,
				`(?i)governance.*risk.*compliance`,
				`(?i)\brisk\s+(manager|analyst|officer)\b`,
			},
		},
		{
			Role: RoleCompliance,
			TitleRegex: []string{
				`(?i)\bcompliance\b`,
				`(?i)data\s+protection\s+officer`,
				`(?i)\bdpo\b`,
				`(?i)\bprivacy\s+(officer|counsel|manager)\b`,
				`(?i)\bregulatory\b`,
			},
		},
		{
			Role: RoleSecurity,
			TitleRegex: []string{
				`(?i)\bciso\b`,
				`(?i)chief\s+information\s+security`,
				`(?i)\b(security|infosec|appsec)\b`,
				`(?i)\bsoc\s+(analyst|manager|lead)\b`,
				`(?i)penetration\s+test`,
			},
		},
	}
}

// Classifier backfills role_type when entity extraction leaves it empty.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	for i := range rules {
		for _, expr := range rules[i].TitleRegex {
			re, err := regexp.Compile(expr)
			if err != nil {
				continue
			}
			rules[i].compiled = append(rules[i].compiled, re)
		}
	}
	return &Classifier{rules: rules}
}

// Classify returns the role type for a job title, or "" when nothing matches.
func (c *Classifier) Classify(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	for _, rule := range c.rules {
		for _, re := range rule.compiled {
			if re.MatchString(title) {
				return rule.Role
			}
		}
	}
	return ""
}
