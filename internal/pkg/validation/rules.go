package validation

import (
	"regexp"
	"strings"

	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email validation pattern, applied before the domain allow-list
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// DefaultEmailDomains are the school domains allowed to register
var DefaultEmailDomains = []string{"@ece.fr", "@edu.ece.fr"}

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// EmailPolicy restricts registration to a fixed set of address suffixes
type EmailPolicy struct {
	domains []string
}

// NewEmailPolicy builds a policy from domain suffixes. A missing leading '@' is added
// so that "ece.fr" does not match "notece.fr".
func NewEmailPolicy(domains []string) *EmailPolicy {
	if len(domains) == 0 {
		domains = DefaultEmailDomains
	}
	p := &EmailPolicy{}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if !strings.HasPrefix(d, "@") {
			d = "@" + d
		}
		p.domains = append(p.domains, d)
	}
	return p
}

// Domains returns the configured suffixes
func (p *EmailPolicy) Domains() []string {
	out := make([]string, len(p.domains))
	copy(out, p.domains)
	return out
}

// Allowed reports whether email ends with one of the suffixes, ignoring case
func (p *EmailPolicy) Allowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, d := range p.domains {
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

// Check validates the email shape then the domain
func (p *EmailPolicy) Check(email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !CompiledPatterns.Email.MatchString(normalized) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail, "invalid email address")
	}
	if !p.Allowed(normalized) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail,
			"email must end with one of: "+strings.Join(p.domains, ", "))
	}
	return nil
}

// Password checks the minimum password length
func Password(password string) error {
	if len(password) < PasswordMinLength {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}
	return nil
}

// Name checks the length of a display name
func Name(name string) error {
	n := len(strings.TrimSpace(name))
	if n < NameMinLength || n > NameMaxLength {
		return apperrors.NewValidationError("name must be between 2 and 100 characters")
	}
	return nil
}
