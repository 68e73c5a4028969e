// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package typed

import (
	"strings"

	"golang.org/x/net/idna"

	profileerrors "grimm.is/relayprofile/internal/errors"
)

var domainProfile = idna.New(idna.ValidateLabels(true), idna.StrictDomainName(true), idna.VerifyDNSLength(false))

// validateDomainExpression checks that a DOMAIN/DOMAIN-SUFFIX/DOMAIN-KEYWORD
// rule's expression is at least plausible. Full IDNA validation via
// domainProfile is attempted first since most expressions are ordinary
// domain literals, but a failure there isn't fatal: DOMAIN-KEYWORD
// expressions are free-form substrings with no dots at all, and even DOMAIN/
// DOMAIN-SUFFIX expressions can be literals IDNA's stricter label rules
// reject (leading digits in unusual TLDs, internal hostnames) that this
// engine has no business rejecting outright. Only whitespace or a path
// separator, which can't belong in any domain expression, is a hard error.
func validateDomainExpression(expression string) error {
	if expression == "" {
		return profileerrors.DataCorrupted("domain rule expression is empty")
	}
	if _, err := domainProfile.ToASCII(expression); err == nil {
		return nil
	}
	if strings.ContainsAny(expression, " \t/\\") {
		return profileerrors.DataCorruptedf("invalid domain expression %q", expression)
	}
	return nil
}
