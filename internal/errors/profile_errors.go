// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import "fmt"

// The profile engine's boundaries surface exactly seven error kinds. Each
// is a constructor over the generic *Error above, with
// the offending cursor/name/description attached as attributes so a caller
// can recover structured context with GetAttributes without parsing the
// message.

// InvalidLine reports that a line's structure could not be parsed in its
// section context.
func InvalidLine(cursor int, description string) error {
	err := Errorf(KindValidation, "invalid line %d: %s", cursor, description)
	err = Attr(err, "cursor", cursor)
	err = Attr(err, "description", description)
	return Attr(err, "profile_error", "InvalidLine")
}

// UnknownPolicy reports that a cross-reference resolved to no declared
// policy or group.
func UnknownPolicy(cursor int, name string) error {
	err := Errorf(KindValidation, "line %d: unknown policy %q", cursor, name)
	err = Attr(err, "cursor", cursor)
	err = Attr(err, "name", name)
	return Attr(err, "profile_error", "UnknownPolicy")
}

// DataCorrupted reports that the overall document is not shaped as
// expected.
func DataCorrupted(msg string) error {
	err := New(KindCorrupted, msg)
	return Attr(err, "profile_error", "DataCorrupted")
}

// DataCorruptedf is the formatted variant of DataCorrupted.
func DataCorruptedf(format string, args ...any) error {
	return DataCorrupted(fmt.Sprintf(format, args...))
}

// UnsupportedRule reports an unregistered rule tag.
func UnsupportedRule(tag string) error {
	err := Errorf(KindUnsupported, "unsupported rule: %s", tag)
	err = Attr(err, "tag", tag)
	return Attr(err, "profile_error", "UnsupportedRule")
}

// RuleFieldMissing reports too few fields for a rule's tag.
func RuleFieldMissing(tag string, got, want int) error {
	err := Errorf(KindValidation, "rule %s requires at least %d field(s) after the tag, got %d", tag, want, got)
	err = Attr(err, "tag", tag)
	err = Attr(err, "got", got)
	err = Attr(err, "want", want)
	return Attr(err, "profile_error", "RuleFieldMissing")
}

// FailedToParseAs reports that a description parsed as a different
// registered rule kind than the one requested.
func FailedToParseAs(expected, actual string) error {
	err := Errorf(KindValidation, "expected rule kind %s, description parses as %s", expected, actual)
	err = Attr(err, "expected", expected)
	err = Attr(err, "actual", actual)
	return Attr(err, "profile_error", "FailedToParseAs")
}

// InvalidExternalResources reports that an external-resource URL failed to
// parse.
func InvalidExternalResources(url string, cause error) error {
	err := Wrapf(cause, KindValidation, "invalid external resource URL: %s", url)
	err = Attr(err, "url", url)
	return Attr(err, "profile_error", "InvalidExternalResources")
}

// CursorOf returns the cursor attribute attached to err, if any.
func CursorOf(err error) (int, bool) {
	attrs := GetAttributes(err)
	c, ok := attrs["cursor"].(int)
	return c, ok
}

// ProfileErrorKind returns the profile error-kind name (e.g. "UnknownPolicy")
// attached to err, if any.
func ProfileErrorKind(err error) (string, bool) {
	attrs := GetAttributes(err)
	s, ok := attrs["profile_error"].(string)
	return s, ok
}
