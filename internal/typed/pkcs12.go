// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package typed

import (
	"golang.org/x/crypto/pkcs12"

	profileerrors "grimm.is/relayprofile/internal/errors"
)

// validatePKCS12Bytes checks that raw decodes as a PKCS#12 bundle under
// passphrase, without keeping the decoded certificate material around —
// the profile engine only cares that the blob is well-formed, not what it
// contains.
func validatePKCS12Bytes(raw []byte, passphrase string) error {
	if _, _, err := pkcs12.Decode(raw, passphrase); err != nil {
		return profileerrors.DataCorruptedf("man-in-the-middle pkcs12 blob does not decode: %v", err)
	}
	return nil
}
