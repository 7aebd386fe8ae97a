package extractor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrDecrypt is returned when a password was supplied but pdfcpu could not
// open the document with it.
var ErrDecrypt = errors.New("pdf could not be decrypted with the provided password")

// Decrypt writes a decrypted copy of the PDF at path to a temp file and
// returns its location together with a cleanup func. Without a password, or
// when the file turns out not to be encrypted, the original path is returned
// and cleanup is a no-op.
func Decrypt(path, password string) (string, func(), error) {
	noop := func() {}
	if password == "" {
		return path, noop, nil
	}

	tmp, err := os.CreateTemp("", "bill-decrypted-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp.Close()
	cleanup := func() { os.Remove(tmp.Name()) }

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.DecryptFile(path, tmp.Name(), conf); err != nil {
		cleanup()
		// pdfcpu refuses to decrypt plain files; those are usable as-is.
		if strings.Contains(err.Error(), "not encrypted") {
			return path, noop, nil
		}
		return "", noop, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return tmp.Name(), cleanup, nil
}
