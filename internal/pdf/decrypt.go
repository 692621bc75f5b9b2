package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dokumi/ocr-service/internal/ocr"
)

// Decryptor unlocks password-protected PDFs with pdfcpu. Candidate passwords
// are tried in order: the user-supplied one first, then the empty password.
// Documents "protected" with no real password are common enough that the
// empty fallback must always be attempted.
type Decryptor struct{}

var _ ocr.Decryptor = (*Decryptor)(nil)

func NewDecryptor() *Decryptor {
	return &Decryptor{}
}

func (d *Decryptor) Decrypt(ctx context.Context, path, password string) (string, bool, error) {
	err := api.ValidateFile(path, model.NewDefaultConfiguration())
	if err == nil {
		return path, false, nil
	}
	if !looksEncrypted(err) {
		// Corrupt rather than encrypted; let rasterization report it.
		return path, false, nil
	}

	var lastErr error
	for _, pw := range passwordCandidates(password) {
		out, err := decryptToTemp(path, pw)
		if err == nil {
			return out, true, nil
		}
		lastErr = err
	}

	return "", true, &ocr.DecryptionError{Err: lastErr}
}

func decryptToTemp(path, password string) (string, error) {
	f, err := os.CreateTemp("", "ocr-decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	out := f.Name()
	f.Close()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.DecryptFile(path, out, conf); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func passwordCandidates(password string) []string {
	if password == "" {
		return []string{""}
	}
	return []string{password, ""}
}

func looksEncrypted(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}
