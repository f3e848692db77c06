// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vitaldiary/entryvault/internal/app"
	appvalidation "github.com/vitaldiary/entryvault/internal/validation"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// CloseContainer closes all resources in the container and logs any errors.
func CloseContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// resolvePassphrase returns passphrase if given, otherwise prompts on the
// IOTuple.
func resolvePassphrase(io IOTuple, label, passphrase string) (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	fmt.Fprintf(io.Writer, "%s: ", label)
	return readLine(io.Reader)
}

// readLine reads one line from r with surrounding whitespace trimmed.
func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// validateNewPassphrase enforces the minimum strength policy for a
// passphrase that is about to protect the vault. Existing passphrases are
// never re-validated; they only need to unwrap the key.
func validateNewPassphrase(passphrase string) error {
	rule := appvalidation.PassphraseStrength{MinLength: 8}
	return appvalidation.WrapValidationError(rule.Validate(passphrase))
}
