// Package commands holds the server's maintenance subcommands.
package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"volunteerhub/internal/application"
)

// passwordReader reads one secret line from the user.
type passwordReader func(prompt string) (string, error)

// HashPassword handles the hash-password subcommand: it prompts for a
// password twice and prints its bcrypt hash for seeding a user record.
func HashPassword(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(stderr)
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: server hash-password [OPTIONS]\n\n")
		fmt.Fprintf(stderr, "Prints a bcrypt hash to paste into a user record.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	read := readMasked
	if *insecureUnmask || !term.IsTerminal(int(os.Stdin.Fd())) {
		if *insecureUnmask {
			fmt.Fprintln(stderr, "WARNING: password will be visible on screen!")
		}
		read = lineReader(bufio.NewReader(os.Stdin), stderr)
	}
	return hashPassword(read, stdout)
}

func hashPassword(read passwordReader, stdout io.Writer) error {
	password, err := read("Enter password:   ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	hash, err := application.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func readMasked(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return string(pw), err
}

func lineReader(r *bufio.Reader, prompts io.Writer) passwordReader {
	return func(prompt string) (string, error) {
		fmt.Fprint(prompts, prompt)
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
