// Command rostertool prepares credential values for the roster file.
//
//	rostertool hash-password <password>   bcrypt hash for password_hash
//	rostertool seal <totp-secret>         sealed value for totp_secret (needs DATA_ENCRYPTION_KEY)
//	rostertool new-totp <employee-name>   fresh TOTP secret and provisioning URL
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pquerna/otp/totp"

	"salesboard/internal/domain/auth"
	"salesboard/internal/platform/config"
	"salesboard/internal/platform/crypto"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rostertool hash-password|seal|new-totp <value>")
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	out, err := run(flag.Arg(0), flag.Arg(1), config.Load())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func run(cmd, value string, cfg config.Config) (string, error) {
	switch cmd {
	case "hash-password":
		return auth.HashPassword(value)
	case "seal":
		sealer, err := crypto.New(cfg.DataEncryptionKey)
		if err != nil {
			return "", err
		}
		return sealer.Seal(value)
	case "new-totp":
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "salesboard", AccountName: value})
		if err != nil {
			return "", err
		}
		return key.Secret() + "\n" + key.URL(), nil
	}
	return "", fmt.Errorf("unknown command %q", cmd)
}
