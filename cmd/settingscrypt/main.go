// Command settingscrypt seals or opens provider setting values with the
// AES_256_KEY_BASE64 key, e.g. before storing a Buckaroo secret key.
package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"buckaroopay/internal/crypto"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) != 3 || (os.Args[1] != "seal" && os.Args[1] != "open") {
		fmt.Println("usage: settingscrypt seal|open <value>")
		os.Exit(1)
	}
	_ = godotenv.Load(".env")

	key, err := base64.StdEncoding.DecodeString(os.Getenv("AES_256_KEY_BASE64"))
	if err != nil || len(key) != 32 {
		fmt.Println("AES_256_KEY_BASE64 must be valid base64 of 32 bytes")
		os.Exit(1)
	}

	var out string
	if os.Args[1] == "seal" {
		out, err = crypto.Seal(key, os.Args[2])
	} else {
		out, err = crypto.DecryptString(key, strings.TrimPrefix(os.Args[2], crypto.SealedPrefix))
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println(out)
}
