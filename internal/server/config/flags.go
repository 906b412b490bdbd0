package config

import (
	"flag"
	"os"
	"time"

	"github.com/expensio/expensio/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      dev-login token validity, minutes
//	-g int      Google-login token validity, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	devTokenValidity := fs.Int("t", int(config.DevTokenValidityDuration.Minutes()), "dev token validity (in minutes)")
	googleTokenValidity := fs.Int("g", int(config.GoogleTokenValidityDuration.Minutes()), "google token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DevTokenValidityDuration = time.Duration(*devTokenValidity) * time.Minute
	config.GoogleTokenValidityDuration = time.Duration(*googleTokenValidity) * time.Minute
}
