package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"radiocode/internal/client"
	"radiocode/internal/decoder"
	"radiocode/internal/shared"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rc-decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	serverURL := fs.String("server", envOr("RC_SERVER_URL", "http://localhost:8085"), "decoder server URL")
	apiKey := fs.String("api-key", os.Getenv("RC_API_KEY"), "API key sent as X-API-Key")
	manufacturer := fs.String("make", "", "manufacturer (dacia, ford, renault, ...)")
	serial := fs.String("serial", "", "serial number (Ford)")
	hash := fs.String("hash", "", "security hash (Dacia, Renault)")
	vin := fs.String("vin", "", "vehicle identification number")
	local := fs.Bool("local", false, "decode in-process instead of calling the server")
	fordTable := fs.String("ford-table", envOr("RC_FORD_TABLE", "./data/radiocodes.bin"), "Ford lookup table for -local")
	list := fs.Bool("list", false, "list supported manufacturers")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var reg *decoder.Registry
	var c *client.Client
	if *local {
		reg = decoder.Builtin(decoder.Options{FordTable: *fordTable})
	} else {
		c = client.New(*serverURL, *apiKey)
	}

	if *list {
		var names []string
		var err error
		if reg != nil {
			names = reg.Names()
		} else {
			names, err = c.Manufacturers(ctx)
		}
		if err != nil {
			fmt.Fprintln(stderr, color.RedString("error: %v", err))
			return 1
		}
		fmt.Fprintln(stdout, strings.Join(names, "\n"))
		return 0
	}

	if *manufacturer == "" {
		fmt.Fprintln(stderr, color.RedString("error: -make is required"))
		fs.Usage()
		return 2
	}
	req := shared.DecodeRequest{Make: *manufacturer, SerialNumber: *serial, SecurityHash: *hash, VIN: *vin}

	var resp *shared.DecodeResponse
	var err error
	if reg != nil {
		resp, err = reg.Decode(req)
	} else {
		resp, err = c.Decode(ctx, req)
	}
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("error: %s", describe(err)))
		return 1
	}

	fmt.Fprintf(stdout, "%s unlock code: %s\n", resp.Make, color.GreenString(resp.UnlockCode))
	return 0
}

// describe hides internal causes the same way the server does.
func describe(err error) string {
	var de *decoder.Error
	if errors.As(err, &de) {
		if decoder.IsClientError(err) {
			return de.Message()
		}
		return de.Error()
	}
	return err.Error()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
