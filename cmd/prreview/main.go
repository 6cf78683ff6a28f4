// Package main posts an AI-generated review comment on the pull request a CI job was started for.
//
// Usage (GitHub Actions, pull_request event):
//
//	env:
//	  OPENAI_API_KEY: ${{ secrets.OPENAI_API_KEY }}
//	  GITHUB_TOKEN: ${{ secrets.GITHUB_TOKEN }}
//	run: prreview
package main

import (
	"context"
	"os"

	"github.com/shipitai/prreview/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}
