package main

import (
	"log"
	"os"

	"seoaudit/cmd/seo-audit/app"
	"seoaudit/internal/fetcher"
	"seoaudit/internal/limiter"
)

func main() {
	httpClient := fetcher.NewHTTPClient()

	clock := limiter.NewClock()

	err := app.Run(os.Args, os.Stdout, os.Stderr, httpClient, clock)
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
