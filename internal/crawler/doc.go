// Package crawler fetches and queries the HTML pages kakusu reads: the two
// fortune oracles and the name candidate source.
//
// # Components
//
//   - Client: builds http.Clients, optionally routed through a SOCKS5 proxy,
//     with per-site headers and cookies injected into every request
//   - Fetcher: fetches one page with a per-site politeness limiter, a body
//     size limit and charset detection, and parses it into an HTML tree
//   - QuerySelectorAll and friends: a small CSS selector subset for pulling
//     values out of the parsed tree
//
// # Politeness
//
// Every Fetcher owns a token bucket from golang.org/x/time/rate that allows
// one request per configured delay. Concurrent callers sharing a Fetcher
// queue on the limiter, so the delay holds per site no matter how many
// candidates are evaluated at once. Waiting respects context cancellation.
//
// # Usage
//
//	client, _ := crawler.NewClient(30*time.Second)
//	f := crawler.NewFetcher(client.HTTPClient(), crawler.WithDelay(500*time.Millisecond))
//	doc, err := f.Fetch(ctx, "https://enamae.net/m/...")
//	for _, h2 := range crawler.QuerySelectorAll(doc.Root, "h2") { ... }
package crawler
