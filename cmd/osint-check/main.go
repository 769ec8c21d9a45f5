// osint-check probes one or more domains with the same checks the scan
// endpoint runs, without touching the vault. Useful for verifying network
// reachability and eyeballing what a vendor scan would report.
//
// Usage: osint-check [-name "Vendor Name"] [-workers 4] domain [domain...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BriarPort/TILT/modules/certcheck"
	"github.com/BriarPort/TILT/modules/dmarc"
	"github.com/BriarPort/TILT/modules/ransomwatch"
)

type probeResult struct {
	Domain     string           `json:"domain"`
	Cert       certcheck.Result `json:"cert"`
	CertError  string           `json:"cert_error,omitempty"`
	DMARC      dmarc.Result     `json:"dmarc"`
	DMARCError string           `json:"dmarc_error,omitempty"`
	Ransomware *bool            `json:"ransomware,omitempty"`
}

// probePool fans domains out to a fixed number of workers.
type probePool struct {
	tasks   chan string
	results chan probeResult
	timeout time.Duration
	posts   []ransomwatch.Post
	name    string
	wg      sync.WaitGroup
}

func newProbePool(workers int, timeout time.Duration, posts []ransomwatch.Post, name string) *probePool {
	p := &probePool{
		tasks:   make(chan string, workers),
		results: make(chan probeResult, workers),
		timeout: timeout,
		posts:   posts,
		name:    name,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *probePool) worker() {
	defer p.wg.Done()
	for domain := range p.tasks {
		p.results <- p.probe(domain)
	}
}

func (p *probePool) probe(domain string) probeResult {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	result := probeResult{Domain: domain}

	cert, err := certcheck.Check(ctx, domain, certcheck.CheckConfig{Timeout: p.timeout})
	result.Cert = cert
	if err != nil {
		result.CertError = err.Error()
	}

	record, err := dmarc.Check(ctx, domain, dmarc.CheckConfig{Timeout: p.timeout})
	result.DMARC = record
	if err != nil {
		result.DMARCError = err.Error()
	}

	if p.posts != nil {
		hit := ransomwatch.Match(p.posts, p.name, domain)
		result.Ransomware = &hit
	}
	return result
}

func main() {
	name := flag.String("name", "", "vendor name to match against the ransomware feed")
	workers := flag.Int("workers", 4, "concurrent probes")
	timeout := flag.Duration("timeout", 10*time.Second, "per-check timeout")
	skipFeed := flag.Bool("skip-feed", false, "skip the ransomware feed fetch")
	flag.Parse()

	domains := flag.Args()
	if len(domains) == 0 {
		fmt.Fprintln(os.Stderr, "usage: osint-check [-name vendor] [-workers n] domain [domain...]")
		os.Exit(2)
	}

	var posts []ransomwatch.Post
	if !*skipFeed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		fetched, err := ransomwatch.NewClient("", nil).FetchPosts(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ransomware feed unavailable: %v\n", err)
		} else {
			posts = fetched
		}
	}

	pool := newProbePool(*workers, *timeout, posts, *name)
	go func() {
		for _, domain := range domains {
			pool.tasks <- domain
		}
		close(pool.tasks)
		pool.wg.Wait()
		close(pool.results)
	}()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	exitCode := 0
	for result := range pool.results {
		if err := encoder.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
