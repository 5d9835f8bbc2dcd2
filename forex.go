package cgt

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cgt/date"
)

// this file retrieves historical fiat exchange rates, used to back-fill
// local-fiat amounts when an exchange log only carries USD values.

// maxChunkDays caps the date span of a single rates request.
const maxChunkDays = 360

// diskCache implements a simple disk cache for HTTP responses.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// diskCache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache.
func (c *diskCache) put(key string, resp *http.Response) error {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// daily returns a client with a disk cache expiring every day.
func daily() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

const frankfurterURL = "https://api.frankfurter.app"

// RateProvider queries daily fiat exchange rates from a public JSON rates
// API, in chunks, filling market gaps (weekends, holidays) forward with the
// last known rate.
type RateProvider struct {
	client  *http.Client
	baseURL string
}

// NewRateProvider creates a provider with a daily-expiring disk cache.
func NewRateProvider() *RateProvider {
	return &RateProvider{client: daily(), baseURL: frankfurterURL}
}

// Query returns one rate per day of the range for a six-letter fiat pair such
// as "audusd". Days before the first published rate are absent from the result.
func (p *RateProvider) Query(pair string, from, to date.Date) (map[date.Date]float64, error) {
	if len(pair) != 6 {
		return nil, fmt.Errorf("invalid fiat pair %q, want six letters like audusd", pair)
	}
	base, quote := strings.ToUpper(pair[:3]), strings.ToUpper(pair[3:])

	published := make(map[date.Date]float64)
	for start := from; !start.After(to); start = start.Add(maxChunkDays + 1) {
		end := start.Add(maxChunkDays)
		if end.After(to) {
			end = to
		}
		if err := p.queryChunk(base, quote, start, end, published); err != nil {
			return nil, err
		}
	}

	// Fill gaps forward with the last known rate.
	rates := make(map[date.Date]float64, to.Sub(from)+1)
	var last float64
	for on := from; !on.After(to); on = on.Add(1) {
		if rate, ok := published[on]; ok {
			last = rate
		}
		if last > 0 {
			rates[on] = last
		} else {
			log.Printf("no %s%s rate published on or before %s", base, quote, on)
		}
	}
	return rates, nil
}

// queryChunk fetches one date-range request and merges published rates into
// the accumulator.
func (p *RateProvider) queryChunk(base, quote string, from, to date.Date, into map[date.Date]float64) error {
	url := fmt.Sprintf("%s/%s..%s?from=%s&to=%s", p.baseURL, from, to, base, quote)
	resp, err := p.client.Get(url)
	if err != nil {
		return fmt.Errorf("cannot query rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rates query %s returned %s", url, resp.Status)
	}

	var jobj interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return fmt.Errorf("cannot parse rates response: %w", err)
	}
	jval, err := jsonpath.Get("$.rates", jobj)
	if err != nil {
		return fmt.Errorf("cannot find rates in response: %w", err)
	}
	days, ok := jval.(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected rates shape %T", jval)
	}
	for day, v := range days {
		on, err := date.Parse(day)
		if err != nil {
			return fmt.Errorf("unexpected rate date %q: %w", day, err)
		}
		values, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if rate, ok := values[quote].(float64); ok {
			into[on] = rate
		}
	}
	return nil
}
