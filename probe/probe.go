// Package probe smoke-tests a running pumpfun-api the way an operator would by hand.
package probe

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pumpfun-api/http"
	"pumpfun-api/model"
)

const invalidMint = "invalid"

type Check struct {
	Name   string
	Passed bool
	Detail string
}

type Report struct {
	Checks  []Check
	Records []*model.TokenRecord
}

func (r *Report) add(name string, err error) {
	c := Check{Name: name, Passed: err == nil}
	if err != nil {
		c.Detail = err.Error()
	}
	r.Checks = append(r.Checks, c)
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

type Prober struct {
	baseURL string
	client  *http.Client
	logger  logrus.FieldLogger
}

func New(baseURL string, client *http.Client, logger logrus.FieldLogger) *Prober {
	return &Prober{baseURL: baseURL, client: client, logger: logger}
}

// Run checks health, the documentation endpoint, every mint and the rejection of an
// invalid mint. An unreachable API aborts the run with an error.
func (p *Prober) Run(ctx context.Context, mints []string) (*Report, error) {
	report := &Report{}

	var health model.HealthResponse
	if err := p.getJSON(ctx, "/health", &health); err != nil {
		report.add("health", err)
		return report, errors.Wrapf(err, "health check of %s failed, is the server running?", p.baseURL)
	}
	if health.Status != "ok" {
		report.add("health", errors.Errorf("unexpected status %q", health.Status))
	} else {
		report.add("health", nil)
	}

	var docs map[string]interface{}
	report.add("documentation", p.getJSON(ctx, "/", &docs))

	for i, doneCh := range p.getRecordsAsync(ctx, mints) {
		result := <-doneCh
		report.add("token "+mints[i], result.err)
		if result.err == nil {
			report.Records = append(report.Records, result.record)
		}
	}

	report.add("invalid mint rejected", p.checkInvalidMint(ctx))
	return report, nil
}

type recordResult struct {
	record *model.TokenRecord
	err    error
}

// Return a slice of waiting chans, each of them represents a pending request
func (p *Prober) getRecordsAsync(ctx context.Context, mints []string) []chan recordResult {
	// Use slice to hold the waiting chans in order to keep requested order
	waitingChans := make([]chan recordResult, 0, len(mints))
	for _, mint := range mints {
		doneCh := make(chan recordResult, 1)
		waitingChans = append(waitingChans, doneCh)
		go func(mint string) {
			var record model.TokenRecord
			err := p.getJSON(ctx, "/api/pumpfun/"+url.PathEscape(mint), &record)
			if err != nil {
				p.logger.WithError(err).Warnf("Failed to fetch %s", mint)
				doneCh <- recordResult{err: err}
				return
			}
			p.logger.WithFields(logrus.Fields{
				"symbol":  record.Symbol,
				"holders": record.Holders.Source,
			}).Debugf("Fetched %s", mint)
			doneCh <- recordResult{record: &record}
		}(mint)
	}
	return waitingChans
}

func (p *Prober) checkInvalidMint(ctx context.Context) error {
	_, err := p.client.Get(ctx, p.baseURL+"/api/pumpfun/"+invalidMint, nil, nil)
	if err == nil {
		return errors.New("should have returned 400 error")
	}
	var respErr *http.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}
	if respErr.StatusCode != 400 {
		return errors.Errorf("expected HTTP 400, got %s", respErr.Status)
	}
	var body model.ErrorResponse
	if err := json.Unmarshal(respErr.Body, &body); err != nil {
		return errors.Wrap(err, "decode error body")
	}
	p.logger.Debugf("Invalid mint rejected: %s", body.Message)
	return nil
}

func (p *Prober) getJSON(ctx context.Context, path string, v interface{}) error {
	respBytes, err := p.client.Get(ctx, p.baseURL+path, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBytes, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
