package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rasnes/inegi-duckdb-framework/config"
)

// redactedToken replaces the access token wherever a URL is logged or returned.
const redactedToken = "***"

type InegiClient struct {
	HTTPClient  *retryablehttp.Client
	Logger      *slog.Logger
	InegiConfig *config.InegiConfig
	inegiToken  string
}

func NewInegiClient(config *config.Config, logger *slog.Logger) (*InegiClient, error) {
	inegiToken := os.Getenv("INEGI_TOKEN")
	if inegiToken == "" {
		return nil, fmt.Errorf("INEGI_TOKEN env variable is not set")
	}

	client := &InegiClient{
		HTTPClient:  retryablehttp.NewClient(),
		Logger:      logger,
		InegiConfig: &config.Inegi,
		inegiToken:  inegiToken,
	}

	client.HTTPClient.RetryWaitMin = config.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = config.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = config.Extract.Backoff.RetryMax
	client.HTTPClient.Logger = &requestLogger{logger: logger, secret: inegiToken}
	// Hand back the last response instead of a generic "giving up" error, so that the
	// status and body of a failed request can be reported.
	client.HTTPClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if config.Extract.Timeout > 0 {
		client.HTTPClient.HTTPClient.Timeout = config.Extract.Timeout
	}

	return client, nil
}

// BuildURL returns the BISE indicator endpoint for the given identifiers:
// {base}/INDICATOR/{ids}/{language}/{geography}/{latest}/{source}/{version}/{token}?type=json
func (c *InegiClient) BuildURL(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("at least one indicator id is required")
	}
	if c.InegiConfig.BaseURL == "" {
		return "", fmt.Errorf("inegi.base_url is not set")
	}

	parsedURL, err := url.Parse(c.InegiConfig.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	parsedURL = parsedURL.JoinPath(
		"INDICATOR",
		strings.Join(ids, ","),
		c.InegiConfig.Language,
		c.InegiConfig.Geography,
		strconv.FormatBool(c.InegiConfig.Latest),
		c.InegiConfig.Source,
		c.InegiConfig.Version,
		c.inegiToken,
	)

	query := parsedURL.Query()
	query.Set("type", "json")
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// FetchEnvelope requests all indicators in one call and returns the decoded envelope.
// Every failure is a *FetchError, and errors.Is(err, ErrNoEnvelope) holds for all of them.
func (c *InegiClient) FetchEnvelope(ids []string) (*Envelope, error) {
	rawURL, err := c.BuildURL(ids)
	if err != nil {
		c.Logger.Error("Could not build INEGI request", "error", err)
		return nil, &FetchError{Kind: KindRequest, Err: err}
	}

	c.Logger.Info("Requesting INEGI indicators", "count", len(ids))
	body, resp, err := c.get(rawURL)
	if err != nil {
		err = c.redact(err)
		c.Logger.Error("Connection error while requesting INEGI indicators, check network access", "error", err)
		return nil, &FetchError{Kind: KindTransport, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logErrorBody(resp.StatusCode, body)
		return nil, &FetchError{Kind: KindStatus, StatusCode: resp.StatusCode, Body: body}
	}

	envelope, err := ParseEnvelope(body)
	if err != nil {
		c.Logger.Error("INEGI response could not be used", "error", err)
		return nil, err
	}

	c.Logger.Info("INEGI response received", "series", len(envelope.Series))
	return envelope, nil
}

// logErrorBody reports a non-200 reply, pretty-printing the body when it is JSON.
func (c *InegiClient) logErrorBody(status int, body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		c.Logger.Error("INEGI request failed, response is not JSON", "status", status, "body", string(body))
		return
	}
	c.Logger.Error("INEGI request failed", "status", status, "body", pretty.String())
}

// get fetches the URL and returns the body and response
func (c *InegiClient) get(url string) (body []byte, resp *http.Response, err error) {
	resp, err = c.HTTPClient.Get(url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}

// redact returns err with the token removed from its message. A *url.Error keeps its type,
// with the token replaced in its URL.
func (c *InegiClient) redact(err error) error {
	if c.inegiToken == "" || !strings.Contains(err.Error(), c.inegiToken) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && error(urlErr) == err {
		redacted := *urlErr
		redacted.URL = strings.ReplaceAll(urlErr.URL, c.inegiToken, redactedToken)
		if !strings.Contains(redacted.Error(), c.inegiToken) {
			return &redacted
		}
	}
	return errors.New(strings.ReplaceAll(err.Error(), c.inegiToken, redactedToken))
}

// requestLogger hands retryablehttp's request logs to slog with the token masked, since
// the token is part of the request path.
type requestLogger struct {
	logger *slog.Logger
	secret string
}

var _ retryablehttp.LeveledLogger = (*requestLogger)(nil)

func (l *requestLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.scrub(keysAndValues)...)
}

func (l *requestLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.scrub(keysAndValues)...)
}

func (l *requestLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.scrub(keysAndValues)...)
}

func (l *requestLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.scrub(keysAndValues)...)
}

func (l *requestLogger) scrub(keysAndValues []interface{}) []interface{} {
	if l.secret == "" {
		return keysAndValues
	}
	scrubbed := make([]interface{}, len(keysAndValues))
	for i, v := range keysAndValues {
		switch v := v.(type) {
		case string:
			scrubbed[i] = strings.ReplaceAll(v, l.secret, redactedToken)
		case error:
			scrubbed[i] = strings.ReplaceAll(v.Error(), l.secret, redactedToken)
		case fmt.Stringer:
			scrubbed[i] = strings.ReplaceAll(v.String(), l.secret, redactedToken)
		default:
			scrubbed[i] = v
		}
	}
	return scrubbed
}
