package boc

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/kraftmortgages/calcserv/internal/models"
)

// Fallback when the feed has never been reached. Matches the regulatory
// minimum qualifying rate.
const defaultPostedRatePct = 5.25

// Client handles integration with the Bank of Canada Valet rate feed.
// It keeps the last successfully retrieved rate so callers always get a
// value even when the feed is down.
type Client struct {
	url    string
	margin float64
	client *http.Client
	log    *logrus.Logger

	mu   sync.RWMutex
	last *models.PostedRate
}

// NewClient initializes a new Bank of Canada client. url is the XML
// observations endpoint for the conventional 5-year posted rate series;
// margin is added on top of the published rate.
func NewClient(url string, margin float64, log *logrus.Logger) *Client {
	return &Client{
		url:    url,
		margin: margin,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("BoC XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the newest observation value from a Valet
// observations document.
func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	observations := doc.FindElements("//observations/o")
	if len(observations) == 0 {
		return 0, fmt.Errorf("no observations found in XML")
	}

	// Observations arrive oldest first; take the newest.
	latest := observations[len(observations)-1]
	value := latest.FindElement("./v")
	if value == nil {
		return 0, fmt.Errorf("value element not found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(value.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %v", err)
	}

	return rate, nil
}

// Refresh retrieves the current posted rate from the feed and stores it.
// Intended to run on a schedule.
func (c *Client) Refresh() error {
	body, err := c.fetch()
	if err != nil {
		return err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return err
	}

	rate += c.margin

	c.mu.Lock()
	c.last = &models.PostedRate{RatePct: rate, RetrievedAt: time.Now()}
	c.mu.Unlock()

	c.log.Infof("Retrieved posted rate: %.2f%% (including %.2f%% margin)", rate, c.margin)
	return nil
}

// PostedRate returns the most recently retrieved rate, or the regulatory
// floor when the feed has never responded.
func (c *Client) PostedRate() models.PostedRate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil {
		return models.PostedRate{RatePct: defaultPostedRatePct}
	}
	return *c.last
}
