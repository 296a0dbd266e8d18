package indexval

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/config"
)

// Client fetches consumer price index values from the statistics bureau's
// SOAP endpoint. Index-linked contracts consume the value as an opaque
// number; no adjustment math happens here.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new index-value client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.IndexURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for the latest index values
func (c *Client) buildSOAPRequest() string {
	fromDate := time.Now().AddDate(0, -2, 0).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetIndex xmlns="http://cbs.gov.il/">
					<fromDate>%s</fromDate>
					<toDate>%s</toDate>
				</GetIndex>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest sends the SOAP request to the index service
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://cbs.gov.il/GetIndex")

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

	c.log.Debugf("Index service XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the latest index value from the response
func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	points := doc.FindElements("//IndexData/Point")
	if len(points) == 0 {
		return 0, fmt.Errorf("no index data found in XML")
	}

	// Points come newest first
	latest := points[0]
	valueElement := latest.FindElement("./Value")
	if valueElement == nil {
		return 0, fmt.Errorf("value element not found in XML")
	}

	var value float64
	if _, err := fmt.Sscanf(valueElement.Text(), "%f", &value); err != nil {
		return 0, fmt.Errorf("failed to parse index value: %v", err)
	}

	return value, nil
}

// GetIndexValue retrieves the latest published index value
func (c *Client) GetIndexValue() (float64, error) {
	soapRequest := c.buildSOAPRequest()
	body, err := c.sendRequest(soapRequest)
	if err != nil {
		return 0, err
	}

	value, err := c.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved index value: %.2f", value)
	return value, nil
}
