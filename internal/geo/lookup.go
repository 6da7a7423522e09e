package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/unihaven/internal/breaker"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultALSURL is the Hong Kong Address Lookup Service endpoint.
const DefaultALSURL = "https://www.als.ogcio.gov.hk/lookup"

type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	GeoAddress string  `json:"geo_address"`
}

// ALSClient queries the Address Lookup Service for the best match of a building name.
type ALSClient struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewALSClient(baseURL string, logger *zap.Logger) *ALSClient {
	if baseURL == "" {
		baseURL = DefaultALSURL
	}
	return &ALSClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cb:      breaker.New("geocoder", logger),
		logger:  logger,
	}
}

type alsResponse struct {
	SuggestedAddress []struct {
		Address struct {
			PremisesAddress struct {
				GeoAddress            string `json:"GeoAddress"`
				GeospatialInformation struct {
					Latitude  coordinate `json:"Latitude"`
					Longitude coordinate `json:"Longitude"`
				} `json:"GeospatialInformation"`
			} `json:"PremisesAddress"`
		} `json:"Address"`
	} `json:"SuggestedAddress"`
}

// coordinate accepts both JSON numbers and numeric strings.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse coordinate %q: %w", raw, err)
	}
	c.value = v
	c.set = true
	return nil
}

// Lookup returns (nil, nil) when the service knows no such building.
func (c *ALSClient) Lookup(ctx context.Context, building string) (*Location, error) {
	building = strings.TrimSpace(building)
	if building == "" {
		return nil, nil
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, building)
	})
	if err != nil {
		c.logger.Error("Address lookup failed", zap.String("building", building), zap.Error(err))
		return nil, fmt.Errorf("lookup address: %w", err)
	}

	loc, _ := result.(*Location)
	return loc, nil
}

func (c *ALSClient) fetch(ctx context.Context, building string) (*Location, error) {
	params := url.Values{}
	params.Set("q", building)
	params.Set("n", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &breaker.StatusError{Service: "address lookup", StatusCode: resp.StatusCode}
	}

	var body alsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(body.SuggestedAddress) == 0 {
		return nil, nil
	}

	premises := body.SuggestedAddress[0].Address.PremisesAddress
	geoInfo := premises.GeospatialInformation
	if !geoInfo.Latitude.set || !geoInfo.Longitude.set {
		return nil, nil
	}

	return &Location{
		Latitude:   geoInfo.Latitude.value,
		Longitude:  geoInfo.Longitude.value,
		GeoAddress: premises.GeoAddress,
	}, nil
}
