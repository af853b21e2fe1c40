package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/robalyx/stylist/pkg/utils"
	"go.uber.org/zap"
)

// currentWeather is the subset of the OpenWeather current-weather response we read.
type currentWeather struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Client fetches current conditions from the OpenWeather API.
type Client struct {
	http    *client.Client
	baseURL string
	apiKey  string
	retry   utils.RetryOptions
	logger  *zap.Logger
}

// NewClient creates an OpenWeather client.
func NewClient(httpClient *client.Client, cfg *config.Weather, retry utils.RetryOptions, logger *zap.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		retry:   retry,
		logger:  logger.Named("weather"),
	}
}

// Weather returns a summary such as "The weather in Paris is 18°C with light rain.".
// Every failure wraps ErrUnavailable.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ErrMissingAPIKey)
	}

	summary, err := utils.WithRetry(ctx, func() (string, error) {
		return c.fetch(ctx, lat, lon)
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.logger.Debug("Fetched weather", zap.String("summary", summary))
	return summary, nil
}

// fetch performs a single lookup. Client errors are not retried.
func (c *Client) fetch(ctx context.Context, lat, lon float64) (string, error) {
	resp, err := c.http.NewRequest().
		Method(http.MethodGet).
		URL(c.baseURL+"/data/2.5/weather").
		Query("lat", strconv.FormatFloat(lat, 'f', -1, 64)).
		Query("lon", strconv.FormatFloat(lon, 'f', -1, 64)).
		Query("appid", c.apiKey).
		Query("units", "metric").
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", utils.Permanent(err)
		}
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read weather response: %w", err)
	}

	var data currentWeather
	if err := sonic.Unmarshal(body, &data); err != nil {
		return "", utils.Permanent(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}

	if len(data.Weather) == 0 || data.Weather[0].Description == "" {
		return "", utils.Permanent(fmt.Errorf("%w: missing description", ErrMalformedResponse))
	}

	return Summary(data.Name, data.Main.Temp, data.Weather[0].Description), nil
}

// Summary formats a location, temperature and condition description.
// The temperature is printed as reported, without trailing zeros.
func Summary(name string, temp float64, description string) string {
	return fmt.Sprintf("The weather in %s is %s°C with %s.", name, strconv.FormatFloat(temp, 'f', -1, 64), description)
}
