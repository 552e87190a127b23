package pnw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/config"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.politicsandwar.com/graphql"

// nationsPerPage is the page size for the nations query; the API caps a
// page at 500 records.
const nationsPerPage = 500

// maxNationPages bounds a range query so a misconfigured score window cannot
// walk the entire nation table.
const maxNationPages = 10

// nationFields is the selection set shared by every nations query
const nationFields = `
	id
	nation_name
	leader_name
	alliance_id
	alliance { id name }
	score
	num_cities
	color
	soldiers
	tanks
	aircraft
	ships
	spies
	money
	coal
	oil
	uranium
	iron
	bauxite
	lead
	gasoline
	munitions
	steel
	aluminum
	food
	vacation_mode_turns
	beige_turns
	last_active
	cities { id infrastructure }
	wars { id date att_id def_id war_type turns_left }`

// Client talks to the Politics & War GraphQL API
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	retry        config.RetryConfig
	apiCallCount int64
	apiCallMutex sync.Mutex
}

// NewClient creates a new API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: config.APIRequestTimeout,
		},
		retry: config.DefaultResilienceConfig.APIRequest,
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// ResetAPICallCount resets the API call counter to zero
func (c *Client) ResetAPICallCount() {
	c.apiCallMutex.Lock()
	c.apiCallCount = 0
	c.apiCallMutex.Unlock()
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// runQuery executes a GraphQL query with retry and backoff, decoding the
// data payload into out.
func (c *Client) runQuery(ctx context.Context, query string, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	url := fmt.Sprintf("%s?api_key=%s", c.baseURL, c.apiKey)

	var lastErr error
	wait := c.retry.InitialWait
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Debug().
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying API request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait = time.Duration(float64(wait) * c.retry.Multiplier)
			if wait > c.retry.MaxWait {
				wait = c.retry.MaxWait
			}
		}

		lastErr = c.doRequest(ctx, url, body, out)
		if lastErr == nil {
			return nil
		}

		log.Debug().
			Err(lastErr).
			Int("attempt", attempt).
			Msg("API request failed")
	}

	return fmt.Errorf("API request failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	c.IncrementAPICall()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

type nationsEnvelope struct {
	Nations app.NationsPage `json:"nations"`
}

// GetNation fetches a single nation by ID
func (c *Client) GetNation(ctx context.Context, nationID int) (*app.Nation, error) {
	query := fmt.Sprintf(`{ nations(id: [%d], first: 1) { data {%s
	} } }`, nationID, nationFields)

	log.Debug().Int("nation_id", nationID).Msg("Fetching nation")

	var envelope nationsEnvelope
	if err := c.runQuery(ctx, query, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Nations.Data) == 0 {
		return nil, fmt.Errorf("nation %d not found", nationID)
	}

	nation := envelope.Nations.Data[0]
	log.Debug().
		Int("nation_id", nation.ID).
		Str("nation", nation.Name).
		Float64("score", nation.Score).
		Msg("Successfully fetched nation")

	return &nation, nil
}

// GetNationsInRange fetches every nation whose score falls inside
// [minScore, maxScore], walking the paginated nations query. The result is
// deduplicated by nation ID and capped at maxNationPages pages.
func (c *Client) GetNationsInRange(ctx context.Context, minScore, maxScore float64) ([]app.Nation, error) {
	log.Debug().
		Float64("min_score", minScore).
		Float64("max_score", maxScore).
		Msg("Fetching nations in score range")

	seen := make(map[int]bool)
	var nations []app.Nation

	for page := 1; page <= maxNationPages; page++ {
		query := fmt.Sprintf(`{ nations(min_score: %.2f, max_score: %.2f, first: %d, page: %d, vmode: false) { data {%s
	} paginatorInfo { hasMorePages currentPage } } }`, minScore, maxScore, nationsPerPage, page, nationFields)

		var envelope nationsEnvelope
		if err := c.runQuery(ctx, query, &envelope); err != nil {
			return nil, fmt.Errorf("failed to fetch nations page %d: %w", page, err)
		}

		for _, nation := range envelope.Nations.Data {
			if !seen[nation.ID] {
				seen[nation.ID] = true
				nations = append(nations, nation)
			}
		}

		if !envelope.Nations.PaginatorInfo.HasMorePages {
			break
		}
	}

	log.Debug().
		Int("nations", len(nations)).
		Msg("Successfully fetched candidate nations")

	return nations, nil
}

type tradePricesEnvelope struct {
	TopTradeInfo struct {
		Resources []app.TradePrice `json:"resources"`
	} `json:"top_trade_info"`
}

// GetTradePrices fetches the current average market price per resource
func (c *Client) GetTradePrices(ctx context.Context) (map[string]float64, error) {
	query := `{ top_trade_info { resources { resource average_price } } }`

	log.Debug().Msg("Fetching trade prices")

	var envelope tradePricesEnvelope
	if err := c.runQuery(ctx, query, &envelope); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(envelope.TopTradeInfo.Resources))
	for _, price := range envelope.TopTradeInfo.Resources {
		prices[price.Resource] = price.AveragePrice
	}

	log.Debug().
		Int("resources", len(prices)).
		Msg("Successfully fetched trade prices")

	return prices, nil
}
