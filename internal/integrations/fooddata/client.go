package fooddata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redmonkez12/fitness-api/internal/config"
)

const (
	searchPageSize  = 10
	defaultQuantity = 100 // grams

	nutrientEnergy   = "Energy"
	nutrientCarbs    = "Carbohydrate, by difference"
	nutrientProtein  = "Protein"
	nutrientTotalFat = "Total lipid (fat)"
)

var (
	ErrUpstream        = errors.New("food database request failed")
	ErrProductNotFound = errors.New("product not found")
)

// queryPattern splits "150 g chicken breast" into quantity, unit and name
var queryPattern = regexp.MustCompile(`(?i)^(\d+)?\s*(?:(grams|gm|g|mg|kg)\b)?\s*(.*)$`)

// ProductSummary is one search hit
type ProductSummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Product holds the nutrients per 100 g
type Product struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
}

type searchResponse struct {
	Foods *[]struct {
		FdcID       int64  `json:"fdcId"`
		Description string `json:"description"`
	} `json:"foods"`
}

type foodResponse struct {
	Description   string `json:"description"`
	FoodNutrients []struct {
		Amount   float64 `json:"amount"`
		Nutrient struct {
			Name string `json:"name"`
		} `json:"nutrient"`
	} `json:"foodNutrients"`
}

// ParseQuery extracts the food name and an optional gram quantity from free text.
// The quantity defaults to 100.
func ParseQuery(query string) (name string, quantity int) {
	query = strings.TrimSpace(query)
	quantity = defaultQuantity

	m := queryPattern.FindStringSubmatch(query)
	if m == nil {
		return query, quantity
	}
	if m[1] != "" {
		if q, err := strconv.Atoi(m[1]); err == nil {
			quantity = q
		}
	}
	return strings.TrimSpace(m[3]), quantity
}

// Client talks to the USDA FoodData Central API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(cfg config.FoodDataConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Search returns up to ten products matching the food name in query
func (c *Client) Search(ctx context.Context, query string) ([]ProductSummary, error) {
	name, _ := ParseQuery(query)

	values := url.Values{}
	values.Set("api_key", c.apiKey)
	values.Set("query", name)
	values.Set("pageSize", strconv.Itoa(searchPageSize))

	var body searchResponse
	if err := c.get(ctx, "/foods/search?"+values.Encode(), &body); err != nil {
		return nil, err
	}
	if body.Foods == nil {
		return nil, fmt.Errorf("%w: response has no foods", ErrUpstream)
	}

	products := make([]ProductSummary, 0, len(*body.Foods))
	for _, f := range *body.Foods {
		description := f.Description
		if description == "" {
			description = "Unknown"
		}
		products = append(products, ProductSummary{
			Code: strconv.FormatInt(f.FdcID, 10),
			Name: description,
		})
	}
	return products, nil
}

// Product loads the nutrients of one product by its FoodData Central id
func (c *Client) Product(ctx context.Context, code string) (*Product, error) {
	values := url.Values{}
	values.Set("api_key", c.apiKey)

	var body foodResponse
	if err := c.get(ctx, "/food/"+url.PathEscape(code)+"?"+values.Encode(), &body); err != nil {
		return nil, err
	}
	if body.Description == "" {
		return nil, ErrProductNotFound
	}

	nutrients := make(map[string]float64, len(body.FoodNutrients))
	for _, n := range body.FoodNutrients {
		if n.Nutrient.Name != "" {
			nutrients[n.Nutrient.Name] = n.Amount
		}
	}

	return &Product{
		Code:     code,
		Name:     body.Description,
		Calories: nutrients[nutrientEnergy],
		Carbs:    nutrients[nutrientCarbs],
		Proteins: nutrients[nutrientProtein],
		Fats:     nutrients[nutrientTotalFat],
	}, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrProductNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
