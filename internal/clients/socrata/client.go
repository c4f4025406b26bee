package socrata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platewatch/platewatch-backend/internal/pkg/httpx"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/utils"
)

// InspectionRecord mirrors one row of the external inspection feed. The feed
// delivers everything as strings; fields are converted and validated by the
// reconciler, not here.
type InspectionRecord struct {
	EntityID             string `json:"camis"`
	Name                 string `json:"dba"`
	Boro                 string `json:"boro"`
	Building             string `json:"building"`
	Street               string `json:"street"`
	Zipcode              string `json:"zipcode"`
	Phone                string `json:"phone"`
	Latitude             string `json:"latitude"`
	Longitude            string `json:"longitude"`
	Cuisine              string `json:"cuisine_description"`
	InspectionDate       string `json:"inspection_date"`
	Grade                string `json:"grade"`
	GradeDate            string `json:"grade_date"`
	InspectionType       string `json:"inspection_type"`
	CriticalFlag         string `json:"critical_flag"`
	ViolationCode        string `json:"violation_code"`
	ViolationDescription string `json:"violation_description"`
}

type Client interface {
	// FetchWindow pulls every record whose inspection date falls in the
	// trailing windowDays window. On a non-retriable failure the records
	// accumulated so far are returned alongside the error; the reconciler is
	// idempotent, so partial ingestion converges on a later run.
	FetchWindow(ctx context.Context, windowDays int) ([]InspectionRecord, error)
	// FetchByEntityIDs pulls every record for the given entity ids.
	FetchByEntityIDs(ctx context.Context, entityIDs []string) ([]InspectionRecord, error)
	// FetchAll pulls the entire dataset (backfill path).
	FetchAll(ctx context.Context) ([]InspectionRecord, error)
}

// maxRetryAfter caps how long a Retry-After hint can stretch one backoff.
const maxRetryAfter = 2 * time.Minute

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	appToken   string
	pageLimit  int
	maxRetries int
	retryDelay time.Duration
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := utils.GetEnv("FEED_URL", "https://data.cityofnewyork.us/resource/43nn-pn8j.json", log)
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("missing FEED_URL")
	}
	appToken := utils.GetEnv("FEED_APP_TOKEN", "", log)
	pageLimit := utils.GetEnvAsInt("FEED_PAGE_LIMIT", 50000, log)
	maxRetries := utils.GetEnvAsInt("FEED_MAX_RETRIES", 4, log)
	retryDelaySeconds := utils.GetEnvAsInt("FEED_RETRY_DELAY_SECONDS", 5, log)
	timeoutSeconds := utils.GetEnvAsInt("FEED_TIMEOUT_SECONDS", 60, log)

	return &client{
		log:        log.With("client", "SocrataClient"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		baseURL:    baseURL,
		appToken:   appToken,
		pageLimit:  pageLimit,
		maxRetries: maxRetries,
		retryDelay: time.Duration(retryDelaySeconds) * time.Second,
	}, nil
}

func (c *client) FetchWindow(ctx context.Context, windowDays int) ([]InspectionRecord, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -windowDays)
	where := fmt.Sprintf(
		"inspection_date between '%sT00:00:00.000' and '%sT23:59:59.999'",
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
	)
	c.log.Info("Fetching feed window", "window_days", windowDays)
	return c.fetchPages(ctx, where)
}

func (c *client) FetchByEntityIDs(ctx context.Context, entityIDs []string) ([]InspectionRecord, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	quoted := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		quoted = append(quoted, "'"+strings.ReplaceAll(id, "'", "''")+"'")
	}
	where := fmt.Sprintf("camis in(%s)", strings.Join(quoted, ","))
	c.log.Info("Fetching feed for entity set", "count", len(entityIDs))
	return c.fetchPages(ctx, where)
}

func (c *client) FetchAll(ctx context.Context) ([]InspectionRecord, error) {
	c.log.Info("Fetching full feed")
	return c.fetchPages(ctx, "")
}

// fetchPages walks the feed with limit/offset until a short or empty page.
// Pagination is strictly sequential: continuation depends on the size of the
// previous page.
func (c *client) fetchPages(ctx context.Context, where string) ([]InspectionRecord, error) {
	var results []InspectionRecord
	offset := 0

	for {
		page, err := c.fetchPage(ctx, where, offset)
		if err != nil {
			return results, err
		}
		if len(page) == 0 {
			break
		}
		results = append(results, page...)
		c.log.Info("Fetched feed page", "page_size", len(page), "total", len(results))
		if len(page) < c.pageLimit {
			break
		}
		offset += len(page)
	}

	c.log.Info("Feed fetch complete", "total", len(results))
	return results, nil
}

// fetchPage issues one page request with bounded retries and a fixed delay
// between attempts, stretched by a Retry-After hint when the feed sends one.
// A non-retriable client error aborts immediately.
func (c *client) fetchPage(ctx context.Context, where string, offset int) ([]InspectionRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		page, retryable, delay, err := c.doPage(ctx, where, offset)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.log.Warn("Feed page fetch failed, will retry",
			"offset", offset, "attempt", attempt, "max_attempts", c.maxRetries, "error", err)
		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("fetch page at offset %d: %w", offset, lastErr)
}

func (c *client) doPage(ctx context.Context, where string, offset int) ([]InspectionRecord, bool, time.Duration, error) {
	q := url.Values{}
	q.Set("$limit", strconv.Itoa(c.pageLimit))
	q.Set("$offset", strconv.Itoa(offset))
	if where != "" {
		q.Set("$where", where)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, false, 0, err
	}
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, httpx.IsRetryableError(err), c.retryDelay, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &httpx.StatusError{Status: resp.StatusCode, URL: c.baseURL}
		delay := httpx.RetryAfterDuration(resp, c.retryDelay, maxRetryAfter)
		return nil, httpx.IsRetryableHTTPStatus(resp.StatusCode), delay, statusErr
	}

	var page []InspectionRecord
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, false, 0, fmt.Errorf("decode feed page: %w", err)
	}
	return page, false, 0, nil
}
