package portalclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/internal/config"
	"github.com/oliverpayne/rotawatch/pkg/core/model"
)

// Fetcher produces a fresh shift record set from the scheduling portal.
// Implementations may take tens of seconds to minutes; failures come back
// as errors and must never crash the caller.
type Fetcher interface {
	FetchShifts(ctx context.Context, filterName string) ([]model.ShiftRecord, error)
}

// Client scrapes the staff portal's schedule endpoint. The portal exposes a
// staff-side schedule feed behind a form login; the session is cookie based
// and stateful, which is why refreshes must never run concurrently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      config.PortalCredentials
	cutoff     time.Weekday
	logger     *zap.Logger
}

// scheduleRow is one row of the portal's schedule feed.
type scheduleRow struct {
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Role         string `json:"role"`
	ShiftType    string `json:"shiftType"`
}

type schedulePage struct {
	Rows    []scheduleRow `json:"rows"`
	HasMore bool          `json:"hasMore"`
	Offset  int           `json:"nextOffset"`
}

// NewClient creates a portal client. cutoff is the weekday the following
// week's rota is published on; it bounds the scrape window.
func NewClient(cfg *config.Config, creds config.PortalCredentials, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Jar: jar, Timeout: cfg.RequestTimeout()},
		baseURL:    strings.TrimRight(cfg.PortalBaseURL, "/"),
		creds:      creds,
		cutoff:     cfg.Cutoff(),
		logger:     logger,
	}, nil
}

// FetchShifts logs in and pulls every shift in the scrape window. When
// filterName is non-empty only records whose staff name contains it are
// kept. Duplicate rows (the feed pages overlap) are dropped on the
// name|date|start|end|role key.
func (c *Client) FetchShifts(ctx context.Context, filterName string) ([]model.ShiftRecord, error) {
	if err := c.login(ctx); err != nil {
		return nil, fmt.Errorf("portal login failed: %w", err)
	}

	from, to := ScrapeWindow(time.Now(), c.cutoff)
	c.logger.Info("fetching portal schedule",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")),
		zap.String("filter", filterName))

	seen := make(map[string]bool)
	var shifts []model.ShiftRecord
	offset := 0
	for {
		page, err := c.fetchPage(ctx, from, to, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			rec := model.ShiftRecord{
				StaffName: strings.TrimSpace(row.EmployeeName),
				DateLabel: strings.TrimSpace(row.Date),
				Start:     strings.TrimSpace(row.StartTime),
				End:       strings.TrimSpace(row.EndTime),
				Role:      strings.TrimSpace(row.Role),
				Type:      strings.TrimSpace(row.ShiftType),
			}
			if filterName != "" && !strings.Contains(strings.ToLower(rec.StaffName), strings.ToLower(filterName)) {
				continue
			}
			if seen[rec.Key()] {
				continue
			}
			seen[rec.Key()] = true
			shifts = append(shifts, rec)
		}
		if !page.HasMore {
			break
		}
		offset = page.Offset
	}

	c.logger.Info("portal fetch complete", zap.Int("shifts", len(shifts)))
	return shifts, nil
}

// login performs the portal's two-step form login: the email first to
// discover the login provider, then the password.
func (c *Client) login(ctx context.Context) error {
	if err := c.postForm(ctx, "/login/providers", url.Values{"email": {c.creds.Email}}); err != nil {
		return fmt.Errorf("provider lookup: %w", err)
	}
	if err := c.postForm(ctx, "/login", url.Values{
		"email":    {c.creds.Email},
		"password": {c.creds.Password},
	}); err != nil {
		return fmt.Errorf("credential submit: %w", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("portal returned %s for %s", resp.Status, path)
	}
	return nil
}

func (c *Client) fetchPage(ctx context.Context, from, to time.Time, offset int) (*schedulePage, error) {
	q := url.Values{
		"dateOption": {"week"},
		"fromDate":   {from.Format("2006-01-02")},
		"toDate":     {to.Format("2006-01-02")},
		"offset":     {fmt.Sprint(offset)},
		"filter":     {"colleagues"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/staffPortal/schedule?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schedule fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule fetch returned %s", resp.Status)
	}

	var page schedulePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		// A decode failure usually means the site structure changed.
		return nil, fmt.Errorf("failed to decode schedule page: %w", err)
	}
	return &page, nil
}
