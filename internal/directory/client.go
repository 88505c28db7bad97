package directory

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/logging"
)

// Client is a Directory backed by the remote hours service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the service at baseURL. Requests carry
// "Authorization: Token <token>" and are bounded by timeout.
func NewClient(ctx context.Context, baseURL, token string, timeout time.Duration) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Token"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = timeout
	return NewClientWithHTTP(baseURL, httpClient)
}

// NewClientWithHTTP returns a client that sends requests with httpClient as is.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type hourEntryDTO struct {
	ID      int64     `json:"id,omitempty"`
	User    int64     `json:"user,omitempty"`
	Project int64     `json:"project"`
	Date    string    `json:"date"`
	Hours   flexHours `json:"hours"`
	Note    string    `json:"note"`
}

type projectDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Client        string  `json:"client"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	AssignedUsers []int64 `json:"assigned_users"`
}

type userDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  *bool  `json:"is_active"`
}

type userProjectsDTO struct {
	User     userDTO      `json:"user"`
	Projects []projectDTO `json:"projects"`
}

type errorDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// flexHours decodes hours sent as a decimal string or a number. Anything
// that does not parse decodes as zero.
type flexHours decimal.Decimal

func (h *flexHours) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d = decimal.Zero
	}
	*h = flexHours(d)
	return nil
}

func (h flexHours) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.Decimal(h).StringFixed(2))
}

func (c *Client) ListTimeRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.TimeRecord, error) {
	q := url.Values{}
	if filter.Date != nil {
		q.Set("date", filter.Date.String())
	}
	if filter.StartDate != nil {
		q.Set("start_date", filter.StartDate.String())
	}
	if filter.EndDate != nil {
		q.Set("end_date", filter.EndDate.String())
	}
	if filter.UserID != nil {
		q.Set("user", fmt.Sprintf("%d", *filter.UserID))
	}
	if filter.ProjectID != nil {
		q.Set("project", fmt.Sprintf("%d", *filter.ProjectID))
	}

	var dtos []hourEntryDTO
	if err := c.do(ctx, "list time records", http.MethodGet, "/hours/", q, nil, &dtos); err != nil {
		return nil, err
	}

	records := make([]domain.TimeRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := dto.toDomain()
		if err != nil {
			logging.FromContext(ctx).Warn("skipping time record with unreadable date",
				"id", dto.ID, logging.KeyError, err)
			continue
		}
		// the service may ignore filters it does not know
		if filter.Matches(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (c *Client) CreateTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	var out hourEntryDTO
	if err := c.do(ctx, "create time record", http.MethodPost, "/hours/", nil, inputDTO(in), &out); err != nil {
		return nil, err
	}
	return out.toDomainPtr()
}

func (c *Client) UpdateTimeRecord(ctx context.Context, id int64, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	var out hourEntryDTO
	path := fmt.Sprintf("/hours/%d/", id)
	if err := c.do(ctx, "update time record", http.MethodPut, path, nil, inputDTO(in), &out); err != nil {
		return nil, err
	}
	return out.toDomainPtr()
}

func (c *Client) ListAssignedProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	var out userProjectsDTO
	path := fmt.Sprintf("/users/%d/projects/", userID)
	if err := c.do(ctx, "list assigned projects", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return projectsToDomain(out.Projects)
}

// ListUsers returns the active users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var dtos []userDTO
	q := url.Values{"is_active": {"true"}}
	if err := c.do(ctx, "list users", http.MethodGet, "/users/", q, nil, &dtos); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(dtos))
	for _, dto := range dtos {
		if u := dto.toDomain(); u.IsActive {
			users = append(users, u)
		}
	}
	return users, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var dtos []projectDTO
	if err := c.do(ctx, "list projects", http.MethodGet, "/projects/", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return projectsToDomain(dtos)
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var dto userDTO
	if err := c.do(ctx, "get profile", http.MethodGet, "/profile/", nil, nil, &dto); err != nil {
		return nil, err
	}
	u := dto.toDomain()
	return &u, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeInvalidInput, "encode "+op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.NewServiceError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	logger := logging.FromContext(ctx).With(logging.KeyOperation, op)
	logger.Debug("hours service request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.NewTimeoutError(op, ctx.Err().Error())
		}
		return errors.NewServiceError(op, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewServiceError(op, resp.StatusCode, err)
	}

	logger.Debug("hours service response", logging.KeyStatus, resp.StatusCode, "bytes", len(data))

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(op, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewServiceError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(op string, status int, body []byte) error {
	var e errorDTO
	detail := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Error != "":
			detail = e.Error
		case e.Detail != "":
			detail = e.Detail
		}
	}
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch status {
	case http.StatusNotFound:
		return errors.WrapError(stderrors.New(detail), errors.ErrorTypeNotFound, op+": "+detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.WrapError(errors.NewServiceError(op, status, stderrors.New(detail)),
			errors.ErrorTypePermission, op+": "+detail)
	}
	return errors.NewServiceError(op, status, stderrors.New(detail))
}

func inputDTO(in domain.TimeRecordInput) hourEntryDTO {
	return hourEntryDTO{
		Project: in.ProjectID,
		Date:    in.Date.String(),
		Hours:   flexHours(in.Hours),
		Note:    in.Note,
	}
}

func (d hourEntryDTO) toDomain() (domain.TimeRecord, error) {
	date, err := domain.ParseDate(d.Date)
	if err != nil {
		return domain.TimeRecord{}, err
	}
	return domain.TimeRecord{
		ID:        d.ID,
		UserID:    d.User,
		ProjectID: d.Project,
		Date:      date,
		Hours:     decimal.Decimal(d.Hours),
		Note:      d.Note,
	}, nil
}

func (d hourEntryDTO) toDomainPtr() (*domain.TimeRecord, error) {
	record, err := d.toDomain()
	if err != nil {
		return nil, errors.NewServiceError("decode time record", 0, err)
	}
	return &record, nil
}

func (d userDTO) toDomain() domain.User {
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	return domain.User{
		ID:        d.ID,
		Username:  d.Username,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		IsActive:  active,
	}
}

func projectsToDomain(dtos []projectDTO) ([]domain.Project, error) {
	projects := make([]domain.Project, 0, len(dtos))
	for _, dto := range dtos {
		p := domain.Project{
			ID:              dto.ID,
			Name:            dto.Name,
			Client:          dto.Client,
			AssignedUserIDs: dto.AssignedUsers,
		}
		var err error
		if p.StartDate, err = parseOptionalDate(dto.StartDate); err != nil {
			return nil, errors.NewServiceError("decode project", 0, fmt.Errorf("project %d: %w", dto.ID, err))
		}
		if p.EndDate, err = parseOptionalDate(dto.EndDate); err != nil {
			return nil, errors.NewServiceError("decode project", 0, fmt.Errorf("project %d: %w", dto.ID, err))
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func parseOptionalDate(s *string) (*domain.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
