// Package store is a REST client for the resume evaluation API.
package store

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	apiURL    = "http://localhost:8000/api"
	userAgent = "spigell/cv-ranker"

	defaultLimit    = 100
	defaultTopLimit = 10
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string

	// now renames uploads, newRequestID tags requests. Both are replaceable in tests.
	now          func() time.Time
	newRequestID func() string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger,
		UserAgent:    userAgent,
		now:          time.Now,
		newRequestID: uuid.NewString,
	}
}

// Page selects a window of a list endpoint. Zero values mean skip=0, limit=100.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) values() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}

	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	return q
}
