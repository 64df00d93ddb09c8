package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// Search queries used to fill each snapshot category.
const (
	queryIssues  = "is:open is:issue assignee:@me"
	queryPRs     = "is:open is:pr assignee:@me"
	queryReviews = "is:open is:pr review-requested:@me"
)

// APISource builds a snapshot from the GitHub REST API.
type APISource struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPISource returns an APISource for baseURL authenticated with token.
func NewAPISource(ctx context.Context, baseURL, token string) *APISource {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &APISource{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(ctx, ts),
	}
}

func (a *APISource) Name() string { return "api" }

type apiUser struct {
	Login string `json:"login"`
}

type searchIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

type searchResponse struct {
	Items []searchIssue `json:"items"`
}

// Fetch queries the authenticated user and their open issues, pull requests
// and review requests.
func (a *APISource) Fetch(ctx context.Context) (Snapshot, error) {
	s := NewSnapshot()

	var user apiUser
	if _, err := a.get(ctx, a.baseURL+"/user", &user); err != nil {
		return Snapshot{}, err
	}
	s.AccountName = user.Login

	for _, q := range []struct {
		query string
		dest  map[string]string
	}{
		{queryIssues, s.MyIssues},
		{queryPRs, s.MyPRs},
		{queryReviews, s.MyReviews},
	} {
		params := url.Values{"q": {q.query}, "per_page": {"100"}}
		endpoint := a.baseURL + "/search/issues?" + params.Encode()
		for endpoint != "" {
			var page searchResponse
			next, err := a.get(ctx, endpoint, &page)
			if err != nil {
				return Snapshot{}, err
			}
			for _, it := range page.Items {
				q.dest[strconv.Itoa(it.Number)] = fmt.Sprintf("%s [%s]", it.Title, it.HTMLURL)
			}
			endpoint = next
		}
	}
	return s, nil
}

// get decodes the JSON at endpoint into out and returns the next page URL
// from the Link header, or "" on the last page.
func (a *APISource) get(ctx context.Context, endpoint string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return "", fmt.Errorf("decoding github response: %w", err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from a Link header such as
// `<https://api.github.com/search/issues?page=2>; rel="next", <...>; rel="last"`.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segs[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
