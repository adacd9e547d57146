package slidescore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors for API interactions.
var (
	// ErrStatus indicates a non-200 HTTP response.
	ErrStatus = errors.New("slidescore: unexpected response status")
	// ErrAPIFailure indicates a response whose success flag is false.
	ErrAPIFailure = errors.New("slidescore: server reported failure")
)

// defaultTimeout bounds one API round trip.
const defaultTimeout = 60 * time.Second

// Client talks to one SlideScore server on behalf of one API token.
type Client struct {
	endpoint string // server URL with the trailing "Api/" segment
	token    string
	httpc    *http.Client
	log      *zap.Logger
}

// NewClient builds a client for the given server URL (without the
// "Api/" suffix; the trailing slash is normalized). A nil logger
// disables client logging.
func NewClient(server, token string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("slidescore: invalid server URL %q: %w", server, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	endpoint, err := base.Parse("Api/")
	if err != nil {
		return nil, fmt.Errorf("slidescore: building endpoint: %w", err)
	}

	return &Client{
		endpoint: endpoint.String(),
		token:    token,
		httpc:    &http.Client{Timeout: defaultTimeout},
		log:      log,
	}, nil
}

// Image is one study slide as listed by the server.
type Image struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	StudyID  int    `json:"studyID"`
	FileSize int64  `json:"fileSize"`
}

// ScoreQuery narrows a Scores request. Zero-value fields are omitted.
type ScoreQuery struct {
	Question string
	Email    string
	ImageID  int
	CaseID   int
}

// Scores downloads all annotation results for a study, optionally
// narrowed by question, author email, image or case. Each Result
// renders to one export row for the annotation parser.
func (c *Client) Scores(ctx context.Context, studyID int, q ScoreQuery) ([]Result, error) {
	form := url.Values{"studyid": {strconv.Itoa(studyID)}}
	if q.Question != "" {
		form.Set("question", q.Question)
	}
	if q.Email != "" {
		form.Set("email", q.Email)
	}
	if q.ImageID != 0 {
		form.Set("imageid", strconv.Itoa(q.ImageID))
	}
	if q.CaseID != 0 {
		form.Set("caseid", strconv.Itoa(q.CaseID))
	}

	var results []Result
	if err := c.postForm(ctx, "Scores", form, &results); err != nil {
		return nil, err
	}
	c.log.Info("downloaded scores", zap.Int("study_id", studyID), zap.Int("results", len(results)))

	return results, nil
}

// Images lists slide metadata (no pixel data) for every slide in the
// study.
func (c *Client) Images(ctx context.Context, studyID int) ([]Image, error) {
	form := url.Values{"studyid": {strconv.Itoa(studyID)}}
	var images []Image
	if err := c.postForm(ctx, "Images", form, &images); err != nil {
		return nil, err
	}
	c.log.Info("listed study images", zap.Int("study_id", studyID), zap.Int("images", len(images)))

	return images, nil
}

// Config returns the study configuration. Requires a token with
// configuration rights.
func (c *Client) Config(ctx context.Context, studyID int) (map[string]any, error) {
	form := url.Values{"studyid": {strconv.Itoa(studyID)}}
	var envelope struct {
		Success bool           `json:"success"`
		Log     string         `json:"log"`
		Config  map[string]any `json:"config"`
	}
	if err := c.postForm(ctx, "GetConfig", form, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: GetConfig study %d: %s", ErrAPIFailure, studyID, envelope.Log)
	}

	return envelope.Config, nil
}

// ImageMetadata returns the server-side metadata for one image.
func (c *Client) ImageMetadata(ctx context.Context, imageID int) (map[string]any, error) {
	form := url.Values{"imageId": {strconv.Itoa(imageID)}}
	var envelope struct {
		Success  bool           `json:"success"`
		Log      string         `json:"log"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := c.getForm(ctx, "GetImageMetadata", form, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: GetImageMetadata image %d: %s", ErrAPIFailure, imageID, envelope.Log)
	}

	return envelope.Metadata, nil
}

// UploadResults uploads annotation rows for a study. Each result is
// rendered with Result.Row; the server expects the rows newline-joined
// with a leading newline.
func (c *Client) UploadResults(ctx context.Context, studyID int, results []Result) error {
	rows := make([]string, len(results))
	for i, r := range results {
		rows[i] = r.Row()
	}
	form := url.Values{
		"studyid": {strconv.Itoa(studyID)},
		"results": {"\n" + strings.Join(rows, "\n")},
	}
	var envelope struct {
		Success bool   `json:"success"`
		Log     string `json:"log"`
	}
	if err := c.postForm(ctx, "UploadResults", form, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%w: UploadResults study %d: %s", ErrAPIFailure, studyID, envelope.Log)
	}
	c.log.Info("uploaded results", zap.Int("study_id", studyID), zap.Int("rows", len(results)))

	return nil
}

// postForm performs a POST of form values and decodes the JSON body
// into out.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, form, out)
}

// getForm performs a GET with the values as query parameters.
func (c *Client) getForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, form, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	reqURL := c.endpoint + endpoint
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(form.Encode())
	} else if len(form) > 0 {
		reqURL += "?" + form.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("slidescore: building %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("slidescore: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrStatus, endpoint, resp.StatusCode)
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slidescore: decoding %s response: %w", endpoint, err)
	}

	return nil
}
