package sheets

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	apperrors "datalens/internal/errors"
)

var spreadsheetURLPattern = regexp.MustCompile(`spreadsheets/d/([a-zA-Z0-9\-_]+)`)

// Client implements ports.SheetSource using a Google service account
type Client struct {
	svc *sheetsapi.Service
}

// NewClient creates a Sheets client from a service-account JSON key file
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("failed to read Google credentials file: %v", err))
	}

	jwtConfig, err := google.JWTConfigFromJSON(creds, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("invalid Google service account credentials: %v", err))
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create Sheets service")
	}

	return &Client{svc: svc}, nil
}

// SpreadsheetID extracts the spreadsheet ID from a full Sheets URL, or
// accepts a bare ID.
func SpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", apperrors.InvalidInput("spreadsheet reference is empty")
	}
	if m := spreadsheetURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(ref, "/? ") {
		return "", apperrors.InvalidInput("not a recognizable Google Sheet URL or ID")
	}
	return ref, nil
}

// Read loads the used range of the first worksheet as a header row plus
// raw data rows.
func (c *Client) Read(ctx context.Context, ref string) ([]string, [][]string, error) {
	id, err := SpreadsheetID(ref)
	if err != nil {
		return nil, nil, err
	}

	meta, err := c.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, nil, translateAPIError(err)
	}
	if len(meta.Sheets) == 0 {
		return nil, nil, apperrors.InvalidInput("spreadsheet has no worksheets")
	}
	title := meta.Sheets[0].Properties.Title

	resp, err := c.svc.Spreadsheets.Values.Get(id, title).Context(ctx).Do()
	if err != nil {
		return nil, nil, translateAPIError(err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, apperrors.InvalidInput("the data is empty")
	}

	header := toStrings(resp.Values[0])
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rows = append(rows, toStrings(row))
	}
	return header, rows, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func translateAPIError(err error) error {
	var gerr *googleapi.Error
	if stderrors.As(err, &gerr) {
		switch gerr.Code {
		case 401, 403:
			return apperrors.Unauthorized("service account has no access to this spreadsheet")
		case 404:
			return apperrors.NotFound("spreadsheet")
		}
	}
	return apperrors.ExternalServiceError("google sheets", err)
}
